package entity

import "github.com/joseph-ayodele/invoice-sentinel/constants"

// AnalysisResult is the full outcome of one pipeline run. It always carries
// a usable invoice, even when every collaborator was unreachable; the
// downgrade flags record which live gateways failed mid-call and were
// silently replaced by their deterministic substitutes.
type AnalysisResult struct {
	RequestID   string            `json:"request_id"`
	TraceID     string            `json:"trace_id"`
	DocumentURL string            `json:"document_url"`
	Mode        constants.RunMode `json:"mode"`

	Invoice  CanonicalInvoice `json:"invoice"`
	Warnings []Warning        `json:"warnings"`
	Summary  string           `json:"summary"`

	ExtractionDowngraded bool `json:"extraction_downgraded,omitempty"`
	CompletionDowngraded bool `json:"completion_downgraded,omitempty"`

	ExtractionHealth CollaboratorHealth `json:"extraction_health"`
	CompletionHealth CollaboratorHealth `json:"completion_health"`
}
