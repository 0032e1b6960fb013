package completion

import (
	"context"

	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// SummaryRequest carries the canonical record plus the operator's free-text
// instruction to the language-model collaborator.
type SummaryRequest struct {
	Invoice     entity.CanonicalInvoice
	Warnings    []entity.Warning
	Instruction string
}

// Gateway is the completion collaborator boundary the pipeline depends on.
type Gateway interface {
	Probe(ctx context.Context) entity.CollaboratorHealth
	Summarize(ctx context.Context, req SummaryRequest) (string, error)
}
