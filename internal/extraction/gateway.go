package extraction

import (
	"context"

	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// Request identifies the document to extract.
type Request struct {
	DocumentURL string `json:"document_url"`
}

// Gateway is the extraction collaborator boundary the pipeline depends on.
// Extract may fail (live network paths do); Probe never fails, it reports.
type Gateway interface {
	Probe(ctx context.Context) entity.CollaboratorHealth
	Extract(ctx context.Context, req Request) (RawExtraction, error)
}
