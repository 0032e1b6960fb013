package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// Mock produces the summary locally without a language model. The wording
// is fixed: the same invoice and warnings always yield the same text.
type Mock struct {
	log *slog.Logger
}

func NewMock(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{log: logger}
}

// Probe always reports unreachable; there is no live collaborator here.
func (m *Mock) Probe(ctx context.Context) entity.CollaboratorHealth {
	return entity.CollaboratorHealth{
		Name:     constants.CollaboratorCompletion,
		ProbedAt: time.Now().UTC(),
	}
}

func (m *Mock) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	m.log.Info("completion.mock", "warning_count", len(req.Warnings))
	return BuildSummary(req.Invoice, req.Warnings), nil
}

var countWords = map[int]string{1: "One", 2: "Two", 3: "Three"}

// BuildSummary renders the deterministic reviewer summary used whenever the
// completion collaborator is mocked or downgraded.
func BuildSummary(inv entity.CanonicalInvoice, warnings []entity.Warning) string {
	vendor := "an unknown vendor"
	if inv.Vendor != nil {
		vendor = *inv.Vendor
	}
	number := "no invoice number"
	if inv.InvoiceNumber != nil {
		number = *inv.InvoiceNumber
	}

	if len(warnings) == 0 {
		return fmt.Sprintf(
			"The invoice from %s (%s) was parsed successfully. No anomalies were detected.",
			vendor, number,
		)
	}

	var descriptions []string
	for _, w := range warnings {
		switch w.Code {
		case constants.WarningSubtotalMismatch:
			descriptions = append(descriptions, "The subtotal does not match the sum of line items.")
		case constants.WarningPriceOutlier:
			descriptions = append(descriptions, "One line item has a significantly higher unit price than others.")
		case constants.WarningMissingFields:
			if fields := fieldList(w.Details["fields"]); len(fields) > 0 {
				descriptions = append(descriptions, fmt.Sprintf("Required fields are missing: %s.", strings.Join(fields, ", ")))
			} else {
				descriptions = append(descriptions, "Required fields are missing.")
			}
		}
	}

	count := len(warnings)
	countWord, ok := countWords[count]
	if !ok {
		countWord = fmt.Sprintf("%d", count)
	}
	verb := "anomalies were"
	if count == 1 {
		verb = "anomaly was"
	}

	lines := []string{fmt.Sprintf("The invoice was parsed successfully. %s %s detected:", countWord, verb)}
	for _, d := range descriptions {
		lines = append(lines, "- "+d)
	}
	lines = append(lines, "", "This may indicate a calculation error or incorrect entry.")
	return strings.Join(lines, "\n")
}

// fieldList tolerates both the in-process []string and the []any shape a
// warning takes after a JSON round trip.
func fieldList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
