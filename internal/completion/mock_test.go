package completion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

func testInvoice() entity.CanonicalInvoice {
	vendor := "Alpine Office Supplies"
	number := "INV-1041"
	return entity.CanonicalInvoice{Vendor: &vendor, InvoiceNumber: &number}
}

func TestBuildSummaryNoAnomalies(t *testing.T) {
	got := BuildSummary(testInvoice(), nil)
	assert.Equal(t,
		"The invoice from Alpine Office Supplies (INV-1041) was parsed successfully. No anomalies were detected.",
		got)
}

func TestBuildSummaryUnknownVendor(t *testing.T) {
	got := BuildSummary(entity.CanonicalInvoice{}, nil)
	assert.Equal(t,
		"The invoice from an unknown vendor (no invoice number) was parsed successfully. No anomalies were detected.",
		got)
}

func TestBuildSummarySingleAnomaly(t *testing.T) {
	got := BuildSummary(testInvoice(), []entity.Warning{
		{Code: constants.WarningSubtotalMismatch},
	})

	assert.Contains(t, got, "One anomaly was detected:")
	assert.Contains(t, got, "- The subtotal does not match the sum of line items.")
	assert.Contains(t, got, "This may indicate a calculation error or incorrect entry.")
}

func TestBuildSummaryTwoAnomalies(t *testing.T) {
	got := BuildSummary(testInvoice(), []entity.Warning{
		{Code: constants.WarningSubtotalMismatch},
		{Code: constants.WarningPriceOutlier},
	})

	assert.Contains(t, got, "Two anomalies were detected:")
	assert.Contains(t, got, "- The subtotal does not match the sum of line items.")
	assert.Contains(t, got, "- One line item has a significantly higher unit price than others.")
}

func TestBuildSummaryMissingFieldsDetailShapes(t *testing.T) {
	// In-process detail shape.
	got := BuildSummary(testInvoice(), []entity.Warning{
		{Code: constants.WarningMissingFields, Details: map[string]any{"fields": []string{"vendor", "total"}}},
	})
	assert.Contains(t, got, "Required fields are missing: vendor, total.")

	// The shape a warning takes after a JSON round trip.
	got = BuildSummary(testInvoice(), []entity.Warning{
		{Code: constants.WarningMissingFields, Details: map[string]any{"fields": []any{"vendor", "total"}}},
	})
	assert.Contains(t, got, "Required fields are missing: vendor, total.")
}

func TestMockSummarizeIsDeterministic(t *testing.T) {
	m := NewMock(nil)
	warnings := []entity.Warning{{Code: constants.WarningPriceOutlier}}

	first, err := m.Summarize(context.Background(), SummaryRequest{Invoice: testInvoice(), Warnings: warnings})
	require.NoError(t, err)
	second, err := m.Summarize(context.Background(), SummaryRequest{Invoice: testInvoice(), Warnings: warnings})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
