package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockSelectsVariantFromLocator(t *testing.T) {
	m := NewMock(nil)

	raw, err := m.Extract(context.Background(), Request{DocumentURL: "http://localhost:8000/sample_invoice_anomaly.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "INV-1042", raw.Invoice.InvoiceNumber)
	assert.Equal(t, 412.00, raw.Invoice.Subtotal)

	raw, err = m.Extract(context.Background(), Request{DocumentURL: "http://localhost:8000/sample_invoice_clean.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "INV-1041", raw.Invoice.InvoiceNumber)
	assert.Equal(t, 197.00, raw.Invoice.Subtotal)

	// Matching is case-insensitive on the locator.
	raw, err = m.Extract(context.Background(), Request{DocumentURL: "http://example.com/ANOMALY.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "INV-1042", raw.Invoice.InvoiceNumber)
}

func TestMockIsDeterministic(t *testing.T) {
	m := NewMock(nil)
	req := Request{DocumentURL: "http://localhost:8000/sample_invoice_anomaly.pdf"}

	first, err := m.Extract(context.Background(), req)
	require.NoError(t, err)
	second, err := m.Extract(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMockProbeAlwaysUnreachable(t *testing.T) {
	m := NewMock(nil)
	health := m.Probe(context.Background())
	assert.False(t, health.Reachable)
	assert.Equal(t, "extraction", health.Name)
}

func TestMockAnomalyInvoiceShape(t *testing.T) {
	m := NewMock(nil)
	raw, err := m.Extract(context.Background(), Request{DocumentURL: "anomaly"})
	require.NoError(t, err)

	require.Len(t, raw.Invoice.LineItems, 5)
	// The planted outlier is the last item.
	last := raw.Invoice.LineItems[4]
	assert.Equal(t, "Premium Support", last.Description)
	assert.Equal(t, 250.00, last.UnitPrice)

	// Stated subtotal disagrees with the line sum on purpose.
	sum := 0.0
	for _, item := range raw.Invoice.LineItems {
		sum += item.Amount.(float64)
	}
	assert.Equal(t, 392.00, sum)
	assert.Equal(t, 412.00, raw.Invoice.Subtotal)
}
