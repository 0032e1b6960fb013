package extraction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// Mock is the offline extraction gateway. It returns canned invoices that
// match the generated demo documents: the same input always yields a
// byte-identical response, which the demo and the tests rely on.
type Mock struct {
	log *slog.Logger
}

func NewMock(logger *slog.Logger) *Mock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mock{log: logger}
}

// Probe always reports unreachable: there is no live collaborator behind
// the mock, so auto mode selection must not pick a live path.
func (m *Mock) Probe(ctx context.Context) entity.CollaboratorHealth {
	return entity.CollaboratorHealth{
		Name:     constants.CollaboratorExtraction,
		ProbedAt: time.Now().UTC(),
	}
}

// Extract picks the canned variant from the document locator: a locator
// containing "anomaly" selects the invoice with the deliberate subtotal
// error and the outlier item.
func (m *Mock) Extract(ctx context.Context, req Request) (RawExtraction, error) {
	m.log.Info("extraction.mock", "document_url", req.DocumentURL)
	if strings.Contains(strings.ToLower(req.DocumentURL), "anomaly") {
		return anomalyExtraction(), nil
	}
	return cleanExtraction(), nil
}

func mockBox(y float64, page int) *RawBoundingBox {
	return &RawBoundingBox{X: 0.05, Y: y, W: 0.90, H: 0.04, Page: page}
}

// anomalyExtraction matches the demo document sample_invoice_anomaly.pdf.
// The stated subtotal 412.00 is deliberately wrong (line items sum to
// 392.00) and the last item is a price outlier.
func anomalyExtraction() RawExtraction {
	return RawExtraction{
		Invoice: RawInvoice{
			Vendor:        "Alpine Office Supplies",
			InvoiceNumber: "INV-1042",
			InvoiceDate:   "2025-11-15",
			Currency:      "USD",
			Subtotal:      412.00,
			Tax:           32.96,
			Total:         444.96,
			LineItems: []RawLineItem{
				{Description: "Copy Paper A4 (Case)", Quantity: 2, UnitPrice: 10.00, Amount: 20.00, BBox: mockBox(0.35, 1)},
				{Description: "Ink Cartridge Black", Quantity: 1, UnitPrice: 35.00, Amount: 35.00, BBox: mockBox(0.40, 1)},
				{Description: "Desk Organizer", Quantity: 1, UnitPrice: 42.00, Amount: 42.00, BBox: mockBox(0.45, 1)},
				{Description: "Wireless Mouse", Quantity: 1, UnitPrice: 45.00, Amount: 45.00, BBox: mockBox(0.25, 2)},
				{Description: "Premium Support", Quantity: 1, UnitPrice: 250.00, Amount: 250.00, BBox: mockBox(0.30, 2)},
			},
		},
		Note: "Two-page invoice; all fields extracted with high confidence.",
	}
}

// cleanExtraction matches the demo document sample_invoice_clean.pdf.
func cleanExtraction() RawExtraction {
	return RawExtraction{
		Invoice: RawInvoice{
			Vendor:        "Alpine Office Supplies",
			InvoiceNumber: "INV-1041",
			InvoiceDate:   "2025-11-14",
			Currency:      "USD",
			Subtotal:      197.00,
			Tax:           15.76,
			Total:         212.76,
			LineItems: []RawLineItem{
				{Description: "Copy Paper A4 (Case)", Quantity: 2, UnitPrice: 10.00, Amount: 20.00, BBox: mockBox(0.35, 1)},
				{Description: "Ink Cartridge Black", Quantity: 1, UnitPrice: 35.00, Amount: 35.00, BBox: mockBox(0.40, 1)},
				{Description: "Desk Organizer", Quantity: 1, UnitPrice: 42.00, Amount: 42.00, BBox: mockBox(0.45, 1)},
				{Description: "Wireless Mouse", Quantity: 1, UnitPrice: 45.00, Amount: 45.00, BBox: mockBox(0.25, 2)},
				{Description: "USB-C Hub", Quantity: 1, UnitPrice: 55.00, Amount: 55.00, BBox: mockBox(0.30, 2)},
			},
		},
		Note: "Two-page invoice; all fields extracted with high confidence.",
	}
}
