package entity

import (
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
)

// BoundingBox locates a line item on the source document. Coordinates are
// normalized to the unit square. Unnormalized marks boxes that arrived in
// pixel space without page dimensions to divide by.
type BoundingBox struct {
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	W            float64 `json:"w"`
	H            float64 `json:"h"`
	Page         int     `json:"page"`
	Unnormalized bool    `json:"unnormalized,omitempty"`
}

// LineItem is one row of the canonical invoice.
type LineItem struct {
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   float64     `json:"unit_price"`
	Amount      float64     `json:"amount"`
	BBox        BoundingBox `json:"bbox"`
}

// CanonicalInvoice is the normalized, schema-conformant representation of
// extracted document data. Optional fields are pointers: nil means the
// extraction collaborator never returned the field, which downstream rules
// must distinguish from a present-but-empty value.
type CanonicalInvoice struct {
	Vendor        *string    `json:"vendor,omitempty"`
	InvoiceNumber *string    `json:"invoice_number,omitempty"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	Currency      string     `json:"currency"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         *float64   `json:"total,omitempty"`
	LineItems     []LineItem `json:"line_items"`
}

// Warning is one detected anomaly.
type Warning struct {
	Code    constants.WarningCode `json:"code"`
	Message string                `json:"message"`
	Details map[string]any        `json:"details,omitempty"`
}
