package extraction

// Raw payload types for the extraction collaborator. The collaborator is
// allowed to return inconsistent types, wrong units, or missing fields, so
// scalar fields are decoded as `any` and coerced later by the normalizer.

// RawBoundingBox is a box as reported by the collaborator. Values may be
// normalized [0..1] floats or pixel coordinates; the page dimensions on the
// invoice decide which.
type RawBoundingBox struct {
	X    any `json:"x"`
	Y    any `json:"y"`
	W    any `json:"w"`
	H    any `json:"h"`
	Page any `json:"page"`
}

// RawLineItem is one extracted row, types unchecked.
type RawLineItem struct {
	Description any             `json:"description"`
	Quantity    any             `json:"quantity"`
	UnitPrice   any             `json:"unit_price"`
	Amount      any             `json:"amount"`
	BBox        *RawBoundingBox `json:"bbox,omitempty"`
}

// PageSize reports the pixel dimensions of one rendered page.
type PageSize struct {
	WidthPX  float64 `json:"width_px"`
	HeightPX float64 `json:"height_px"`
}

// RawInvoice is the invoice-shaped structure as returned by the
// collaborator, before any coercion.
type RawInvoice struct {
	Vendor        any           `json:"vendor"`
	InvoiceNumber any           `json:"invoice_number"`
	InvoiceDate   any           `json:"invoice_date"`
	Currency      any           `json:"currency"`
	Subtotal      any           `json:"subtotal"`
	Tax           any           `json:"tax"`
	Total         any           `json:"total"`
	LineItems     []RawLineItem `json:"line_items"`

	// PageDimensions maps page number (JSON object key, so a string) to
	// pixel dimensions. Absent when the collaborator already reports
	// normalized coordinates.
	PageDimensions map[string]PageSize `json:"page_dimensions,omitempty"`
}

// RawExtraction is the full collaborator response: the invoice-shaped
// structure plus collaborator-side warnings and a natural-language note.
type RawExtraction struct {
	Invoice  RawInvoice `json:"invoice"`
	Warnings []string   `json:"warnings,omitempty"`
	Note     string     `json:"note,omitempty"`
}
