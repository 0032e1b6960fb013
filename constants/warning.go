package constants

// WarningCode identifies an anomaly rule.
type WarningCode string

// Stable values (these exact strings appear in responses and exports).
const (
	WarningSubtotalMismatch WarningCode = "SUBTOTAL_MISMATCH" // subtotal != sum of line amounts
	WarningPriceOutlier     WarningCode = "PRICE_OUTLIER"     // unit price > 5x median
	WarningMissingFields    WarningCode = "MISSING_FIELDS"    // vendor / invoice_date / total absent
)

// Collaborator names used in health snapshots and logs.
const (
	CollaboratorExtraction = "extraction"
	CollaboratorCompletion = "completion"
)
