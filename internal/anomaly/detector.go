// Package anomaly evaluates the three fixed audit rules against a
// canonical invoice. Detect is a pure function: the same invoice always
// yields the same warnings in the same order.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// subtotalTolerance is the largest stated-vs-computed difference that is
// still considered rounding noise rather than an anomaly.
const subtotalTolerance = 0.01

// outlierFactor flags items priced more than this multiple of the median.
const outlierFactor = 5.0

// Detect runs all rules in fixed order: subtotal mismatch, price outlier,
// missing fields. All applicable warnings are returned, not just the first.
func Detect(inv entity.CanonicalInvoice) []entity.Warning {
	var warnings []entity.Warning
	warnings = append(warnings, checkSubtotal(inv)...)
	warnings = append(warnings, checkPriceOutliers(inv)...)
	warnings = append(warnings, checkMissingFields(inv)...)
	return warnings
}

func checkSubtotal(inv entity.CanonicalInvoice) []entity.Warning {
	var lineSum float64
	for _, item := range inv.LineItems {
		lineSum += item.Amount
	}
	lineSum = round2(lineSum)

	diff := round3(math.Abs(inv.Subtotal - lineSum))
	if diff <= subtotalTolerance {
		return nil
	}
	return []entity.Warning{{
		Code: constants.WarningSubtotalMismatch,
		Message: fmt.Sprintf("Subtotal mismatch: lines sum to $%.2f but subtotal is $%.2f",
			lineSum, inv.Subtotal),
		Details: map[string]any{
			"expected":   lineSum,
			"actual":     inv.Subtotal,
			"difference": round2(inv.Subtotal - lineSum),
		},
	}}
}

func checkPriceOutliers(inv entity.CanonicalInvoice) []entity.Warning {
	var prices []float64
	for _, item := range inv.LineItems {
		if item.UnitPrice > 0 {
			prices = append(prices, item.UnitPrice)
		}
	}
	// A median over fewer than two positive prices is not meaningful, so
	// the rule is skipped rather than vacuously flagging.
	if len(prices) < 2 {
		return nil
	}

	med := median(prices)
	threshold := outlierFactor * med

	var warnings []entity.Warning
	for _, item := range inv.LineItems {
		if item.UnitPrice <= threshold {
			continue
		}
		warnings = append(warnings, entity.Warning{
			Code: constants.WarningPriceOutlier,
			Message: fmt.Sprintf("High unit price outlier: %q = $%.0f vs median $%.0f",
				item.Description, item.UnitPrice, med),
			Details: map[string]any{
				"item":       item.Description,
				"unit_price": item.UnitPrice,
				"median":     med,
				"ratio":      round1(item.UnitPrice / med),
			},
		})
	}
	return warnings
}

func checkMissingFields(inv entity.CanonicalInvoice) []entity.Warning {
	var missing []string
	if inv.Vendor == nil {
		missing = append(missing, "vendor")
	}
	if inv.InvoiceDate == nil {
		missing = append(missing, "invoice_date")
	}
	// A present-but-zero total is not missing; only true absence counts.
	if inv.Total == nil {
		missing = append(missing, "total")
	}
	if len(missing) == 0 {
		return nil
	}

	msg := "Missing required fields: "
	for i, f := range missing {
		if i > 0 {
			msg += ", "
		}
		msg += f
	}
	return []entity.Warning{{
		Code:    constants.WarningMissingFields,
		Message: msg,
		Details: map[string]any{"fields": missing},
	}}
}

// median over a positive-price sample; an even-count set takes the mean of
// the two middle values after sorting.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return round2((sorted[mid-1] + sorted[mid]) / 2)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
