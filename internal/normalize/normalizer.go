// Package normalize converts raw extraction output into the canonical
// invoice schema. Normalize is a total function: malformed input degrades
// field by field to absence or a safe default, it never fails.
package normalize

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
	"github.com/joseph-ayodele/invoice-sentinel/internal/extraction"
)

type Normalizer struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{log: logger}
}

// Normalize coerces a raw invoice into the canonical schema. Coercion
// rules, in order per field: numeric-looking strings parse to decimals and
// non-numeric values become absent; missing optional strings stay absent
// rather than becoming empty strings; pixel-space bounding boxes are scaled
// by the reported page dimensions (or tagged unnormalized when none were
// reported); non-positive or unparsable quantities default to 1.
func (n *Normalizer) Normalize(raw extraction.RawInvoice) entity.CanonicalInvoice {
	inv := entity.CanonicalInvoice{
		Vendor:        coerceString(raw.Vendor),
		InvoiceNumber: coerceString(raw.InvoiceNumber),
		InvoiceDate:   coerceDate(raw.InvoiceDate),
		Currency:      coerceCurrency(raw.Currency),
	}

	if v, ok := coerceDecimal(raw.Subtotal); ok {
		inv.Subtotal = roundMoney(v)
	}
	if v, ok := coerceDecimal(raw.Tax); ok {
		inv.Tax = roundMoney(v)
	}
	if v, ok := coerceDecimal(raw.Total); ok {
		total := roundMoney(v)
		inv.Total = &total
	}

	inv.LineItems = make([]entity.LineItem, 0, len(raw.LineItems))
	for _, rawItem := range raw.LineItems {
		inv.LineItems = append(inv.LineItems, n.normalizeItem(rawItem, raw.PageDimensions))
	}
	return inv
}

func (n *Normalizer) normalizeItem(raw extraction.RawLineItem, pages map[string]extraction.PageSize) entity.LineItem {
	item := entity.LineItem{Quantity: 1}

	if s := coerceString(raw.Description); s != nil {
		item.Description = *s
	}
	if q, ok := coerceInt(raw.Quantity); ok && q > 0 {
		item.Quantity = q
	}
	if v, ok := coerceDecimal(raw.UnitPrice); ok {
		item.UnitPrice = roundMoney(v)
	}
	if v, ok := coerceDecimal(raw.Amount); ok {
		item.Amount = roundMoney(v)
	}
	item.BBox = n.normalizeBox(raw.BBox, pages)
	return item
}

// normalizeBox brings a bounding box onto the unit square. Boxes already
// within [0,1] pass through unchanged, so normalizing a canonical record is
// idempotent. Pixel-space boxes are divided by the reported page
// dimensions; without dimensions the box passes through tagged
// unnormalized instead of being silently treated as normalized.
func (n *Normalizer) normalizeBox(raw *extraction.RawBoundingBox, pages map[string]extraction.PageSize) entity.BoundingBox {
	if raw == nil {
		return entity.BoundingBox{Page: 1}
	}

	box := entity.BoundingBox{Page: 1}
	if p, ok := coerceInt(raw.Page); ok && p >= 1 {
		box.Page = p
	}

	x, okX := coerceDecimal(raw.X)
	y, okY := coerceDecimal(raw.Y)
	w, okW := coerceDecimal(raw.W)
	h, okH := coerceDecimal(raw.H)
	if !okX || !okY || !okW || !okH {
		return box
	}

	if inUnitSquare(x, y, w, h) {
		box.X, box.Y, box.W, box.H = x, y, w, h
		return box
	}

	page, havePage := pages[strconv.Itoa(box.Page)]
	if !havePage || page.WidthPX <= 0 || page.HeightPX <= 0 {
		box.X, box.Y, box.W, box.H = x, y, w, h
		box.Unnormalized = true
		n.log.Warn("normalize.bbox.unnormalized", "page", box.Page)
		return box
	}

	box.X = clamp01(x / page.WidthPX)
	box.Y = clamp01(y / page.HeightPX)
	box.W = clamp01(w / page.WidthPX)
	box.H = clamp01(h / page.HeightPX)
	return box
}

func inUnitSquare(vals ...float64) bool {
	for _, v := range vals {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// roundMoney rounds to 2 fractional digits and clamps negatives to zero:
// canonical monetary fields are non-negative by invariant.
func roundMoney(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Round(v*100) / 100
}

// coerceString accepts only string values. Absent or non-string input
// yields nil, which downstream code reads as "field never returned" —
// distinct from a present-but-empty string.
func coerceString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

var currencyRunes = "$€£¥"

// coerceDecimal accepts numbers and numeric-looking strings, including
// values with currency symbols and thousands separators ("$1,042.50").
func coerceDecimal(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		for _, r := range currencyRunes {
			s = strings.ReplaceAll(s, string(r), "")
		}
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func coerceInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

func coerceCurrency(v any) string {
	s, ok := v.(string)
	if !ok {
		return "USD"
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "USD"
	}
	return s
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// coerceDate parses a date-only value to midnight UTC, matching DATE
// semantics downstream.
func coerceDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
