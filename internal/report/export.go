package report

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

// ExportXLSX returns an XLSX workbook for one analysis result: an
// "Invoice" sheet with the summary block and line items, and an
// "Anomalies" sheet with the detected warnings.
func ExportXLSX(res entity.AnalysisResult, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const invoiceSheet = "Invoice"
	const anomalySheet = "Anomalies"

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(anomalySheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(invoiceSheet)
	f.SetActiveSheet(activeIndex)

	write := func(sheet string, col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	inv := res.Invoice
	summaryRows := [][2]any{
		{"Request ID", res.RequestID},
		{"Trace ID", res.TraceID},
		{"Mode", string(res.Mode)},
		{"Document", res.DocumentURL},
		{"Vendor", orDash(inv.Vendor)},
		{"Invoice Number", orDash(inv.InvoiceNumber)},
		{"Invoice Date", formatDate(inv.InvoiceDate)},
		{"Currency", inv.Currency},
		{"Subtotal", inv.Subtotal},
		{"Tax", inv.Tax},
		{"Total", totalCell(inv.Total)},
	}
	for i, kv := range summaryRows {
		write(invoiceSheet, 1, i+1, kv[0])
		write(invoiceSheet, 2, i+1, kv[1])
	}

	// Line items start two rows under the summary block.
	itemHeaderRow := len(summaryRows) + 2
	for i, h := range []string{"Description", "Quantity", "Unit Price", "Amount"} {
		write(invoiceSheet, i+1, itemHeaderRow, h)
	}
	for i, item := range inv.LineItems {
		row := itemHeaderRow + 1 + i
		write(invoiceSheet, 1, row, item.Description)
		write(invoiceSheet, 2, row, item.Quantity)
		write(invoiceSheet, 3, row, item.UnitPrice)
		write(invoiceSheet, 4, row, item.Amount)
	}

	for i, h := range []string{"Code", "Message"} {
		write(anomalySheet, i+1, 1, h)
	}
	for i, warn := range res.Warnings {
		write(anomalySheet, 1, 2+i, string(warn.Code))
		write(anomalySheet, 2, 2+i, warn.Message)
	}

	_ = f.SetColWidth(invoiceSheet, "A", "A", 40)
	_ = f.SetColWidth(invoiceSheet, "B", "D", 16)
	_ = f.SetColWidth(anomalySheet, "A", "A", 22)
	_ = f.SetColWidth(anomalySheet, "B", "B", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("report.xlsx.ok",
		"req_id", res.RequestID,
		"line_items", len(inv.LineItems),
		"warnings", len(res.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func totalCell(total *float64) any {
	if total == nil {
		return "-"
	}
	return *total
}
