// Package report renders analysis results: the fixed-format console
// report used by the demo CLI and an XLSX export of the same data.
package report

import (
	"fmt"
	"io"

	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
)

const separator = "--------------------------------------------------"

// Render writes the demo report. The layout is locked: identical results
// produce byte-identical output, which the demo relies on.
func Render(w io.Writer, res entity.AnalysisResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "🧾 MULTI-AGENT INVOICE ANALYSIS DEMO")
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "PDF: %s\n", res.DocumentURL)
	fmt.Fprintf(w, "Request ID: %s\n", res.RequestID)
	fmt.Fprintf(w, "Trace ID: %s\n", res.TraceID)
	fmt.Fprintf(w, "Mode: %s\n", res.Mode)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Calling Parse Specialist Agent...")
	fmt.Fprintln(w, "✓ Parse complete")
	fmt.Fprintln(w)

	inv := res.Invoice
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "📊 EXTRACTED TOTALS")
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Vendor: %s\n", orDash(inv.Vendor))
	fmt.Fprintf(w, "Invoice: %s\n", orDash(inv.InvoiceNumber))
	fmt.Fprintf(w, "Subtotal: $%.2f\n", inv.Subtotal)
	fmt.Fprintf(w, "Tax: $%.2f\n", inv.Tax)
	if inv.Total != nil {
		fmt.Fprintf(w, "Total: $%.2f\n", *inv.Total)
	} else {
		fmt.Fprintln(w, "Total: -")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, separator)
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, "⚠️ ANOMALIES DETECTED")
		fmt.Fprintln(w, separator)
		for i, warn := range res.Warnings {
			fmt.Fprintf(w, "%d. %s\n", i+1, warn.Message)
		}
	} else {
		fmt.Fprintln(w, "✅ NO ANOMALIES DETECTED")
		fmt.Fprintln(w, separator)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "🧠 AGENT SUMMARY")
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, res.Summary)
	fmt.Fprintln(w)

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "🔭 OBSERVABILITY")
	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, "Trace exported via OpenTelemetry")
	fmt.Fprintln(w, "Use trace_id above in your dashboard to view full agent chain.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Demo complete.")
	fmt.Fprintln(w, separator)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
