// invoice-demo runs the analysis pipeline end to end against one document
// and prints the fixed-format report. With no live collaborators configured
// it is fully deterministic.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/metrics"
	"github.com/joseph-ayodele/invoice-sentinel/internal/pipeline"
	"github.com/joseph-ayodele/invoice-sentinel/internal/report"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

const defaultDocumentURL = "http://localhost:8000/sample_invoice_anomaly.pdf"

func main() {
	var (
		mode        string
		docURL      string
		instruction string
		exportPath  string
		configPath  string
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:           "invoice-demo",
		Short:         "Run the multi-agent invoice analysis demo",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, mode, docURL, instruction, exportPath, configPath, verbose)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "run mode override (auto, full-live, extraction-only, completion-only, full-offline)")
	cmd.Flags().StringVar(&docURL, "doc", defaultDocumentURL, "URL of the invoice document")
	cmd.Flags().StringVar(&instruction, "instruction", "", "free-text instruction forwarded to the summary step")
	cmd.Flags().StringVar(&exportPath, "export", "", "write an XLSX export of the analysis to this path")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file (env vars win)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging to stderr")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, mode, docURL, instruction, exportPath, configPath string, verbose bool) error {
	cfg := common.LoadConfig()
	if configPath != "" {
		loaded, err := common.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if mode != "" {
		cfg.Mode = mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Keep the report clean: logs go to stderr and stay quiet unless asked.
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	tel := telemetry.Init(telemetry.Config{
		ServiceName:       "invoice-demo",
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		Debug:             verbose,
	}, logger)
	defer tel.Close(cmd.Context())

	collector := metrics.NewCollector(prometheus.NewRegistry())

	proc, err := pipeline.New(cfg, tel, collector, logger)
	if err != nil {
		return err
	}

	result := proc.Process(cmd.Context(), pipeline.AnalysisRequest{
		DocumentURL: docURL,
		Instruction: instruction,
	})

	report.Render(cmd.OutOrStdout(), result)

	if exportPath != "" {
		data, err := report.ExportXLSX(result, logger)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.WriteFile(exportPath, data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported analysis to %s\n", exportPath)
	}
	return nil
}
