// Package pipeline coordinates one end-to-end analysis request: mode
// selection, extraction, normalization, anomaly detection, summary, and
// result assembly. Process always finishes with a usable result; the
// absence of any collaborator degrades the mode but never aborts the run.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/anomaly"
	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/completion"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
	"github.com/joseph-ayodele/invoice-sentinel/internal/extraction"
	"github.com/joseph-ayodele/invoice-sentinel/internal/metrics"
	"github.com/joseph-ayodele/invoice-sentinel/internal/modeselect"
	"github.com/joseph-ayodele/invoice-sentinel/internal/normalize"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

// AnalysisRequest is one inbound pipeline invocation.
type AnalysisRequest struct {
	DocumentURL string
	Instruction string

	// Headers optionally carries an upstream traceparent and request id.
	Headers http.Header
}

// Processor wires the pipeline stages together. Live gateways may be nil
// when no endpoint is configured; the matching mock then serves every
// request without counting as a downgrade.
type Processor struct {
	Logger   *slog.Logger
	Cfg      common.PipelineConfig
	Selector *modeselect.Selector

	LiveExtraction extraction.Gateway
	MockExtraction extraction.Gateway
	LiveCompletion completion.Gateway
	MockCompletion completion.Gateway

	Normalizer *normalize.Normalizer
	Tel        *telemetry.Telemetry
	Metrics    *metrics.Collector

	// Parsed mode override from config; Forced is false for auto.
	Override constants.RunMode
	Forced   bool
}

// ConfiguredMode reports the configured override, or "auto" when mode
// selection is automatic. Surfaced on the health endpoint.
func (p *Processor) ConfiguredMode() string {
	if p.Forced {
		return string(p.Override)
	}
	return constants.ModeAuto
}

// Process runs the full pipeline under the overall request deadline. It
// never returns an error: a live gateway failing mid-call is silently
// downgraded to its deterministic substitute and flagged on the result,
// and an expired deadline falls back to fully canned data so the
// presenter always has something to render.
func (p *Processor) Process(ctx context.Context, req AnalysisRequest) entity.AnalysisResult {
	ctx, cancel := context.WithTimeout(ctx, p.Cfg.RequestDeadline)
	defer cancel()

	ctx, rc := p.Tel.StartRequest(ctx, req.DocumentURL, req.Headers)
	defer rc.End()

	start := time.Now()
	telemetry.AuditRequestReceived(p.Logger, rc.RequestID, req.DocumentURL, rc.TraceID)

	result := entity.AnalysisResult{
		RequestID:   rc.RequestID,
		TraceID:     rc.TraceID,
		DocumentURL: req.DocumentURL,
	}

	// 1) Mode selection: concurrent bounded probes, pure decision.
	selectCtx, span := p.Tel.StartSpan(ctx, "pipeline.select_mode")
	mode, extHealth, compHealth := p.Selector.Decide(selectCtx, p.Override, p.Forced)
	span.SetAttributes(attribute.String("run.mode", string(mode)))
	span.End()

	result.Mode = mode
	result.ExtractionHealth = extHealth
	result.CompletionHealth = compHealth
	if p.Metrics != nil {
		if !extHealth.Reachable {
			p.Metrics.ProbeFailed(constants.CollaboratorExtraction)
		}
		if !compHealth.Reachable {
			p.Metrics.ProbeFailed(constants.CollaboratorCompletion)
		}
	}

	// 2) Extraction, live or canned per mode.
	raw, extractionDowngraded := p.extract(ctx, mode, req, rc)
	result.ExtractionDowngraded = extractionDowngraded

	// 3) Normalization is total and never fails.
	result.Invoice = p.Normalizer.Normalize(raw.Invoice)

	// 4) Anomaly detection, fixed rule order.
	result.Warnings = anomaly.Detect(result.Invoice)
	if p.Metrics != nil {
		for _, w := range result.Warnings {
			p.Metrics.WarningEmitted(string(w.Code))
		}
	}

	// 5) Summary, live or deterministic local text.
	summary, completionDowngraded := p.summarize(ctx, mode, req, result, rc)
	result.Summary = summary
	result.CompletionDowngraded = completionDowngraded

	if p.Metrics != nil {
		p.Metrics.RequestProcessed(string(mode))
		p.Metrics.StageObserved("total", time.Since(start).Seconds())
	}
	telemetry.AuditParseCompleted(p.Logger, rc.RequestID, rc.TraceID,
		len(result.Invoice.LineItems), len(result.Warnings), time.Since(start).Milliseconds())

	return result
}

func (p *Processor) extract(ctx context.Context, mode constants.RunMode, req AnalysisRequest, rc *telemetry.RequestContext) (extraction.RawExtraction, bool) {
	extReq := extraction.Request{DocumentURL: req.DocumentURL}

	gw := p.MockExtraction
	live := false
	if mode.UsesLiveExtraction() && p.LiveExtraction != nil {
		gw = p.LiveExtraction
		live = true
	}

	stageCtx, span := p.Tel.StartSpan(ctx, "pipeline.extract",
		attribute.Bool("live", live))
	defer span.End()

	start := time.Now()
	telemetry.AuditToolCall(p.Logger, rc.RequestID, "extract_invoice", rc.TraceID)

	raw, err := gw.Extract(stageCtx, extReq)
	if p.Metrics != nil {
		p.Metrics.StageObserved("extract", time.Since(start).Seconds())
	}
	if err == nil {
		telemetry.AuditToolResult(p.Logger, rc.RequestID, "extract_invoice", true, rc.TraceID)
		return raw, false
	}

	// Single attempt only: no retry, no re-probe, nothing raised to the
	// caller. The canned record stands in for the rest of this request.
	// context.WithoutCancel keeps the fallback usable even when the
	// overall deadline already expired.
	p.Logger.Warn("pipeline.extract.downgraded",
		"req_id", rc.RequestID,
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	telemetry.AuditToolResult(p.Logger, rc.RequestID, "extract_invoice", false, rc.TraceID)
	if p.Metrics != nil {
		p.Metrics.GatewayDowngraded(constants.CollaboratorExtraction)
	}

	raw, _ = p.MockExtraction.Extract(context.WithoutCancel(ctx), extReq)
	return raw, live
}

func (p *Processor) summarize(ctx context.Context, mode constants.RunMode, req AnalysisRequest, result entity.AnalysisResult, rc *telemetry.RequestContext) (string, bool) {
	sumReq := completion.SummaryRequest{
		Invoice:     result.Invoice,
		Warnings:    result.Warnings,
		Instruction: req.Instruction,
	}

	gw := p.MockCompletion
	live := false
	if mode.UsesLiveCompletion() && p.LiveCompletion != nil {
		gw = p.LiveCompletion
		live = true
	}

	stageCtx, span := p.Tel.StartSpan(ctx, "pipeline.summarize",
		attribute.Bool("live", live))
	defer span.End()

	start := time.Now()
	telemetry.AuditToolCall(p.Logger, rc.RequestID, "summarize_invoice", rc.TraceID)

	summary, err := gw.Summarize(stageCtx, sumReq)
	if p.Metrics != nil {
		p.Metrics.StageObserved("summarize", time.Since(start).Seconds())
	}
	if err == nil {
		telemetry.AuditToolResult(p.Logger, rc.RequestID, "summarize_invoice", true, rc.TraceID)
		return summary, false
	}

	p.Logger.Warn("pipeline.summarize.downgraded",
		"req_id", rc.RequestID,
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	telemetry.AuditToolResult(p.Logger, rc.RequestID, "summarize_invoice", false, rc.TraceID)
	if p.Metrics != nil {
		p.Metrics.GatewayDowngraded(constants.CollaboratorCompletion)
	}

	summary, _ = p.MockCompletion.Summarize(context.WithoutCancel(ctx), sumReq)
	return summary, live
}
