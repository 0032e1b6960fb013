package telemetry

import "log/slog"

// Structured audit events, metadata only: never document bytes, never
// extracted values.

func AuditRequestReceived(logger *slog.Logger, requestID, documentURL, traceID string) {
	logger.Info("audit.request_received",
		"request_id", requestID,
		"document_url", documentURL,
		"trace_id", traceID,
	)
}

func AuditToolCall(logger *slog.Logger, requestID, tool, traceID string) {
	logger.Info("audit.tool_call",
		"request_id", requestID,
		"tool", tool,
		"trace_id", traceID,
	)
}

func AuditToolResult(logger *slog.Logger, requestID, tool string, success bool, traceID string) {
	logger.Info("audit.tool_result",
		"request_id", requestID,
		"tool", tool,
		"success", success,
		"trace_id", traceID,
	)
}

func AuditParseCompleted(logger *slog.Logger, requestID, traceID string, lineItems, warnings int, elapsedMS int64) {
	logger.Info("audit.parse_completed",
		"request_id", requestID,
		"trace_id", traceID,
		"line_item_count", lineItems,
		"warning_count", warnings,
		"elapsed_ms", elapsedMS,
	)
}
