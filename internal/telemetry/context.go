package telemetry

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
)

// Header names for cross-component correlation. The trace context itself
// travels in the W3C traceparent header written by the propagator.
const (
	HeaderRequestID = "X-Request-Id"
	HeaderAPIKey    = "X-Api-Key"
)

// RequestContext carries the correlation identifiers for one logical
// request. It is created once at request entry, passed by pointer through
// every downstream call, and closed after the final export attempt.
type RequestContext struct {
	RequestID string
	TraceID   string

	root trace.Span
}

// StartRequest opens the root span for one pipeline invocation. Inbound
// headers may carry a traceparent from an upstream caller and an existing
// request id; both are honored so logs correlate across components.
func (t *Telemetry) StartRequest(ctx context.Context, documentURL string, inbound http.Header) (context.Context, *RequestContext) {
	if inbound != nil {
		ctx = t.propagator.Extract(ctx, propagation.HeaderCarrier(inbound))
	}

	requestID := ""
	if inbound != nil {
		requestID = inbound.Get(HeaderRequestID)
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx, span := t.tracer.Start(ctx, "pipeline.handle_request",
		trace.WithAttributes(
			attribute.String("document.url", documentURL),
			attribute.String("request.id", requestID),
		),
	)

	rc := &RequestContext{
		RequestID: requestID,
		TraceID:   span.SpanContext().TraceID().String(),
		root:      span,
	}
	ctx = common.WithRequestID(ctx, requestID)
	return ctx, rc
}

// End closes the root span. Export happens asynchronously; Close on the
// Telemetry handles the final flush attempt.
func (rc *RequestContext) End() {
	if rc.root != nil {
		rc.root.End()
	}
}

// Inject writes the W3C traceparent and the request id onto an outbound
// call so a human can correlate logs across components.
func (t *Telemetry) Inject(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
	if id := common.RequestIDFromContext(ctx); id != "" {
		headers.Set(HeaderRequestID, id)
	}
}
