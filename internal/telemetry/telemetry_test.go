package telemetry

import (
	"context"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutCollectorNeverFails(t *testing.T) {
	tel := Init(Config{ServiceName: "test"}, slog.New(slog.DiscardHandler))
	require.NotNil(t, tel)
	defer tel.Close(context.Background())

	ctx, span := tel.StartSpan(context.Background(), "test.span")
	require.NotNil(t, ctx)
	span.End()
}

func TestStartRequestGeneratesRequestID(t *testing.T) {
	tel := Noop()
	_, rc := tel.StartRequest(context.Background(), "http://example.com/doc.pdf", nil)
	defer rc.End()

	assert.NotEmpty(t, rc.RequestID)
	assert.NotEmpty(t, rc.TraceID)
}

func TestStartRequestHonorsInboundRequestID(t *testing.T) {
	tel := Noop()
	inbound := http.Header{}
	inbound.Set(HeaderRequestID, "upstream-7")

	_, rc := tel.StartRequest(context.Background(), "http://example.com/doc.pdf", inbound)
	defer rc.End()
	assert.Equal(t, "upstream-7", rc.RequestID)
}

func TestInjectWritesRequestID(t *testing.T) {
	tel := Noop()
	ctx, rc := tel.StartRequest(context.Background(), "http://example.com/doc.pdf", nil)
	defer rc.End()

	outbound := http.Header{}
	tel.Inject(ctx, outbound)
	assert.Equal(t, rc.RequestID, outbound.Get(HeaderRequestID))
}

func TestRequestIDsAreUniquePerRequest(t *testing.T) {
	tel := Noop()
	_, a := tel.StartRequest(context.Background(), "http://example.com/doc.pdf", nil)
	a.End()
	_, b := tel.StartRequest(context.Background(), "http://example.com/doc.pdf", nil)
	b.End()
	assert.NotEqual(t, a.RequestID, b.RequestID)
}
