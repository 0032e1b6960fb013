package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/completion"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
	"github.com/joseph-ayodele/invoice-sentinel/internal/extraction"
	"github.com/joseph-ayodele/invoice-sentinel/internal/modeselect"
	"github.com/joseph-ayodele/invoice-sentinel/internal/normalize"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

// failingExtraction probes healthy but fails every call, the shape of a
// collaborator that dies between the probe and the real request.
type failingExtraction struct{}

func (f *failingExtraction) Probe(ctx context.Context) entity.CollaboratorHealth {
	return entity.CollaboratorHealth{
		Name:      constants.CollaboratorExtraction,
		Reachable: true,
		ProbedAt:  time.Now().UTC(),
	}
}

func (f *failingExtraction) Extract(ctx context.Context, req extraction.Request) (extraction.RawExtraction, error) {
	return extraction.RawExtraction{}, errors.New("connection reset by peer")
}

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	mockExt := extraction.NewMock(logger)
	mockComp := completion.NewMock(logger)
	return &Processor{
		Logger:         logger,
		Cfg:            common.PipelineConfig{ProbeTimeout: 100 * time.Millisecond, RequestDeadline: 5 * time.Second},
		Selector:       modeselect.NewSelector(mockExt, mockComp, 100*time.Millisecond, logger),
		MockExtraction: mockExt,
		MockCompletion: mockComp,
		Normalizer:     normalize.New(logger),
		Tel:            telemetry.Noop(),
	}
}

func TestProcessFullOffline(t *testing.T) {
	p := newTestProcessor(t)

	res := p.Process(context.Background(), AnalysisRequest{
		DocumentURL: "http://localhost:8000/sample_invoice_anomaly.pdf",
	})

	assert.Equal(t, constants.ModeFullOffline, res.Mode)
	assert.NotEmpty(t, res.RequestID)
	assert.False(t, res.ExtractionDowngraded)
	assert.False(t, res.CompletionDowngraded)

	require.NotNil(t, res.Invoice.Vendor)
	assert.Equal(t, "Alpine Office Supplies", *res.Invoice.Vendor)
	require.Len(t, res.Invoice.LineItems, 5)

	// The anomaly document yields the planted mismatch and outlier.
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, constants.WarningSubtotalMismatch, res.Warnings[0].Code)
	assert.Equal(t, constants.WarningPriceOutlier, res.Warnings[1].Code)
	assert.Contains(t, res.Summary, "Two anomalies were detected")
}

func TestProcessCleanDocument(t *testing.T) {
	p := newTestProcessor(t)

	res := p.Process(context.Background(), AnalysisRequest{
		DocumentURL: "http://localhost:8000/sample_invoice_clean.pdf",
	})

	assert.Empty(t, res.Warnings)
	assert.Contains(t, res.Summary, "No anomalies were detected")
}

func TestProcessMidCallDowngrade(t *testing.T) {
	p := newTestProcessor(t)
	failing := &failingExtraction{}
	p.LiveExtraction = failing
	p.Selector = modeselect.NewSelector(failing, p.MockCompletion, 100*time.Millisecond, p.Logger)

	res := p.Process(context.Background(), AnalysisRequest{
		DocumentURL: "http://localhost:8000/sample_invoice_anomaly.pdf",
	})

	// The probe succeeded, so extraction ran live and failed mid-call.
	assert.Equal(t, constants.ModeExtractionOnly, res.Mode)
	assert.True(t, res.ExtractionDowngraded)
	assert.False(t, res.CompletionDowngraded)

	// The caller still got usable canned data, not an error.
	require.NotNil(t, res.Invoice.Vendor)
	require.Len(t, res.Invoice.LineItems, 5)
	assert.NotEmpty(t, res.Summary)
}

func TestProcessForcedOverride(t *testing.T) {
	p := newTestProcessor(t)
	p.Override = constants.ModeFullOffline
	p.Forced = true

	res := p.Process(context.Background(), AnalysisRequest{
		DocumentURL: "http://localhost:8000/sample_invoice_clean.pdf",
	})
	assert.Equal(t, constants.ModeFullOffline, res.Mode)
}

func TestProcessIsDeterministicOffline(t *testing.T) {
	p := newTestProcessor(t)
	req := AnalysisRequest{DocumentURL: "http://localhost:8000/sample_invoice_anomaly.pdf"}

	first := p.Process(context.Background(), req)
	second := p.Process(context.Background(), req)

	// Correlation ids differ per request; everything else is stable.
	assert.Equal(t, first.Invoice, second.Invoice)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Mode, second.Mode)
}
