package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/completion"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
	"github.com/joseph-ayodele/invoice-sentinel/internal/extraction"
	"github.com/joseph-ayodele/invoice-sentinel/internal/modeselect"
	"github.com/joseph-ayodele/invoice-sentinel/internal/normalize"
	"github.com/joseph-ayodele/invoice-sentinel/internal/pipeline"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

func newTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	mockExt := extraction.NewMock(logger)
	mockComp := completion.NewMock(logger)
	proc := &pipeline.Processor{
		Logger:         logger,
		Cfg:            common.PipelineConfig{ProbeTimeout: 100 * time.Millisecond, RequestDeadline: 5 * time.Second},
		Selector:       modeselect.NewSelector(mockExt, mockComp, 100*time.Millisecond, logger),
		MockExtraction: mockExt,
		MockCompletion: mockComp,
		Normalizer:     normalize.New(logger),
		Tel:            telemetry.Noop(),
	}
	s := New(common.ServerConfig{Addr: ":0", APIKey: apiKey}, proc, nil, logger)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func postParse(t *testing.T, ts *httptest.Server, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/parse", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestParseHappyPath(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postParse(t, ts, `{"document_url":"http://localhost:8000/sample_invoice_anomaly.pdf"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, "full-offline", string(result.Mode))
	require.NotNil(t, result.Invoice.Vendor)
	assert.Equal(t, "Alpine Office Supplies", *result.Invoice.Vendor)
	assert.Len(t, result.Warnings, 2)
	assert.Equal(t, result.RequestID, resp.Header.Get("X-Request-Id"))
}

func TestParseLegacyPDFURLField(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postParse(t, ts, `{"pdf_url":"http://localhost:8000/sample_invoice_clean.pdf"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Empty(t, result.Warnings)
}

func TestParseRejectsMissingDocument(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postParse(t, ts, `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postParse(t, ts, `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseAuth(t *testing.T) {
	ts := newTestServer(t, "secret-key")
	body := `{"document_url":"http://localhost:8000/sample_invoice_clean.pdf"}`

	resp := postParse(t, ts, body, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postParse(t, ts, body, map[string]string{"X-Api-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postParse(t, ts, body, map[string]string{"X-Api-Key": "secret-key"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthIsUnauthenticated(t *testing.T) {
	ts := newTestServer(t, "secret-key")

	resp, err := ts.Client().Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "auto", body["mode"])
}

func TestParseHonorsInboundRequestID(t *testing.T) {
	ts := newTestServer(t, "")

	resp := postParse(t, ts, `{"document_url":"http://localhost:8000/sample_invoice_clean.pdf"}`,
		map[string]string{"X-Request-Id": "upstream-42"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result entity.AnalysisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "upstream-42", result.RequestID)
}
