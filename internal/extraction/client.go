package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-sentinel/constants"
	"github.com/joseph-ayodele/invoice-sentinel/internal/common"
	"github.com/joseph-ayodele/invoice-sentinel/internal/entity"
	"github.com/joseph-ayodele/invoice-sentinel/internal/telemetry"
)

// Client calls the GPU-backed extraction collaborator over HTTP.
type Client struct {
	cfg  common.GatewayConfig
	http *http.Client
	tel  *telemetry.Telemetry
	log  *slog.Logger
}

func NewClient(cfg common.GatewayConfig, tel *telemetry.Telemetry, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = telemetry.Noop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		tel:  tel,
		log:  logger,
	}
}

// Probe checks GET {endpoint}/health within the deadline carried by ctx.
// A timeout or connection failure is a reachability outcome, not an error.
func (c *Client) Probe(ctx context.Context) entity.CollaboratorHealth {
	return probeEndpoint(ctx, c.http, strings.TrimRight(c.cfg.Endpoint, "/")+"/health", constants.CollaboratorExtraction, c.log)
}

// Extract posts the document locator to the collaborator and decodes the
// raw invoice-shaped response. The shared-secret credential and the W3C
// trace header ride on every call.
func (c *Client) Extract(ctx context.Context, req Request) (RawExtraction, error) {
	start := time.Now()
	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/v1/extract"

	body, err := json.Marshal(req)
	if err != nil {
		return RawExtraction{}, fmt.Errorf("encode extract request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return RawExtraction{}, fmt.Errorf("build extract request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set(telemetry.HeaderAPIKey, c.cfg.APIKey)
	}
	c.tel.Inject(ctx, httpReq.Header)

	c.log.Info("extraction.request",
		"req_id", common.RequestIDFromContext(ctx),
		"url", url,
		"document_url", req.DocumentURL,
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Error("extraction.send_error",
			"req_id", common.RequestIDFromContext(ctx),
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return RawExtraction{}, fmt.Errorf("%w: %v", common.ErrGatewayFailure, err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("extraction.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("extraction.response",
		"req_id", common.RequestIDFromContext(ctx),
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return RawExtraction{}, fmt.Errorf("%w: extraction status %d", common.ErrGatewayFailure, resp.StatusCode)
	}

	// Shape check is advisory: a malformed payload is the normalizer's
	// problem, not a request failure.
	if err := ValidateAgainstSchema(raw); err != nil {
		c.log.Warn("extraction.schema_mismatch",
			"req_id", common.RequestIDFromContext(ctx),
			"error", err,
		)
	}

	var out RawExtraction
	if err := json.Unmarshal(raw, &out); err != nil {
		// Even undecodable JSON must not abort the request path; the
		// caller downgrades to the canned record.
		return RawExtraction{}, fmt.Errorf("%w: decode extraction response: %v", common.ErrGatewayFailure, err)
	}
	return out, nil
}

// probeEndpoint is the bounded reachability check shared by both gateways.
func probeEndpoint(ctx context.Context, client *http.Client, url, name string, logger *slog.Logger) entity.CollaboratorHealth {
	start := time.Now()
	health := entity.CollaboratorHealth{Name: name, ProbedAt: start}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		health.Latency = time.Since(start)
		return health
	}
	resp, err := client.Do(req)
	health.Latency = time.Since(start)
	if err != nil {
		logger.Warn("gateway.probe.unreachable", "collaborator", name, "error", err, "elapsed_ms", health.Latency.Milliseconds())
		return health
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	health.Reachable = resp.StatusCode/100 == 2
	if !health.Reachable {
		logger.Warn("gateway.probe.unhealthy", "collaborator", name, "status", resp.StatusCode)
	}
	return health
}
