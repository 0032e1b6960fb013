package completion

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

// Client calls an OpenAI-compatible chat/completions endpoint to produce
// the natural-language summary of an analyzed invoice.
type Client struct {
	cfg  common.CompletionConfig
	http *http.Client
	tel  *telemetry.Telemetry
	log  *slog.Logger
}

func NewClient(cfg common.CompletionConfig, tel *telemetry.Telemetry, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if tel == nil {
		tel = telemetry.Noop()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
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

// Probe checks GET {endpoint}/models within the deadline carried by ctx.
func (c *Client) Probe(ctx context.Context) entity.CollaboratorHealth {
	start := time.Now()
	health := entity.CollaboratorHealth{Name: constants.CollaboratorCompletion, ProbedAt: start}

	url := strings.TrimRight(c.cfg.Endpoint, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		health.Latency = time.Since(start)
		return health
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	resp, err := c.http.Do(req)
	health.Latency = time.Since(start)
	if err != nil {
		c.log.Warn("gateway.probe.unreachable", "collaborator", health.Name, "error", err, "elapsed_ms", health.Latency.Milliseconds())
		return health
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	health.Reachable = resp.StatusCode/100 == 2
	if !health.Reachable {
		c.log.Warn("gateway.probe.unhealthy", "collaborator", health.Name, "status", resp.StatusCode)
	}
	return health
}

// Summarize sends the canonical record and instruction to the model with
// temperature 0: the demo needs the live path to stay as repeatable as the
// model allows.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	invoiceJSON, err := json.Marshal(req.Invoice)
	if err != nil {
		return "", fmt.Errorf("encode invoice: %w", err)
	}
	warningsJSON, err := json.Marshal(req.Warnings)
	if err != nil {
		return "", fmt.Errorf("encode warnings: %w", err)
	}

	c.log.Info("completion.summarize.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"warning_count", len(req.Warnings),
		"has_instruction", req.Instruction != "",
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": 0.0,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt()},
			{"role": "user", "content": buildUserPrompt(string(invoiceJSON), string(warningsJSON), req.Instruction)},
		},
	}

	raw, err := c.post(ctx, strings.TrimRight(c.cfg.Endpoint, "/")+"/chat/completions", body)
	if err != nil {
		c.log.Error("completion.summarize.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: %v", common.ErrGatewayFailure, err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("%w: decode completion response: %v", common.ErrGatewayFailure, err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in completion response", common.ErrGatewayFailure)
	}

	summary := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("completion.summarize.ok",
		"req_id", rid,
		"summary_len", len(summary),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summary, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	c.tel.Inject(ctx, req.Header)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("completion.response_body_close_error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func systemPrompt() string {
	parts := []string{
		"You are an invoice analysis assistant.",
		"You receive a parsed invoice as JSON plus a list of detected anomalies.",
		"Write a short plain-text summary for a finance reviewer.",
		"Mention each anomaly once. Do not invent numbers that are not in the input.",
	}
	return strings.Join(parts, " ")
}

func buildUserPrompt(invoiceJSON, warningsJSON, instruction string) string {
	var b strings.Builder
	b.WriteString("Invoice:\n")
	b.WriteString(invoiceJSON)
	b.WriteString("\n\nDetected anomalies:\n")
	b.WriteString(warningsJSON)
	if instruction != "" {
		b.WriteString("\n\nReviewer instruction: ")
		b.WriteString(instruction)
	}
	return b.String()
}
