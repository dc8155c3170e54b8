package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/metrics"
)

var _ Executor = (*Client)(nil)

const maxResponseBytes = 4 << 20

// Config configures the remote client.
type Config struct {
	BaseURL         string
	APIKey          string
	APIHost         string
	HTTPTimeout     time.Duration
	PollInterval    time.Duration
	MaxPollAttempts int
	// WallTimeSlack is added to the CPU limit to form the wall-clock limit.
	WallTimeSlack     float64
	MaxProcesses      int
	MaxFileSizeKB     int
	RequestsPerSecond float64
	Burst             int
}

// Client is the remote Executor.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. A non-positive RequestsPerSecond disables
// local throttling.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = 10
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
}

// Submit creates a remote submission and returns its token.
func (c *Client) Submit(ctx context.Context, req Request) (string, error) {
	payload := submissionPayload{
		SourceCode:               base64.StdEncoding.EncodeToString([]byte(req.SourceCode)),
		LanguageID:               req.LanguageID,
		Stdin:                    base64.StdEncoding.EncodeToString([]byte(req.Stdin)),
		CPUTimeLimit:             req.Limits.CPUTimeSeconds,
		MemoryLimit:              req.Limits.MemoryKB,
		MaxProcessesAndOrThreads: c.cfg.MaxProcesses,
		MaxFileSize:              c.cfg.MaxFileSizeKB,
	}
	if req.Limits.CPUTimeSeconds > 0 {
		payload.WallTimeLimit = req.Limits.CPUTimeSeconds + c.cfg.WallTimeSlack
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("judge: encode submission: %w", err)
	}

	var resp submissionResponse
	if err := c.do(ctx, "submit", http.MethodPost, "/submissions?base64_encoded=true&wait=false", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		metrics.JudgeErrors.WithLabelValues("malformed").Inc()
		return "", fmt.Errorf("judge: submit: empty token: %w", domain.ErrMalformedUpstream)
	}

	c.logger.Debug("judge submission created",
		zap.String("token", resp.Token),
		zap.Int("language_id", req.LanguageID),
	)
	return resp.Token, nil
}

// Poll fetches the current state of a submission.
func (c *Client) Poll(ctx context.Context, token string) (*RawResult, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	var raw RawResult
	path := "/submissions/" + url.PathEscape(token) + "?base64_encoded=true"
	if err := c.do(ctx, "poll", http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Token == "" {
		raw.Token = token
	}
	return &raw, nil
}

// RunToCompletion is Start followed by Wait.
func (c *Client) RunToCompletion(ctx context.Context, req Request) (*domain.ExecutionResult, error) {
	run := c.Start(ctx, req)
	defer run.Cancel()
	return run.Wait(ctx)
}

// do performs one throttled HTTP exchange and decodes a JSON body into out.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("judge: %s: throttle: %w", op, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("judge: %s: build request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
	}
	if c.cfg.APIHost != "" {
		httpReq.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	metrics.JudgeRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("judge: %s: %w", op, ctxErr)
		}
		metrics.JudgeErrors.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("judge: %s: %w: %v", op, domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.JudgeErrors.WithLabelValues("unavailable").Inc()
		return fmt.Errorf("judge: %s: read body: %w: %v", op, domain.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		metrics.JudgeErrors.WithLabelValues("rate_limit").Inc()
		c.logger.Warn("judge rate limited", zap.String("op", op))
		return fmt.Errorf("judge: %s: %w", op, domain.ErrUpstreamRateLimit)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.JudgeErrors.WithLabelValues("unavailable").Inc()
		c.logger.Error("judge returned error status",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(data, 512)),
		)
		return fmt.Errorf("judge: %s: http %d: %w", op, resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.JudgeErrors.WithLabelValues("malformed").Inc()
		return fmt.Errorf("judge: %s: decode: %w: %v", op, domain.ErrMalformedUpstream, err)
	}
	return nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}

// pollBudget is the longest a run may spend polling.
func (c *Client) pollBudget() time.Duration {
	return c.cfg.PollInterval*time.Duration(c.cfg.MaxPollAttempts) + c.cfg.HTTPTimeout
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
