package judge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/metrics"
)

// Run is an in-flight submit-and-poll. It finishes when the remote job is
// terminal, the attempt bound is exhausted, or it is cancelled.
// Cancelling only stops local polling; the remote job keeps running.
type Run struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	token  string
	result *domain.ExecutionResult
	err    error
}

// Start submits req and polls in the background. The run's deadline is the
// earlier of ctx's deadline and the client's poll budget.
func (c *Client) Start(ctx context.Context, req Request) *Run {
	runCtx, cancel := context.WithTimeout(ctx, c.pollBudget())
	r := &Run{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		defer cancel()
		res, err := c.run(runCtx, req, r)
		if err != nil && ctx.Err() != nil {
			err = fmt.Errorf("judge: run: %w", ctx.Err())
		}
		r.mu.Lock()
		r.result, r.err = res, err
		r.mu.Unlock()
	}()
	return r
}

func (c *Client) run(ctx context.Context, req Request, r *Run) (*domain.ExecutionResult, error) {
	token, err := c.Submit(ctx, req)
	if err != nil {
		if isTimeout(err) {
			return nil, c.timeout("", 0)
		}
		return nil, err
	}
	r.setToken(token)

	timer := time.NewTimer(c.cfg.PollInterval)
	defer timer.Stop()

	for attempt := 1; attempt <= c.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			if isTimeout(ctx.Err()) {
				return nil, c.timeout(token, attempt-1)
			}
			return nil, fmt.Errorf("judge: run: %w", ctx.Err())
		case <-timer.C:
		}

		raw, err := c.Poll(ctx, token)
		if err != nil {
			if isTimeout(err) {
				return nil, c.timeout(token, attempt)
			}
			return nil, err
		}
		res := Interpret(raw)
		if !res.IsProcessing {
			return res, nil
		}
		timer.Reset(c.cfg.PollInterval)
	}
	return nil, c.timeout(token, c.cfg.MaxPollAttempts)
}

func (c *Client) timeout(token string, attempts int) error {
	metrics.JudgeErrors.WithLabelValues("timeout").Inc()
	c.logger.Warn("judge run did not finish in time",
		zap.String("token", token),
		zap.Int("attempts", attempts),
	)
	return fmt.Errorf("judge: run %s after %d polls: %w", token, attempts, domain.ErrExecutionTimeout)
}

func (r *Run) setToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

// Token returns the remote token, or "" before the submission is accepted.
func (r *Run) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is done. Returning early because
// of ctx does not cancel the run.
func (r *Run) Wait(ctx context.Context) (*domain.ExecutionResult, error) {
	select {
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.result, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("judge: wait: %w", ctx.Err())
	}
}

// Cancel stops local polling.
func (r *Run) Cancel() {
	r.cancel()
}
