package judge

import (
	"context"
	"fmt"
	"sync"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

var _ Executor = (*Fake)(nil)

// Fake is a deterministic Executor. Responses are programmed per stdin;
// anything unprogrammed is Accepted with stdout equal to stdin.
type Fake struct {
	mu        sync.Mutex
	responses map[string]domain.ExecutionResult
	failures  map[string]error
	jobs      map[string]domain.ExecutionResult
	seq       int

	// Calls records every request passed to Submit or RunToCompletion.
	Calls []Request
}

func NewFake() *Fake {
	return &Fake{
		responses: make(map[string]domain.ExecutionResult),
		failures:  make(map[string]error),
		jobs:      make(map[string]domain.ExecutionResult),
	}
}

// On programs the result for runs whose stdin equals stdin.
func (f *Fake) On(stdin string, res domain.ExecutionResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.StatusID == 0 {
		res.StatusID = StatusID(res.Status)
	}
	res.IsProcessing = res.Status.IsProcessing()
	f.responses[stdin] = res
	return f
}

// FailOn makes runs whose stdin equals stdin return err.
func (f *Fake) FailOn(stdin string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[stdin] = err
	return f
}

func (f *Fake) Submit(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, req)
	if err, ok := f.failures[req.Stdin]; ok {
		return "", err
	}
	f.seq++
	token := fmt.Sprintf("fake-%d", f.seq)
	f.jobs[token] = f.resultFor(req)
	return token, nil
}

func (f *Fake) Poll(_ context.Context, token string) (*RawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.jobs[token]
	if !ok {
		return nil, fmt.Errorf("judge: poll %s: http 404: %w", token, domain.ErrUpstreamUnavailable)
	}
	return encodeRaw(token, res), nil
}

// RunToCompletion returns the programmed result. A programmed status that
// never leaves processing yields domain.ErrExecutionTimeout.
func (f *Fake) RunToCompletion(ctx context.Context, req Request) (*domain.ExecutionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("judge: run: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, req)
	if err, ok := f.failures[req.Stdin]; ok {
		return nil, err
	}
	res := f.resultFor(req)
	if res.IsProcessing {
		return nil, fmt.Errorf("judge: run: %w", domain.ErrExecutionTimeout)
	}
	return &res, nil
}

// CallCount returns the number of recorded calls.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

func (f *Fake) resultFor(req Request) domain.ExecutionResult {
	if res, ok := f.responses[req.Stdin]; ok {
		return res
	}
	return domain.ExecutionResult{
		StatusID:    3,
		Status:      domain.StatusAccepted,
		Stdout:      req.Stdin,
		TimeSeconds: 0.01,
		MemoryKB:    1024,
	}
}

func encodeRaw(token string, res domain.ExecutionResult) *RawResult {
	exit := res.ExitCode
	return &RawResult{
		Token:         token,
		Status:        RawStatus{ID: res.StatusID, Description: string(res.Status)},
		Stdout:        encodeText(res.Stdout),
		Stderr:        encodeText(res.Stderr),
		CompileOutput: encodeText(res.CompileOutput),
		Time:          res.TimeSeconds,
		Memory:        float64(res.MemoryKB),
		ExitCode:      &exit,
	}
}
