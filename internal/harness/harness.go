// Package harness runs a submission against a problem's hidden test cases
// and aggregates a verdict.
package harness

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/judge"
	"github.com/Harsh-BH/codepractice/internal/metrics"
)

// Harness evaluates code against test cases through an Executor.
type Harness struct {
	executor    judge.Executor
	concurrency int
	budget      time.Duration
	logger      *zap.Logger
}

// New creates a harness. concurrency <= 1 runs cases strictly one after another.
func New(executor judge.Executor, concurrency int, logger *zap.Logger) *Harness {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Harness{executor: executor, concurrency: concurrency, logger: logger}
}

// WithBudget bounds a whole evaluation. When it expires the running case
// fails as an execution timeout and no further case starts. Zero means no
// bound beyond the caller's context.
func (h *Harness) WithBudget(d time.Duration) *Harness {
	h.budget = d
	return h
}

// caseOutcome is the result slot for one test case.
type caseOutcome struct {
	result domain.TestCaseResult
	err    error
	ran    bool
}

// Evaluate runs req's source once per test case with the case input as stdin.
// The verdict is Accepted only when every case passes. The first execution
// error stops evaluation and yields Runtime Error; results gathered before it
// are kept. Results are ordered like cases, never by completion.
func (h *Harness) Evaluate(ctx context.Context, req judge.Request, cases []domain.TestCase) (*domain.TestVerdict, error) {
	if len(cases) == 0 {
		return nil, domain.ErrNoTestCases
	}
	if h.budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.budget)
		defer cancel()
	}

	outcomes := make([]caseOutcome, len(cases))
	if h.concurrency == 1 {
		h.runSequential(ctx, req, cases, outcomes)
	} else {
		h.runBounded(ctx, req, cases, outcomes)
	}

	verdict := aggregate(outcomes, len(cases))
	metrics.VerdictsTotal.WithLabelValues(string(verdict.Status)).Inc()
	return verdict, nil
}

func (h *Harness) runSequential(ctx context.Context, req judge.Request, cases []domain.TestCase, outcomes []caseOutcome) {
	for i, tc := range cases {
		outcomes[i] = h.runCase(ctx, req, tc)
		if outcomes[i].err != nil {
			return
		}
	}
}

// runBounded runs up to h.concurrency cases at once. After the first error no
// further case is started; cases already in flight run to completion and are
// kept only if they precede the failing case.
func (h *Harness) runBounded(ctx context.Context, req judge.Request, cases []domain.TestCase, outcomes []caseOutcome) {
	var (
		mu     sync.Mutex
		failed bool
	)
	var g errgroup.Group
	g.SetLimit(h.concurrency)

	for i, tc := range cases {
		mu.Lock()
		stop := failed
		mu.Unlock()
		if stop {
			break
		}
		i, tc := i, tc // per-iteration copies; module builds with go 1.21 loop semantics
		g.Go(func() error {
			out := h.runCase(ctx, req, tc)
			mu.Lock()
			outcomes[i] = out
			if out.err != nil {
				failed = true
			}
			mu.Unlock()
			return out.err
		})
	}
	_ = g.Wait()
}

func (h *Harness) runCase(ctx context.Context, req judge.Request, tc domain.TestCase) caseOutcome {
	run := req
	run.Stdin = tc.Input

	res, err := h.executor.RunToCompletion(ctx, run)
	if err != nil {
		h.logger.Warn("test case execution failed",
			zap.String("test_case_id", tc.ID),
			zap.Error(err),
		)
		return caseOutcome{
			ran: true,
			err: err,
			result: domain.TestCaseResult{
				TestCaseID: tc.ID,
				Error:      errorMessage(err),
			},
		}
	}

	passed := res.Status == domain.StatusAccepted && Match(res.Stdout, tc.ExpectedOutput)
	out := domain.TestCaseResult{
		TestCaseID:    tc.ID,
		Passed:        passed,
		ActualOutput:  res.Stdout,
		ExecutionTime: res.TimeSeconds,
		MemoryUsed:    res.MemoryKB,
	}
	if res.Status != domain.StatusAccepted {
		out.Error = res.ErrorText()
	}
	return caseOutcome{ran: true, result: out}
}

func aggregate(outcomes []caseOutcome, total int) *domain.TestVerdict {
	verdict := &domain.TestVerdict{
		TotalTestCases: total,
		Results:        make([]domain.TestCaseResult, 0, total),
	}

	var timeSum float64
	var memSum, evaluated int
	for _, o := range outcomes {
		if !o.ran {
			continue
		}
		if o.err != nil {
			verdict.Status = domain.StatusRuntimeError
			verdict.Error = o.result.Error
			verdict.Results = append(verdict.Results, o.result)
			break
		}
		verdict.Results = append(verdict.Results, o.result)
		if o.result.Passed {
			verdict.PassedTestCases++
		}
		timeSum += o.result.ExecutionTime
		memSum += o.result.MemoryUsed
		evaluated++
	}

	if evaluated > 0 {
		verdict.ExecutionTime = timeSum / float64(evaluated)
		verdict.MemoryUsed = memSum / evaluated
	}
	if verdict.Status == "" {
		if verdict.PassedTestCases == total {
			verdict.Status = domain.StatusAccepted
		} else {
			verdict.Status = domain.StatusWrongAnswer
		}
	}
	return verdict
}

// errorMessage keeps user-facing text short for the well-known failures.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrExecutionTimeout), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrExecutionTimeout.Error()
	case errors.Is(err, domain.ErrUpstreamRateLimit):
		return domain.ErrUpstreamRateLimit.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return domain.ErrUpstreamUnavailable.Error()
	case errors.Is(err, context.Canceled):
		return "execution cancelled"
	}
	return err.Error()
}
