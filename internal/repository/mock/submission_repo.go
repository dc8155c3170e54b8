package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.SubmissionRepository = (*SubmissionRepository)(nil)

// SubmissionRepository is an in-memory test double for repository.SubmissionRepository.
type SubmissionRepository struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]*domain.Submission

	// Hook functions for injecting errors
	CreateFn     func(ctx context.Context, sub *domain.Submission) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	GetByTokenFn func(ctx context.Context, token string) (*domain.Submission, error)
	SetResultFn  func(ctx context.Context, id uuid.UUID, outcome domain.SubmissionOutcome) (bool, error)

	// Recorded calls for assertions.
	Results []ResultUpdate
}

type ResultUpdate struct {
	ID      uuid.UUID
	Outcome domain.SubmissionOutcome
	Applied bool
}

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{subs: make(map[uuid.UUID]*domain.Submission)}
}

func (m *SubmissionRepository) Create(ctx context.Context, sub *domain.Submission) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, sub)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sub
	m.subs[sub.ID] = &cp
	return nil
}

func (m *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[id]
	if !ok {
		return nil, domain.ErrSubmissionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (m *SubmissionRepository) GetByToken(ctx context.Context, token string) (*domain.Submission, error) {
	if m.GetByTokenFn != nil {
		return m.GetByTokenFn(ctx, token)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subs {
		if sub.Token != nil && *sub.Token == token {
			cp := *sub
			return &cp, nil
		}
	}
	return nil, domain.ErrSubmissionNotFound
}

func (m *SubmissionRepository) SetResult(ctx context.Context, id uuid.UUID, outcome domain.SubmissionOutcome) (bool, error) {
	if m.SetResultFn != nil {
		applied, err := m.SetResultFn(ctx, id, outcome)
		m.record(id, outcome, applied)
		return applied, err
	}
	m.mu.Lock()
	sub, ok := m.subs[id]
	applied := false
	if ok && sub.CompletedAt == nil {
		now := time.Now()
		sub.Status = outcome.Status
		sub.Stdout = outcome.Stdout
		sub.Stderr = outcome.Stderr
		sub.CompileOutput = outcome.CompileOutput
		sub.TimeSeconds = outcome.TimeSeconds
		sub.MemoryKB = outcome.MemoryKB
		sub.ExitCode = outcome.ExitCode
		sub.PassedCases = outcome.PassedCases
		sub.TotalCases = outcome.TotalCases
		sub.XPEarned = outcome.XPEarned
		sub.CompletedAt = &now
		applied = true
	}
	m.mu.Unlock()
	m.record(id, outcome, applied)
	if !ok {
		return false, domain.ErrSubmissionNotFound
	}
	return applied, nil
}

func (m *SubmissionRepository) record(id uuid.UUID, outcome domain.SubmissionOutcome, applied bool) {
	m.mu.Lock()
	m.Results = append(m.Results, ResultUpdate{ID: id, Outcome: outcome, Applied: applied})
	m.mu.Unlock()
}

// Count returns the number of stored submissions.
func (m *SubmissionRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// All returns copies of every stored submission.
func (m *SubmissionRepository) All() []*domain.Submission {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Submission, 0, len(m.subs))
	for _, sub := range m.subs {
		cp := *sub
		out = append(out, &cp)
	}
	return out
}

// ---- ProblemRepository mock ----

var _ repository.ProblemRepository = (*ProblemRepository)(nil)

// ProblemRepository serves problems from a fixed map.
type ProblemRepository struct {
	Problems  map[string]*domain.Problem
	GetByIDFn func(ctx context.Context, id string) (*domain.Problem, error)
}

func (m *ProblemRepository) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	p, ok := m.Problems[id]
	if !ok {
		return nil, domain.ErrProblemNotFound
	}
	return p, nil
}
