package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// ---- QuotaStore mock ----

var _ repository.QuotaStore = (*QuotaStore)(nil)

// QuotaStore is a test double for repository.QuotaStore. Without hooks it
// admits everything.
type QuotaStore struct {
	mu sync.Mutex

	AdmitFn func(ctx context.Context, userID, day string, now time.Time, policy repository.QuotaPolicy) (domain.QuotaDecision, error)
	UsageFn func(ctx context.Context, userID, day string) (domain.QuotaUsage, error)

	AdmitCalls []string
}

func (m *QuotaStore) Admit(ctx context.Context, userID, day string, now time.Time, policy repository.QuotaPolicy) (domain.QuotaDecision, error) {
	m.mu.Lock()
	m.AdmitCalls = append(m.AdmitCalls, userID)
	m.mu.Unlock()
	if m.AdmitFn != nil {
		return m.AdmitFn(ctx, userID, day, now, policy)
	}
	return domain.QuotaDecision{Allowed: true, Remaining: policy.DailyLimit - 1}, nil
}

func (m *QuotaStore) Usage(ctx context.Context, userID, day string) (domain.QuotaUsage, error) {
	if m.UsageFn != nil {
		return m.UsageFn(ctx, userID, day)
	}
	return domain.QuotaUsage{Day: day}, nil
}

// ---- IdempotencyStore mock ----

var _ repository.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore is a test double for repository.IdempotencyStore.
type IdempotencyStore struct {
	mu sync.Mutex

	AcquireLockFn func(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDoneFn    func(ctx context.Context, id uuid.UUID) error
	ReleaseLockFn func(ctx context.Context, id uuid.UUID) error

	AcquireCalls []uuid.UUID
	DoneCalls    []uuid.UUID
	ReleaseCalls []uuid.UUID
}

func (m *IdempotencyStore) AcquireLock(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	m.AcquireCalls = append(m.AcquireCalls, id)
	m.mu.Unlock()
	if m.AcquireLockFn != nil {
		return m.AcquireLockFn(ctx, id)
	}
	return true, nil // default: lock acquired
}

func (m *IdempotencyStore) MarkDone(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.DoneCalls = append(m.DoneCalls, id)
	m.mu.Unlock()
	if m.MarkDoneFn != nil {
		return m.MarkDoneFn(ctx, id)
	}
	return nil
}

func (m *IdempotencyStore) ReleaseLock(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.ReleaseCalls = append(m.ReleaseCalls, id)
	m.mu.Unlock()
	if m.ReleaseLockFn != nil {
		return m.ReleaseLockFn(ctx, id)
	}
	return nil
}

// ---- ProblemStatsRepository mock ----

var _ repository.ProblemStatsRepository = (*ProblemStatsRepository)(nil)

type ProblemStatsRepository struct {
	mu sync.Mutex

	RecordVerdictFn func(ctx context.Context, event *domain.VerdictEvent) error

	Recorded []*domain.VerdictEvent
}

func (m *ProblemStatsRepository) RecordVerdict(ctx context.Context, event *domain.VerdictEvent) error {
	m.mu.Lock()
	m.Recorded = append(m.Recorded, event)
	m.mu.Unlock()
	if m.RecordVerdictFn != nil {
		return m.RecordVerdictFn(ctx, event)
	}
	return nil
}
