package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

// SubmissionRepository defines persistence for submissions.
// Implementations must be safe for concurrent use.
type SubmissionRepository interface {
	// Create inserts a new pending submission.
	Create(ctx context.Context, sub *domain.Submission) error

	// GetByID retrieves a submission by its UUID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// GetByToken retrieves the submission that owns a remote judge token.
	GetByToken(ctx context.Context, token string) (*domain.Submission, error)

	// SetResult writes the terminal outcome. It applies at most once per
	// submission and reports whether this call was the one that applied it.
	SetResult(ctx context.Context, id uuid.UUID, outcome domain.SubmissionOutcome) (bool, error)
}

// ProblemRepository reads problems and their hidden test cases.
type ProblemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Problem, error)
}

// ProgressStore holds per-user progress records.
type ProgressStore interface {
	// Get returns the user's record, or an empty record if none exists.
	Get(ctx context.Context, userID string) (*domain.ProgressRecord, error)

	// Update loads the record under an exclusive per-user lock and calls fn.
	// When fn returns true the mutated record is persisted in the same
	// transaction; when it returns false or an error nothing is written.
	Update(ctx context.Context, userID string, fn func(rec *domain.ProgressRecord) (bool, error)) error
}

// QuotaPolicy is the pair of gates a quota store enforces.
type QuotaPolicy struct {
	DailyLimit int
	Cooldown   time.Duration
}

// QuotaStore keeps per-user execution counters.
type QuotaStore interface {
	// Admit checks the daily cap and cooldown for (userID, day) and, when both
	// pass, consumes one execution. Check and consume are a single atomic step.
	Admit(ctx context.Context, userID, day string, now time.Time, policy QuotaPolicy) (domain.QuotaDecision, error)

	// Usage returns the current counters for (userID, day) without consuming.
	Usage(ctx context.Context, userID, day string) (domain.QuotaUsage, error)
}

// IdempotencyStore defines the interface for distributed deduplication locks.
type IdempotencyStore interface {
	// AcquireLock attempts to acquire an exclusive processing lock for an event.
	// Returns true if the lock was acquired (first time), false if already locked (duplicate).
	AcquireLock(ctx context.Context, eventID uuid.UUID) (bool, error)

	// MarkDone keeps the lock for the dedup window after successful processing.
	MarkDone(ctx context.Context, eventID uuid.UUID) error

	// ReleaseLock drops the lock so a failed event can be replayed.
	ReleaseLock(ctx context.Context, eventID uuid.UUID) error
}

// ProblemStatsRepository aggregates verdicts per problem.
type ProblemStatsRepository interface {
	RecordVerdict(ctx context.Context, event *domain.VerdictEvent) error
}
