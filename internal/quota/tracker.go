// Package quota enforces the per-user daily execution cap and cooldown.
package quota

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/metrics"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

// Policy configures a Tracker.
type Policy struct {
	DailyLimit int
	Cooldown   time.Duration
	// Location decides where the day boundary falls. Nil means time.Local.
	Location *time.Location
}

// Tracker decides whether a user may execute code right now.
type Tracker struct {
	store  repository.QuotaStore
	policy Policy
	now    func() time.Time
}

func NewTracker(store repository.QuotaStore, policy Policy) *Tracker {
	if policy.Location == nil {
		policy.Location = time.Local
	}
	return &Tracker{store: store, policy: policy, now: time.Now}
}

// WithClock replaces the tracker's time source.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Admit checks the daily cap first, then the cooldown, and consumes one
// execution only when both pass. A rejection leaves the record untouched.
func (t *Tracker) Admit(ctx context.Context, userID string) (domain.QuotaDecision, error) {
	now := t.now()
	decision, err := t.store.Admit(ctx, userID, t.Day(now), now, repository.QuotaPolicy{
		DailyLimit: t.policy.DailyLimit,
		Cooldown:   t.policy.Cooldown,
	})
	if err != nil {
		return domain.QuotaDecision{}, fmt.Errorf("quota admit: %w", err)
	}
	if !decision.Allowed {
		metrics.QuotaRejections.WithLabelValues(string(decision.Reason)).Inc()
	}
	return decision, nil
}

// Stats reports the user's usage for the current day without consuming.
func (t *Tracker) Stats(ctx context.Context, userID string) (domain.QuotaStats, error) {
	now := t.now()
	usage, err := t.store.Usage(ctx, userID, t.Day(now))
	if err != nil {
		return domain.QuotaStats{}, fmt.Errorf("quota stats: %w", err)
	}

	remaining := t.policy.DailyLimit - usage.Used
	if remaining < 0 {
		remaining = 0
	}

	cooldownLeft := time.Duration(0)
	if !usage.LastExecutionAt.IsZero() {
		cooldownLeft = t.policy.Cooldown - now.Sub(usage.LastExecutionAt)
	}
	cooldownSeconds := 0
	if cooldownLeft > 0 {
		cooldownSeconds = int(math.Ceil(cooldownLeft.Seconds()))
	}

	return domain.QuotaStats{
		ExecutionsToday:     usage.Used,
		RemainingExecutions: remaining,
		DailyLimit:          t.policy.DailyLimit,
		CooldownSeconds:     cooldownSeconds,
		CanExecute:          remaining > 0 && cooldownSeconds == 0,
	}, nil
}

// DailyLimit returns the configured cap.
func (t *Tracker) DailyLimit() int {
	return t.policy.DailyLimit
}

// Day returns the calendar-day key for ts in the tracker's location.
func (t *Tracker) Day(ts time.Time) string {
	return ts.In(t.policy.Location).Format("2006-01-02")
}
