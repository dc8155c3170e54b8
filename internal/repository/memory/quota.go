// Package memory holds in-process repository implementations for
// single-instance deployments and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

var _ repository.QuotaStore = (*QuotaStore)(nil)

type quotaEntry struct {
	day   string
	count int
	last  time.Time
}

// QuotaStore keeps quota counters in a map guarded by one mutex.
type QuotaStore struct {
	mu      sync.Mutex
	records map[string]*quotaEntry
}

func NewQuotaStore() *QuotaStore {
	return &QuotaStore{records: make(map[string]*quotaEntry)}
}

// Admit checks and consumes under the store lock. A record from an earlier
// day is replaced wholesale, cooldown stamp included.
func (s *QuotaStore) Admit(_ context.Context, userID, day string, now time.Time, policy repository.QuotaPolicy) (domain.QuotaDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.records[userID]
	if !ok || entry.day != day {
		entry = &quotaEntry{day: day}
		s.records[userID] = entry
	}

	if entry.count >= policy.DailyLimit {
		return domain.QuotaDecision{Reason: domain.ReasonDailyLimitExceeded}, nil
	}
	if !entry.last.IsZero() {
		if elapsed := now.Sub(entry.last); elapsed < policy.Cooldown {
			return domain.QuotaDecision{
				Reason:            domain.ReasonCooldownActive,
				RetryAfterSeconds: ceilSeconds(policy.Cooldown - elapsed),
				Remaining:         policy.DailyLimit - entry.count,
			}, nil
		}
	}

	entry.count++
	entry.last = now
	return domain.QuotaDecision{Allowed: true, Remaining: policy.DailyLimit - entry.count}, nil
}

func (s *QuotaStore) Usage(_ context.Context, userID, day string) (domain.QuotaUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.records[userID]
	if !ok || entry.day != day {
		return domain.QuotaUsage{Day: day}, nil
	}
	return domain.QuotaUsage{Day: day, Used: entry.count, LastExecutionAt: entry.last}, nil
}

// RunJanitor drops records from past days every interval until ctx is done.
func (s *QuotaStore) RunJanitor(ctx context.Context, every time.Duration, today func() string) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(today())
		}
	}
}

func (s *QuotaStore) sweep(day string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for user, entry := range s.records {
		if entry.day != day {
			delete(s.records, user)
			removed++
		}
	}
	return removed
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
