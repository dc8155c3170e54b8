// Package progress awards XP, tracks solve streaks and unlocks achievements.
package progress

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/domain"
	"github.com/Harsh-BH/codepractice/internal/metrics"
	"github.com/Harsh-BH/codepractice/internal/repository"
)

const dateLayout = "2006-01-02"

// uncategorized is the bucket for problems without a category.
const uncategorized = "uncategorized"

// Ledger applies solves to progress records through a ProgressStore.
type Ledger struct {
	store  repository.ProgressStore
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewLedger(store repository.ProgressStore, loc *time.Location, logger *zap.Logger) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{store: store, loc: loc, now: time.Now, logger: logger}
}

// WithClock replaces the ledger's time source.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// RecordSolve credits problemID to the user. It is a no-op returning
// Updated=false when the problem is already solved. All counters change in
// one store transaction.
func (l *Ledger) RecordSolve(ctx context.Context, userID, problemID string, xp int, meta domain.ProblemMeta) (domain.SolveResult, error) {
	var result domain.SolveResult
	err := l.store.Update(ctx, userID, func(rec *domain.ProgressRecord) (bool, error) {
		result = Apply(rec, problemID, xp, meta, l.now().In(l.loc))
		return result.Updated, nil
	})
	if err != nil {
		return domain.SolveResult{}, fmt.Errorf("record solve: %w", err)
	}

	if result.Updated {
		metrics.XPAwarded.Add(float64(result.XPEarned))
		l.logger.Info("problem solved",
			zap.String("user_id", userID),
			zap.String("problem_id", problemID),
			zap.Int("xp", result.XPEarned),
			zap.Int("new_achievements", len(result.NewAchievements)),
		)
	}
	return result, nil
}

// Get returns the user's progress record.
func (l *Ledger) Get(ctx context.Context, userID string) (*domain.ProgressRecord, error) {
	rec, err := l.store.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return rec, nil
}

// Apply mutates rec for one solve at now. It is pure apart from rec.
func Apply(rec *domain.ProgressRecord, problemID string, xp int, meta domain.ProblemMeta, now time.Time) domain.SolveResult {
	if rec.HasSolved(problemID) {
		return domain.SolveResult{}
	}
	if xp < 0 {
		xp = 0
	}
	ensureMaps(rec)

	rec.SolvedProblems[problemID] = now
	rec.TotalSolved++
	rec.TotalXP += xp
	rec.ByCategory[categoryKey(meta.Category)]++
	rec.ByDifficulty[meta.Difficulty.Normalize()]++

	today := now.Format(dateLayout)
	applyStreak(rec, now)
	rec.DailyActivity = recordActivity(rec.DailyActivity, today, xp, now)
	rec.UpdatedAt = now

	return domain.SolveResult{
		Updated:         true,
		XPEarned:        xp,
		NewAchievements: unlock(rec, now),
	}
}

// applyStreak extends the streak on consecutive days, keeps it on a repeat
// solve the same day, and restarts it at 1 after a gap.
func applyStreak(rec *domain.ProgressRecord, now time.Time) {
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	switch rec.LastSolvedDate {
	case today:
		if rec.CurrentStreak == 0 {
			rec.CurrentStreak = 1
		}
	case yesterday:
		rec.CurrentStreak++
	default:
		rec.CurrentStreak = 1
	}
	rec.LastSolvedDate = today
	if rec.CurrentStreak > rec.LongestStreak {
		rec.LongestStreak = rec.CurrentStreak
	}
}

func recordActivity(days []domain.DailyActivity, today string, xp int, now time.Time) []domain.DailyActivity {
	found := false
	for i := range days {
		if days[i].Date == today {
			days[i].Solved++
			days[i].XP += xp
			found = true
			break
		}
	}
	if !found {
		days = append(days, domain.DailyActivity{Date: today, Solved: 1, XP: xp})
	}

	cutoff := now.AddDate(0, 0, -(domain.ActivityWindowDays - 1)).Format(dateLayout)
	kept := days[:0]
	for _, d := range days {
		if d.Date >= cutoff {
			kept = append(kept, d)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Date < kept[j].Date })
	return kept
}

func categoryKey(category string) string {
	if key := slug.Make(category); key != "" {
		return key
	}
	return uncategorized
}

func ensureMaps(rec *domain.ProgressRecord) {
	if rec.SolvedProblems == nil {
		rec.SolvedProblems = make(map[string]time.Time)
	}
	if rec.ByCategory == nil {
		rec.ByCategory = make(map[string]int)
	}
	if rec.ByDifficulty == nil {
		rec.ByDifficulty = make(map[domain.Difficulty]int)
	}
	if rec.Achievements == nil {
		rec.Achievements = make(map[domain.Achievement]time.Time)
	}
}
