package progress

import (
	"time"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

const (
	AchievementFirstSolve domain.Achievement = "first_solve"
	AchievementSolved10   domain.Achievement = "solved_10"
	AchievementSolved50   domain.Achievement = "solved_50"
	AchievementSolved100  domain.Achievement = "solved_100"
	AchievementStreak3    domain.Achievement = "streak_3"
	AchievementStreak7    domain.Achievement = "streak_7"
	AchievementStreak30   domain.Achievement = "streak_30"
	AchievementFirstHard  domain.Achievement = "first_hard"
	AchievementXP1000     domain.Achievement = "xp_1000"
)

type rule struct {
	id   domain.Achievement
	test func(rec *domain.ProgressRecord) bool
}

// rules are evaluated in order; the order is the order of NewAchievements.
var rules = []rule{
	{AchievementFirstSolve, func(r *domain.ProgressRecord) bool { return r.TotalSolved >= 1 }},
	{AchievementSolved10, func(r *domain.ProgressRecord) bool { return r.TotalSolved >= 10 }},
	{AchievementSolved50, func(r *domain.ProgressRecord) bool { return r.TotalSolved >= 50 }},
	{AchievementSolved100, func(r *domain.ProgressRecord) bool { return r.TotalSolved >= 100 }},
	{AchievementStreak3, func(r *domain.ProgressRecord) bool { return r.CurrentStreak >= 3 }},
	{AchievementStreak7, func(r *domain.ProgressRecord) bool { return r.CurrentStreak >= 7 }},
	{AchievementStreak30, func(r *domain.ProgressRecord) bool { return r.CurrentStreak >= 30 }},
	{AchievementFirstHard, func(r *domain.ProgressRecord) bool { return r.ByDifficulty[domain.DifficultyHard] >= 1 }},
	{AchievementXP1000, func(r *domain.ProgressRecord) bool { return r.TotalXP >= 1000 }},
}

func unlock(rec *domain.ProgressRecord, now time.Time) []domain.Achievement {
	var unlocked []domain.Achievement
	for _, r := range rules {
		if _, held := rec.Achievements[r.id]; held {
			continue
		}
		if r.test(rec) {
			rec.Achievements[r.id] = now
			unlocked = append(unlocked, r.id)
		}
	}
	return unlocked
}
