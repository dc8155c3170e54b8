package domain

import "time"

// ActivityWindowDays bounds the trailing daily-activity window.
const ActivityWindowDays = 30

// Achievement identifiers.
type Achievement string

// DailyActivity counts solves on one calendar day (YYYY-MM-DD).
type DailyActivity struct {
	Date   string `json:"date"`
	Solved int    `json:"solved"`
	XP     int    `json:"xp"`
}

// ProgressRecord is a user's practice progress.
//
// Invariants: each problem id appears in SolvedProblems at most once,
// TotalXP never decreases, LongestStreak >= CurrentStreak.
type ProgressRecord struct {
	UserID         string                    `json:"userId"`
	TotalXP        int                       `json:"totalXp"`
	TotalSolved    int                       `json:"totalSolved"`
	CurrentStreak  int                       `json:"currentStreak"`
	LongestStreak  int                       `json:"longestStreak"`
	LastSolvedDate string                    `json:"lastSolvedDate,omitempty"`
	SolvedProblems map[string]time.Time      `json:"solvedProblems"`
	ByCategory     map[string]int            `json:"byCategory"`
	ByDifficulty   map[Difficulty]int        `json:"byDifficulty"`
	DailyActivity  []DailyActivity           `json:"dailyActivity"`
	Achievements   map[Achievement]time.Time `json:"achievements"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

// NewProgressRecord returns an empty record for a user.
func NewProgressRecord(userID string) *ProgressRecord {
	return &ProgressRecord{
		UserID:         userID,
		SolvedProblems: make(map[string]time.Time),
		ByCategory:     make(map[string]int),
		ByDifficulty:   make(map[Difficulty]int),
		Achievements:   make(map[Achievement]time.Time),
	}
}

// HasSolved reports whether the problem is already in the solved set.
func (p *ProgressRecord) HasSolved(problemID string) bool {
	_, ok := p.SolvedProblems[problemID]
	return ok
}

// SolveResult is returned by the progress ledger for one recordSolve call.
type SolveResult struct {
	Updated         bool          `json:"updated"`
	XPEarned        int           `json:"xpEarned"`
	NewAchievements []Achievement `json:"newAchievements,omitempty"`
}
