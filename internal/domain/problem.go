package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Difficulty of a practice problem.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Normalize lower-cases the difficulty and maps unknown values to medium.
func (d Difficulty) Normalize() Difficulty {
	switch v := Difficulty(strings.ToLower(strings.TrimSpace(string(d)))); v {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return v
	}
	return DifficultyMedium
}

// DefaultXP is awarded for a first solve when the problem carries no explicit reward.
func (d Difficulty) DefaultXP() int {
	switch d.Normalize() {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 40
	}
	return 20
}

// TestCase belongs to a problem. ExpectedOutput never leaves the server.
type TestCase struct {
	ID             string
	Input          string
	ExpectedOutput string
}

// Problem is read-only to the execution core.
type Problem struct {
	ID         string
	Title      string
	Category   string
	Difficulty Difficulty
	XPReward   int
	TestCases  []TestCase
}

// Meta returns the attributes the progress ledger needs.
func (p *Problem) Meta() ProblemMeta {
	return ProblemMeta{Category: p.Category, Difficulty: p.Difficulty.Normalize()}
}

// XP returns the reward for a first accepted solve.
func (p *Problem) XP() int {
	if p.XPReward > 0 {
		return p.XPReward
	}
	return p.Difficulty.DefaultXP()
}

// ProblemMeta describes a solved problem for bucketed counters.
type ProblemMeta struct {
	Category   string
	Difficulty Difficulty
}

// TestCaseResult is the externally visible result of one test case.
// It deliberately has no input or expected-output field.
type TestCaseResult struct {
	TestCaseID    string  `json:"testCaseId"`
	Passed        bool    `json:"passed"`
	ActualOutput  string  `json:"actualOutput"`
	ExecutionTime float64 `json:"executionTime"`
	MemoryUsed    int     `json:"memoryUsed"`
	Error         string  `json:"error,omitempty"`
}

// TestVerdict aggregates a submission's run against a problem's test cases.
type TestVerdict struct {
	Status          ExecutionStatus  `json:"status"`
	Results         []TestCaseResult `json:"testResults"`
	PassedTestCases int              `json:"passedTestCases"`
	TotalTestCases  int              `json:"totalTestCases"`
	ExecutionTime   float64          `json:"executionTime"`
	MemoryUsed      int              `json:"memoryUsed"`
	Error           string           `json:"error,omitempty"`
}

// Accepted reports whether every test case passed.
func (v *TestVerdict) Accepted() bool {
	return v.Status == StatusAccepted
}

// SubmitWithTestsRequest is the body of POST /submit-with-tests.
type SubmitWithTestsRequest struct {
	ProblemID string      `json:"problemId" binding:"required"`
	Code      string      `json:"code" binding:"required"`
	Language  LanguageRef `json:"language" binding:"required"`
}

// SubmitWithTestsResponse is returned for an evaluated attempt.
type SubmitWithTestsResponse struct {
	SubmissionID    uuid.UUID        `json:"submissionId"`
	Status          ExecutionStatus  `json:"status"`
	TestResults     []TestCaseResult `json:"testResults"`
	PassedTestCases int              `json:"passedTestCases"`
	TotalTestCases  int              `json:"totalTestCases"`
	ExecutionTime   float64          `json:"executionTime"`
	MemoryUsed      int              `json:"memoryUsed"`
	XPEarned        int              `json:"xpEarned"`
	Error           string           `json:"error,omitempty"`
	Achievements    []Achievement    `json:"newAchievements,omitempty"`
}
