package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// SubmissionMode records which endpoint created a submission.
type SubmissionMode string

const (
	ModeAsync SubmissionMode = "async"
	ModeSync  SubmissionMode = "sync"
	ModeTests SubmissionMode = "tests"
)

// Submission is a user's code together with its single terminal outcome.
type Submission struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	ProblemID     *string         `json:"problem_id,omitempty"`
	Language      string          `json:"language"`
	SourceCode    string          `json:"source_code"`
	Stdin         string          `json:"stdin,omitempty"`
	Token         *string         `json:"token,omitempty"`
	Mode          SubmissionMode  `json:"mode"`
	Status        ExecutionStatus `json:"status"`
	Stdout        string          `json:"stdout,omitempty"`
	Stderr        string          `json:"stderr,omitempty"`
	CompileOutput string          `json:"compile_output,omitempty"`
	TimeSeconds   float64         `json:"time"`
	MemoryKB      int             `json:"memory"`
	ExitCode      *int            `json:"exit_code,omitempty"`
	PassedCases   int             `json:"passed_test_cases"`
	TotalCases    int             `json:"total_test_cases"`
	XPEarned      int             `json:"xp_earned"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// SubmissionOutcome is the terminal state written to a submission exactly once.
type SubmissionOutcome struct {
	Status        ExecutionStatus
	Stdout        string
	Stderr        string
	CompileOutput string
	TimeSeconds   float64
	MemoryKB      int
	ExitCode      *int
	PassedCases   int
	TotalCases    int
	XPEarned      int
}

// OutcomeFromResult converts a single run into a submission outcome.
func OutcomeFromResult(r *ExecutionResult) SubmissionOutcome {
	exit := r.ExitCode
	return SubmissionOutcome{
		Status:        r.Status,
		Stdout:        r.Stdout,
		Stderr:        r.Stderr,
		CompileOutput: r.CompileOutput,
		TimeSeconds:   r.TimeSeconds,
		MemoryKB:      r.MemoryKB,
		ExitCode:      &exit,
	}
}

// LanguageRef is a language given either as a symbolic name or as the
// judge's numeric id. Both JSON strings and numbers are accepted.
type LanguageRef string

func (l *LanguageRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = LanguageRef(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*l = LanguageRef(strconv.Itoa(n))
	return nil
}

// SubmitCodeRequest is the body of POST /code/submit.
type SubmitCodeRequest struct {
	SourceCode string      `json:"source_code" binding:"required"`
	LanguageID LanguageRef `json:"language_id" binding:"required"`
	Stdin      string      `json:"stdin"`
}

// SubmitCodeResponse is returned after a successful asynchronous submission.
type SubmitCodeResponse struct {
	Token               string    `json:"token"`
	SubmissionID        uuid.UUID `json:"submissionId"`
	RemainingExecutions int       `json:"remainingExecutions"`
}

// ExecuteCodeRequest is the body of POST /code/execute.
type ExecuteCodeRequest struct {
	Code     string      `json:"code" binding:"required"`
	Language LanguageRef `json:"language" binding:"required"`
	Stdin    string      `json:"stdin"`
}

// ExecutionStats accompanies every result returned to a client.
type ExecutionStats struct {
	ExecutionsToday     int `json:"executionsToday"`
	RemainingExecutions int `json:"remainingExecutions"`
	DailyLimit          int `json:"dailyLimit"`
}

// ResultResponse is the shape of GET /code/result/:token and POST /code/execute.
type ResultResponse struct {
	Result         *ExecutionResult `json:"result"`
	ExecutionStats ExecutionStats   `json:"executionStats"`
}
