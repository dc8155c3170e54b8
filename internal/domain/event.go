package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerdictEvent is published after a test submission has been evaluated.
type VerdictEvent struct {
	SubmissionID uuid.UUID       `json:"submission_id"`
	UserID       string          `json:"user_id"`
	ProblemID    string          `json:"problem_id"`
	Language     string          `json:"language"`
	Status       ExecutionStatus `json:"status"`
	Passed       int             `json:"passed"`
	Total        int             `json:"total"`
	XPEarned     int             `json:"xp_earned"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// FirstSolve reports whether this attempt awarded XP for the first time.
func (e *VerdictEvent) FirstSolve() bool {
	return e.Status == StatusAccepted && e.XPEarned > 0
}

// EventMessage wraps a consumed event with its broker acknowledgement callbacks.
type EventMessage struct {
	Event *VerdictEvent
	Ack   func() error
	Nack  func(requeue bool) error
}
