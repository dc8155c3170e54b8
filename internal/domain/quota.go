package domain

import "time"

// QuotaReason is the machine-readable cause of a quota rejection.
type QuotaReason string

const (
	ReasonDailyLimitExceeded QuotaReason = "DAILY_LIMIT_EXCEEDED"
	ReasonCooldownActive     QuotaReason = "COOLDOWN_ACTIVE"
)

// QuotaDecision is the result of a single admit-and-consume call.
type QuotaDecision struct {
	Allowed           bool        `json:"allowed"`
	Reason            QuotaReason `json:"reason,omitempty"`
	RetryAfterSeconds int         `json:"retryAfterSeconds,omitempty"`
	Remaining         int         `json:"remaining"`
}

// QuotaUsage is a read-only snapshot of a user's quota record.
type QuotaUsage struct {
	Day             string
	Used            int
	LastExecutionAt time.Time
}

// QuotaStats is the body of GET /code/stats.
type QuotaStats struct {
	ExecutionsToday     int  `json:"executionsToday"`
	RemainingExecutions int  `json:"remainingExecutions"`
	DailyLimit          int  `json:"dailyLimit"`
	CooldownSeconds     int  `json:"cooldownSeconds"`
	CanExecute          bool `json:"canExecute"`
}
