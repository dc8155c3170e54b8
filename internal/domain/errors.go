package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSubmissionNotFound is returned when a submission or token cannot be found for the caller.
	ErrSubmissionNotFound = errors.New("submission not found")

	// ErrProblemNotFound is returned when a problem does not exist.
	ErrProblemNotFound = errors.New("problem not found")

	// ErrInvalidLanguage is returned when an unsupported language is submitted.
	ErrInvalidLanguage = errors.New("invalid or unsupported language")

	// ErrPayloadTooLarge is returned when the source code exceeds the size limit.
	ErrPayloadTooLarge = errors.New("source code exceeds maximum allowed length")

	// ErrEmptySourceCode is returned when source code is empty.
	ErrEmptySourceCode = errors.New("source code cannot be empty")

	// ErrMissingToken is returned when a result is requested without a token.
	ErrMissingToken = errors.New("execution token is required")

	// ErrMissingProblem is returned when a test submission names no problem.
	ErrMissingProblem = errors.New("problem id is required")

	// ErrNoTestCases is returned when a problem has nothing to evaluate against.
	ErrNoTestCases = errors.New("problem has no test cases")

	// ErrDangerousCode is returned when the security filter rejects a submission.
	// The message is intentionally generic.
	ErrDangerousCode = errors.New("code contains potentially dangerous operations")

	// ErrQuotaExceeded is wrapped by every QuotaError.
	ErrQuotaExceeded = errors.New("execution quota exceeded")

	// ErrUpstreamRateLimit is returned when the remote judge answers HTTP 429.
	ErrUpstreamRateLimit = errors.New("remote judge rate limit exceeded, try again later")

	// ErrExecutionTimeout is returned when polling exceeds its attempt bound.
	ErrExecutionTimeout = errors.New("execution did not finish within the polling bound")

	// ErrUpstreamUnavailable is returned for transport failures reaching the remote judge.
	ErrUpstreamUnavailable = errors.New("remote judge is unavailable")

	// ErrMalformedUpstream is returned when the remote judge sends a payload we cannot decode.
	ErrMalformedUpstream = errors.New("remote judge returned a malformed response")

	// ErrPublishFailed is returned when the message broker publish fails.
	ErrPublishFailed = errors.New("failed to publish event to message queue")
)

// QuotaError carries the admission decision that rejected an execution.
type QuotaError struct {
	Decision QuotaDecision
}

func (e *QuotaError) Error() string {
	if e.Decision.Reason == ReasonCooldownActive {
		return fmt.Sprintf("please wait %d seconds before executing again", e.Decision.RetryAfterSeconds)
	}
	return "daily execution limit reached"
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}
