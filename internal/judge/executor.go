// Package judge talks to a Judge0-compatible remote execution service.
package judge

import (
	"context"

	jsoniter "github.com/json-iterator/go"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request is one program run: source, stdin and the remote language id.
type Request struct {
	SourceCode string
	Stdin      string
	LanguageID int
	Limits     domain.Limits
}

// Executor is the single execution capability used by every caller.
// Client is the remote implementation; Fake is the deterministic test double.
type Executor interface {
	// Submit creates a remote job and returns its token without waiting.
	Submit(ctx context.Context, req Request) (string, error)

	// Poll fetches the current state of a job.
	Poll(ctx context.Context, token string) (*RawResult, error)

	// RunToCompletion submits once and polls until the job is terminal or the
	// attempt bound is exhausted (domain.ErrExecutionTimeout).
	RunToCompletion(ctx context.Context, req Request) (*domain.ExecutionResult, error)
}

// RawStatus is the remote status object.
type RawStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// RawResult is a get-submission response as it arrives on the wire.
// Text fields are base64 encoded. Time and memory are loosely typed remotely,
// so they are decoded into interface values and coerced by Interpret.
type RawResult struct {
	Token         string    `json:"token"`
	Status        RawStatus `json:"status"`
	Stdout        *string   `json:"stdout"`
	Stderr        *string   `json:"stderr"`
	CompileOutput *string   `json:"compile_output"`
	Message       *string   `json:"message"`
	Time          any       `json:"time"`
	Memory        any       `json:"memory"`
	ExitCode      *int      `json:"exit_code"`
}

type submissionPayload struct {
	SourceCode               string  `json:"source_code"`
	LanguageID               int     `json:"language_id"`
	Stdin                    string  `json:"stdin,omitempty"`
	CPUTimeLimit             float64 `json:"cpu_time_limit,omitempty"`
	MemoryLimit              int     `json:"memory_limit,omitempty"`
	WallTimeLimit            float64 `json:"wall_time_limit,omitempty"`
	MaxProcessesAndOrThreads int     `json:"max_processes_and_or_threads,omitempty"`
	MaxFileSize              int     `json:"max_file_size,omitempty"`
}

type submissionResponse struct {
	Token string `json:"token"`
}
