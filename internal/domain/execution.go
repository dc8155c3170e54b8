package domain

// ExecutionStatus is the normalized outcome of a remote execution.
type ExecutionStatus string

const (
	StatusInQueue           ExecutionStatus = "In Queue"
	StatusProcessing        ExecutionStatus = "Processing"
	StatusAccepted          ExecutionStatus = "Accepted"
	StatusWrongAnswer       ExecutionStatus = "Wrong Answer"
	StatusTimeLimitExceeded ExecutionStatus = "Time Limit Exceeded"
	StatusCompilationError  ExecutionStatus = "Compilation Error"
	StatusRuntimeSIGSEGV    ExecutionStatus = "Runtime Error (SIGSEGV)"
	StatusRuntimeSIGXFSZ    ExecutionStatus = "Runtime Error (SIGXFSZ)"
	StatusRuntimeSIGFPE     ExecutionStatus = "Runtime Error (SIGFPE)"
	StatusRuntimeSIGABRT    ExecutionStatus = "Runtime Error (SIGABRT)"
	StatusRuntimeNZEC       ExecutionStatus = "Runtime Error (NZEC)"
	StatusRuntimeOther      ExecutionStatus = "Runtime Error (Other)"
	StatusInternalError     ExecutionStatus = "Internal Error"
	StatusExecFormatError   ExecutionStatus = "Exec Format Error"
	StatusUnknown           ExecutionStatus = "Unknown"

	// StatusRuntimeError is the submission-level status reported when an
	// execution could not be carried out at all (timeout, upstream failure).
	StatusRuntimeError ExecutionStatus = "Runtime Error"

	// StatusPending marks a stored submission that has no outcome yet.
	StatusPending ExecutionStatus = "Pending"
)

// IsProcessing returns true while the remote judge has not finished.
func (s ExecutionStatus) IsProcessing() bool {
	return s == StatusInQueue || s == StatusProcessing
}

// IsTerminal returns true if the status represents a final state.
func (s ExecutionStatus) IsTerminal() bool {
	return !s.IsProcessing() && s != StatusPending
}

// Limits are the resource caps attached to a remote submission.
type Limits struct {
	CPUTimeSeconds float64 `json:"cpu_time_limit"`
	MemoryKB       int     `json:"memory_limit"`
}

// ExecutionResult is the interpreted outcome of one remote run. It is a value
// type and is never mutated after the interpreter builds it.
type ExecutionResult struct {
	StatusID      int             `json:"status_id"`
	Status        ExecutionStatus `json:"status"`
	IsProcessing  bool            `json:"isProcessing"`
	Stdout        string          `json:"stdout"`
	Stderr        string          `json:"stderr"`
	CompileOutput string          `json:"compile_output"`
	TimeSeconds   float64         `json:"time"`
	MemoryKB      int             `json:"memory"`
	ExitCode      int             `json:"exit_code"`
}

// ErrorText picks the most useful diagnostic for a failed run.
func (r *ExecutionResult) ErrorText() string {
	switch {
	case r.CompileOutput != "":
		return r.CompileOutput
	case r.Stderr != "":
		return r.Stderr
	case r.Status != StatusAccepted:
		return string(r.Status)
	}
	return ""
}
