package judge

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

var statusTable = map[int]domain.ExecutionStatus{
	1:  domain.StatusInQueue,
	2:  domain.StatusProcessing,
	3:  domain.StatusAccepted,
	4:  domain.StatusWrongAnswer,
	5:  domain.StatusTimeLimitExceeded,
	6:  domain.StatusCompilationError,
	7:  domain.StatusRuntimeSIGSEGV,
	8:  domain.StatusRuntimeSIGXFSZ,
	9:  domain.StatusRuntimeSIGFPE,
	10: domain.StatusRuntimeSIGABRT,
	11: domain.StatusRuntimeNZEC,
	12: domain.StatusRuntimeOther,
	13: domain.StatusInternalError,
	14: domain.StatusExecFormatError,
}

// StatusFor maps a remote status id. Ids outside the table are Unknown.
func StatusFor(id int) domain.ExecutionStatus {
	if s, ok := statusTable[id]; ok {
		return s
	}
	return domain.StatusUnknown
}

// StatusID is the inverse of StatusFor. Unknown statuses map to 0.
func StatusID(status domain.ExecutionStatus) int {
	for id, s := range statusTable {
		if s == status {
			return id
		}
	}
	return 0
}

// lastPendingID is the highest remote status id that is still queued or
// running. A payload without a status decodes to id 0 and counts as pending.
const lastPendingID = 2

// Interpret normalizes a raw remote payload. It never fails: absent or
// unparsable fields fall back to zero values.
func Interpret(raw *RawResult) *domain.ExecutionResult {
	if raw == nil {
		return &domain.ExecutionResult{Status: domain.StatusUnknown}
	}
	status := StatusFor(raw.Status.ID)
	pending := raw.Status.ID <= lastPendingID
	if pending && status == domain.StatusUnknown {
		status = domain.StatusInQueue
	}
	res := &domain.ExecutionResult{
		StatusID:      raw.Status.ID,
		Status:        status,
		IsProcessing:  pending,
		Stdout:        decodeText(raw.Stdout),
		Stderr:        decodeText(raw.Stderr),
		CompileOutput: decodeText(raw.CompileOutput),
		TimeSeconds:   coerceFloat(raw.Time),
		MemoryKB:      coerceInt(raw.Memory),
	}
	if raw.ExitCode != nil {
		res.ExitCode = *raw.ExitCode
	}
	return res
}

var base64Whitespace = strings.NewReplacer("\n", "", "\r", "")

// decodeText decodes a base64 field. The remote wraps long values with
// newlines. A value that is not valid base64 is returned as-is.
func decodeText(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	b, err := base64.StdEncoding.DecodeString(base64Whitespace.Replace(*s))
	if err != nil {
		return *s
	}
	return string(b)
}

func encodeText(s string) *string {
	if s == "" {
		return nil
	}
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	return &enc
}

func coerceFloat(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func coerceInt(v any) int {
	f := coerceFloat(v)
	if f > math.MaxInt32 {
		return 0
	}
	return int(f)
}
