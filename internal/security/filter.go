// Package security screens submitted source before it is sent to the judge.
//
// The denylist is a coarse tripwire. Isolation is the remote judge's job;
// string concatenation or encoding trivially evades these patterns.
package security

import (
	"regexp"
	"strings"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

// DefaultMaxSourceBytes is used when no limit is configured.
const DefaultMaxSourceBytes = 64 * 1024

var defaultPatterns = []string{
	// process spawning and dynamic evaluation
	`\b(exec|eval|__import__|execfile)\s*\(`,
	`\bos\.(system|popen|fork|kill|exec\w*|spawn\w*)\s*\(`,
	`\bsubprocess\s*\.`,
	`\b(system|popen|fork|vfork|execve|execvp|execl|execlp)\s*\(`,
	`Runtime\s*\.\s*getRuntime\s*\(\s*\)\s*\.\s*exec`,
	`\bProcessBuilder\b`,
	`\bProcess\s*\.\s*Start\s*\(`,
	`\bprocess\s*\.\s*(exit|kill|binding|dlopen)\b`,

	// OS / filesystem / subprocess modules
	`\bimport\s+(os|subprocess|shutil|socket|ctypes|multiprocessing|pty)\b`,
	`\bfrom\s+(os|subprocess|shutil|socket|ctypes|multiprocessing|pty)(\.\w+)?\s+import\b`,
	`\brequire\s*\(\s*['"](child_process|fs|net|os|cluster|vm|worker_threads)['"]\s*\)`,
	`\bimport\s+.*\bfrom\s+['"](child_process|fs|net|os|cluster|vm)['"]`,
	`#\s*include\s*<\s*(unistd|sys/\w+|windows|spawn)\.h\s*>`,
	`"(os/exec|syscall|unsafe|net)"`,
	`\bstd\s*::\s*process\b`,
	`\bSystem\s*\.\s*Diagnostics\b`,
}

// Filter rejects empty, oversized, or obviously dangerous source code.
type Filter struct {
	maxBytes int
	patterns []*regexp.Regexp
}

// NewFilter compiles the default denylist. maxBytes <= 0 selects DefaultMaxSourceBytes.
func NewFilter(maxBytes int) *Filter {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxSourceBytes
	}
	f := &Filter{maxBytes: maxBytes}
	for _, p := range defaultPatterns {
		f.patterns = append(f.patterns, regexp.MustCompile(p))
	}
	return f
}

// MaxBytes returns the configured source length limit.
func (f *Filter) MaxBytes() int {
	return f.maxBytes
}

// Validate checks length and emptiness only.
func (f *Filter) Validate(code string) error {
	if strings.TrimSpace(code) == "" {
		return domain.ErrEmptySourceCode
	}
	if len(code) > f.maxBytes {
		return domain.ErrPayloadTooLarge
	}
	return nil
}

// Scan validates the code and runs the denylist. A match returns
// domain.ErrDangerousCode without saying which pattern fired.
func (f *Filter) Scan(code string) error {
	if err := f.Validate(code); err != nil {
		return err
	}
	for _, re := range f.patterns {
		if re.MatchString(code) {
			return domain.ErrDangerousCode
		}
	}
	return nil
}
