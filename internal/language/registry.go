// Package language maps symbolic language names to the remote judge's
// numeric identifiers and default execution limits.
package language

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

// Entry describes one supported language.
type Entry struct {
	Name     string        `json:"name"`
	ID       int           `json:"id"`
	Label    string        `json:"label"`
	Version  string        `json:"version"`
	Compiler string        `json:"compiler,omitempty"`
	Limits   domain.Limits `json:"limits"`
}

// Registry is an immutable lookup table. It is safe for concurrent use.
type Registry struct {
	byName map[string]Entry
	byID   map[int]Entry
	names  []string
}

// DefaultEntries is the language table shipped with the service.
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "python", ID: 71, Label: "Python", Version: "3.8.1", Limits: domain.Limits{CPUTimeSeconds: 5, MemoryKB: 128000}},
		{Name: "cpp", ID: 54, Label: "C++", Version: "GCC 9.2.0", Compiler: "g++", Limits: domain.Limits{CPUTimeSeconds: 2, MemoryKB: 128000}},
		{Name: "c", ID: 50, Label: "C", Version: "GCC 9.2.0", Compiler: "gcc", Limits: domain.Limits{CPUTimeSeconds: 2, MemoryKB: 128000}},
		{Name: "java", ID: 62, Label: "Java", Version: "OpenJDK 13.0.1", Compiler: "javac", Limits: domain.Limits{CPUTimeSeconds: 5, MemoryKB: 256000}},
		{Name: "javascript", ID: 63, Label: "JavaScript", Version: "Node.js 12.14.0", Limits: domain.Limits{CPUTimeSeconds: 5, MemoryKB: 128000}},
		{Name: "typescript", ID: 74, Label: "TypeScript", Version: "3.7.4", Limits: domain.Limits{CPUTimeSeconds: 5, MemoryKB: 128000}},
		{Name: "go", ID: 60, Label: "Go", Version: "1.13.5", Compiler: "go", Limits: domain.Limits{CPUTimeSeconds: 3, MemoryKB: 128000}},
		{Name: "csharp", ID: 51, Label: "C#", Version: "Mono 6.6.0.161", Compiler: "mcs", Limits: domain.Limits{CPUTimeSeconds: 5, MemoryKB: 256000}},
		{Name: "rust", ID: 73, Label: "Rust", Version: "1.40.0", Compiler: "rustc", Limits: domain.Limits{CPUTimeSeconds: 3, MemoryKB: 128000}},
	}
}

// aliases lets clients use common spellings.
var aliases = map[string]string{
	"python3": "python",
	"py":      "python",
	"c++":     "cpp",
	"js":      "javascript",
	"node":    "javascript",
	"ts":      "typescript",
	"golang":  "go",
	"c#":      "csharp",
	"cs":      "csharp",
	"rs":      "rust",
}

// NewRegistry builds a registry. Duplicate names or ids are rejected.
func NewRegistry(entries []Entry) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Entry, len(entries)),
		byID:   make(map[int]Entry, len(entries)),
	}
	for _, e := range entries {
		name := strings.ToLower(e.Name)
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("language: duplicate name %q", e.Name)
		}
		if _, dup := r.byID[e.ID]; dup {
			return nil, fmt.Errorf("language: duplicate id %d", e.ID)
		}
		e.Name = name
		r.byName[name] = e
		r.byID[e.ID] = e
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Default returns the registry built from DefaultEntries.
func Default() *Registry {
	r, err := NewRegistry(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup finds a language by symbolic name.
func (r *Registry) Lookup(name string) (Entry, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	e, ok := r.byName[key]
	if !ok {
		return Entry{}, domain.ErrInvalidLanguage
	}
	return e, nil
}

// Resolve accepts either a symbolic name or a numeric judge id.
func (r *Registry) Resolve(ref domain.LanguageRef) (Entry, error) {
	s := strings.TrimSpace(string(ref))
	if id, err := strconv.Atoi(s); err == nil {
		e, ok := r.byID[id]
		if !ok {
			return Entry{}, domain.ErrInvalidLanguage
		}
		return e, nil
	}
	return r.Lookup(s)
}

// Label returns the display label for a judge id, used only for presentation.
func (r *Registry) Label(id int) string {
	if e, ok := r.byID[id]; ok {
		return e.Label
	}
	return "Unknown"
}

// List returns all entries ordered by name.
func (r *Registry) List() []Entry {
	out := make([]Entry, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}
