package language

import (
	"errors"
	"testing"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

func TestResolve(t *testing.T) {
	reg := Default()

	tests := []struct {
		ref    domain.LanguageRef
		wantID int
	}{
		{"python", 71},
		{"Python3", 71},
		{"cpp", 54},
		{"c++", 54},
		{"62", 62},
		{" go ", 60},
	}
	for _, tt := range tests {
		e, err := reg.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error: %v", tt.ref, err)
			continue
		}
		if e.ID != tt.wantID {
			t.Errorf("Resolve(%q): expected id %d, got %d", tt.ref, tt.wantID, e.ID)
		}
	}
}

func TestResolve_Unknown(t *testing.T) {
	reg := Default()

	for _, ref := range []domain.LanguageRef{"ruby", "9999", ""} {
		if _, err := reg.Resolve(ref); !errors.Is(err, domain.ErrInvalidLanguage) {
			t.Errorf("Resolve(%q): expected ErrInvalidLanguage, got %v", ref, err)
		}
	}
}

func TestLabel(t *testing.T) {
	reg := Default()
	if got := reg.Label(54); got != "C++" {
		t.Errorf("expected C++, got %s", got)
	}
	if got := reg.Label(1); got != "Unknown" {
		t.Errorf("expected Unknown, got %s", got)
	}
}

func TestNewRegistry_Duplicates(t *testing.T) {
	_, err := NewRegistry([]Entry{{Name: "python", ID: 71}, {Name: "Python", ID: 72}})
	if err == nil {
		t.Error("expected duplicate name error")
	}
	_, err = NewRegistry([]Entry{{Name: "python", ID: 71}, {Name: "py2", ID: 71}})
	if err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestList_Sorted(t *testing.T) {
	list := Default().List()
	if len(list) != len(DefaultEntries()) {
		t.Fatalf("expected %d entries, got %d", len(DefaultEntries()), len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Errorf("list not sorted at %d: %s > %s", i, list[i-1].Name, list[i].Name)
		}
	}
}
