package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/Harsh-BH/codepractice/internal/domain"
)

func TestScan_Allows(t *testing.T) {
	f := NewFilter(0)

	safe := []string{
		"print(input())",
		"import re\npattern = re.compile(r'\\d+')\nprint(pattern.findall(input()))",
		"#include <iostream>\nint main() { std::cout << 42; }",
		"public class Main { public static void main(String[] a) { System.out.println(1); } }",
		"package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Println(1) }",
		"def execute(x):\n    return x\nprint(execute(1))",
		"const lines = require('readline');",
	}
	for _, code := range safe {
		if err := f.Scan(code); err != nil {
			t.Errorf("expected %q to pass, got %v", code, err)
		}
	}
}

func TestScan_Rejects(t *testing.T) {
	f := NewFilter(0)

	dangerous := []string{
		"import os\nos.listdir('/')",
		"import subprocess",
		"from subprocess import run",
		"eval('1+1')",
		"exec(\"print(1)\")",
		"__import__('os')",
		"const cp = require('child_process');",
		"require(\"fs\").readFileSync('/etc/passwd')",
		"process.exit(1)",
		"Runtime.getRuntime().exec(\"ls\");",
		"new ProcessBuilder(\"ls\").start();",
		"#include <unistd.h>\nint main(){fork();}",
		"int main(){ system(\"ls\"); }",
		"import \"os/exec\"",
	}
	for _, code := range dangerous {
		if err := f.Scan(code); !errors.Is(err, domain.ErrDangerousCode) {
			t.Errorf("expected %q to be rejected, got %v", code, err)
		}
	}
}

func TestScan_Length(t *testing.T) {
	f := NewFilter(16)

	if err := f.Scan(strings.Repeat("x", 17)); !errors.Is(err, domain.ErrPayloadTooLarge) {
		t.Errorf("expected ErrPayloadTooLarge, got %v", err)
	}
	if err := f.Scan(strings.Repeat("x", 16)); err != nil {
		t.Errorf("expected exactly-max source to pass, got %v", err)
	}
}

func TestScan_Empty(t *testing.T) {
	f := NewFilter(0)

	for _, code := range []string{"", "   ", "\n\t"} {
		if err := f.Scan(code); !errors.Is(err, domain.ErrEmptySourceCode) {
			t.Errorf("expected ErrEmptySourceCode for %q, got %v", code, err)
		}
	}
}

func TestScan_MessageIsGeneric(t *testing.T) {
	f := NewFilter(0)
	for _, code := range []string{"import os", "eval('x')", "process.exit(0)"} {
		err := f.Scan(code)
		if err == nil || err.Error() != domain.ErrDangerousCode.Error() {
			t.Errorf("expected generic rejection for %q, got %v", code, err)
		}
	}
}
