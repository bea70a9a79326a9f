package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(args []string, stdin string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunFileExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		exitCode int
		stdout   string
		stderr   string
	}{
		{"ok.lox", "print 1 + 2;", 0, "3\n", ""},
		{"static.lox", "print (1 + 2;", 65, "", "[line 1] Error at ';': Expected ')' after expression.\n"},
		{"runtime.lox", `print 1 + "bar";`, 70, "", "Operands must be two numbers or two strings.\n[line 1]\n"},
		{"loop.lox", "for (var i = 0; i < 3; i = i + 1) print i;", 0, "0\n1\n2\n", ""},
		{"scan.lox", "var a = 1;\n#", 65, "", "[line 2] Error: Unexpected character.\n"},
	}

	for _, tt := range tests {
		code, stdout, stderr := runCLI([]string{writeScript(t, tt.name, tt.source)}, "")
		if code != tt.exitCode {
			t.Errorf("%s: expected exit code %d, got %d", tt.name, tt.exitCode, code)
		}
		if stdout != tt.stdout {
			t.Errorf("%s: expected stdout %q, got %q", tt.name, tt.stdout, stdout)
		}
		if stderr != tt.stderr {
			t.Errorf("%s: expected stderr %q, got %q", tt.name, tt.stderr, stderr)
		}
	}
}

func TestTooManyArguments(t *testing.T) {
	code, stdout, _ := runCLI([]string{"a.lox", "b.lox"}, "")
	if code != 64 {
		t.Errorf("expected 64, got %d", code)
	}
	if !strings.HasPrefix(stdout, "Usage:") {
		t.Errorf("expected usage on stdout, got %q", stdout)
	}
}

func TestUnknownFlag(t *testing.T) {
	if code, _, _ := runCLI([]string{"-nope"}, ""); code != 64 {
		t.Errorf("expected 64, got %d", code)
	}
}

func TestMissingFile(t *testing.T) {
	code, _, stderr := runCLI([]string{filepath.Join(t.TempDir(), "missing.lox")}, "")
	if code != 66 {
		t.Errorf("expected 66, got %d", code)
	}
	if !strings.HasPrefix(stderr, "Could not read file") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestHelpAndVersion(t *testing.T) {
	code, stdout, _ := runCLI([]string{"-version"}, "")
	if code != 0 || !strings.HasPrefix(stdout, "lox version") {
		t.Errorf("unexpected version output %d %q", code, stdout)
	}
	code, stdout, _ = runCLI([]string{"-h"}, "")
	if code != 0 || !strings.Contains(stdout, "-journal-dsn") {
		t.Errorf("unexpected help output %d %q", code, stdout)
	}
}

func TestPromptFromStream(t *testing.T) {
	code, stdout, stderr := runCLI(nil, "var a = 1;\nprint a + 1;\nprint nope;\nprint a;\n")
	if code != 0 {
		t.Errorf("expected 0, got %d", code)
	}
	if stdout != "> > 2\n> > 1\n> " {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "Undefined variable 'nope'.\n[line 1]\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestPromptExit(t *testing.T) {
	_, stdout, _ := runCLI(nil, "print 1;\nexit\nprint 2;\n")
	if stdout != "> 1\n> " {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestConfigFileAndFlagOverride(t *testing.T) {
	config := writeScript(t, "lox.toml", "debug_ast = \"json\"\n")
	script := writeScript(t, "a.lox", "print 1;")

	code, stdout, stderr := runCLI([]string{"-config", config, "-debug-ast", "text", script}, "")
	if code != 0 || stdout != "1\n" {
		t.Fatalf("unexpected result %d %q", code, stdout)
	}
	if stderr != "print 1\n" {
		t.Errorf("flag should override the config file, stderr %q", stderr)
	}
}

func TestInvalidConfig(t *testing.T) {
	code, _, _ := runCLI([]string{"-debug-ast", "xml", writeScript(t, "a.lox", "print 1;")}, "")
	if code != 78 {
		t.Errorf("expected 78, got %d", code)
	}
	code, _, _ = runCLI([]string{"-config", writeScript(t, "lox.ini", "")}, "")
	if code != 78 {
		t.Errorf("expected 78, got %d", code)
	}
	code, _, stderr := runCLI([]string{"-journal-driver", "oracle", "-journal-dsn", "x", writeScript(t, "a.lox", "print 1;")}, "")
	if code != 78 || !strings.Contains(stderr, "journal_driver") {
		t.Errorf("expected 78 for an unknown journal driver, got %d %q", code, stderr)
	}
}

func TestDebugASTFileFlag(t *testing.T) {
	astFile := filepath.Join(t.TempDir(), "a.ast.json")
	code, stdout, _ := runCLI([]string{"-debug-ast-file", astFile, writeScript(t, "a.lox", "print 1;")}, "")
	if code != 0 || stdout != "1\n" {
		t.Fatalf("unexpected result %d %q", code, stdout)
	}
	data, err := os.ReadFile(astFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type": "Program"`) {
		t.Errorf("unexpected AST file %s", data)
	}
}

func TestJournaledRuns(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "runs.db")
	script := writeScript(t, "a.lox", "print 42;")

	if code, _, stderr := runCLI([]string{"-journal-dsn", dsn, script}, ""); code != 0 {
		t.Fatalf("unexpected exit %d: %s", code, stderr)
	}

	_, stdout, _ := runCLI([]string{"-journal-dsn", dsn}, ":history 1\n")
	if !strings.Contains(stdout, "ok") || !strings.Contains(stdout, "print 42;") {
		t.Errorf("expected the journaled run in history, got %q", stdout)
	}
}
