package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestDiagnosticFormats(t *testing.T) {
	tests := []struct {
		diagnostic Diagnostic
		expected   string
	}{
		{Diagnostic{Kind: Static, Line: 3, Message: "Unexpected character."}, "[line 3] Error: Unexpected character."},
		{Diagnostic{Kind: Static, Line: 1, Where: " at end", Message: "Expected ';' after value."}, "[line 1] Error at end: Expected ';' after value."},
		{Diagnostic{Kind: Static, Line: 2, Where: " at ')'", Message: "Expected expression."}, "[line 2] Error at ')': Expected expression."},
		{Diagnostic{Kind: Runtime, Line: 7, Message: "Operand must be a number."}, "Operand must be a number.\n[line 7]"},
	}

	for _, tt := range tests {
		if actual := tt.diagnostic.String(); actual != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, actual)
		}
	}
}

func TestDiagnosticsAccumulateAndReset(t *testing.T) {
	var out bytes.Buffer
	d := New(&out)

	d.Report(1, "", "Unterminated string.")
	if !d.HadError() || d.HadRuntimeError() {
		t.Fatalf("unexpected flags after static report: %v %v", d.HadError(), d.HadRuntimeError())
	}
	d.ReportRuntime(4, "Undefined variable 'x'.")
	if !d.HadRuntimeError() {
		t.Fatal("runtime flag not set")
	}

	expected := "[line 1] Error: Unterminated string.\nUndefined variable 'x'.\n[line 4]\n"
	if out.String() != expected {
		t.Errorf("expected %q, got %q", expected, out.String())
	}
	if len(d.Entries()) != 2 || d.Entries()[1].Kind != Runtime {
		t.Errorf("unexpected entries %v", d.Entries())
	}

	d.Reset()
	if d.HadError() || d.HadRuntimeError() || len(d.Entries()) != 0 {
		t.Errorf("reset left state behind: %v", d.Entries())
	}
}

func TestDiagnosticsWithoutWriter(t *testing.T) {
	d := New(nil)
	d.Report(1, "", "Unexpected character.")
	if len(d.Entries()) != 1 {
		t.Errorf("expected the entry to be recorded, got %v", d.Entries())
	}
}

func TestColoredOutput(t *testing.T) {
	var out bytes.Buffer
	d := New(&out).WithColor(true)
	d.Report(1, "", "Unexpected character.")

	if !strings.Contains(out.String(), "\x1b[31m") {
		t.Errorf("expected red escape sequence, got %q", out.String())
	}
	if !strings.Contains(out.String(), "[line 1] Error: Unexpected character.") {
		t.Errorf("message missing from %q", out.String())
	}

	out.Reset()
	d.WithColor(false).Report(1, "", "x")
	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("colour not disabled: %q", out.String())
	}
}
