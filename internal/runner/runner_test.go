package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox/internal/journal"
	"lox/internal/util"
)

func newRunner(config util.Configuration, opts ...Option) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(config, &out, &errOut, opts...), &out, &errOut
}

func TestRunStatuses(t *testing.T) {
	tests := []struct {
		source   string
		status   Status
		exitCode int
		output   string
		errOut   string
	}{
		{"print 1 + 2;", StatusOK, 0, "3\n", ""},
		{`print "foo" + "bar";`, StatusOK, 0, "foobar\n", ""},
		{`print 1 + "bar";`, StatusRuntimeError, 70, "", "Operands must be two numbers or two strings.\n[line 1]\n"},
		{"print (1 + 2;", StatusStaticError, 65, "", "[line 1] Error at ';': Expected ')' after expression.\n"},
		{"print 1; @", StatusStaticError, 65, "", "[line 1] Error: Unexpected character.\n"},
		{"break; print 1;", StatusStaticError, 65, "", "[line 1] Error at 'break': Expected 'break' inside a loop\n"},
		{"print 1; print x; print 3;", StatusRuntimeError, 70, "1\n", "Undefined variable 'x'.\n[line 1]\n"},
	}

	for _, tt := range tests {
		r, out, errOut := newRunner(util.DefaultConfiguration())
		result := r.Run(context.Background(), tt.source)

		if result.Status != tt.status {
			t.Errorf("%q: expected status %s, got %s", tt.source, tt.status, result.Status)
		}
		if result.Status.ExitCode() != tt.exitCode {
			t.Errorf("%q: expected exit code %d, got %d", tt.source, tt.exitCode, result.Status.ExitCode())
		}
		if result.Output != tt.output || out.String() != tt.output {
			t.Errorf("%q: expected output %q, got result %q and stdout %q", tt.source, tt.output, result.Output, out.String())
		}
		if errOut.String() != tt.errOut {
			t.Errorf("%q: expected stderr %q, got %q", tt.source, tt.errOut, errOut.String())
		}
	}
}

func TestBindingsPersistAcrossRuns(t *testing.T) {
	r, out, _ := newRunner(util.DefaultConfiguration())
	ctx := context.Background()

	r.Run(ctx, "var a = 1;")
	r.Run(ctx, "print a +;") // static error leaves a untouched
	r.Run(ctx, "a = a + 1;")
	result := r.Run(ctx, "print a;")

	if result.Status != StatusOK || out.String() != "2\n" {
		t.Errorf("unexpected result %+v, stdout %q", result, out.String())
	}
}

func TestDiagnosticsResetBetweenRuns(t *testing.T) {
	r, _, _ := newRunner(util.DefaultConfiguration())
	ctx := context.Background()

	if result := r.Run(ctx, "print nope;"); result.Status != StatusRuntimeError {
		t.Fatalf("expected runtime error, got %s", result.Status)
	}
	result := r.Run(ctx, "print 1;")
	if result.Status != StatusOK {
		t.Errorf("expected ok after reset, got %s", result.Status)
	}
	if len(r.Diagnostics().Entries()) != 0 {
		t.Errorf("stale diagnostics %v", r.Diagnostics().Entries())
	}
}

func TestDebugAST(t *testing.T) {
	config := util.DefaultConfiguration()
	config.DebugAST = util.DebugASTText
	r, out, errOut := newRunner(config)
	r.Run(context.Background(), "print 1 + 2 * 3;")

	if errOut.String() != "print (1 + (2 * 3))\n" {
		t.Errorf("unexpected text AST %q", errOut.String())
	}
	if out.String() != "7\n" {
		t.Errorf("program did not run, stdout %q", out.String())
	}

	config.DebugAST = util.DebugASTJSON
	r, _, errOut = newRunner(config)
	r.Run(context.Background(), "var a = 1;")

	var program map[string]any
	if err := json.Unmarshal(errOut.Bytes(), &program); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, errOut.String())
	}
	if program["type"] != "Program" {
		t.Errorf("unexpected JSON AST %v", program)
	}
}

func TestDebugASTFile(t *testing.T) {
	config := util.DefaultConfiguration()
	config.DebugASTFile = filepath.Join(t.TempDir(), "a.lox.ast.json")
	r, out, errOut := newRunner(config)
	r.Run(context.Background(), "print 1;")

	if out.String() != "1\n" || errOut.Len() != 0 {
		t.Errorf("unexpected run output %q %q", out.String(), errOut.String())
	}
	data, err := os.ReadFile(config.DebugASTFile)
	if err != nil {
		t.Fatal(err)
	}
	var program map[string]any
	if err := json.Unmarshal(data, &program); err != nil {
		t.Fatalf("AST file is not JSON: %v\n%s", err, data)
	}
	if program["type"] != "Program" {
		t.Errorf("unexpected JSON AST %v", program)
	}
}

func TestShowSource(t *testing.T) {
	config := util.DefaultConfiguration()
	config.ShowSource = true
	r, _, errOut := newRunner(config)

	r.Run(context.Background(), "var a = 1;\nprint (a;")

	expected := "[line 2] Error at ';': Expected ')' after expression.\n" +
		"       1 | var a = 1;\n" +
		"  >    2 | print (a;\n"
	if errOut.String() != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, errOut.String())
	}
}

type recorderFunc func(ctx context.Context, entry journal.Entry) (journal.Entry, error)

func (f recorderFunc) Record(ctx context.Context, entry journal.Entry) (journal.Entry, error) {
	return f(ctx, entry)
}

func TestRunsAreRecorded(t *testing.T) {
	var recorded []journal.Entry
	recorder := recorderFunc(func(_ context.Context, entry journal.Entry) (journal.Entry, error) {
		recorded = append(recorded, entry)
		return entry, nil
	})

	r, _, _ := newRunner(util.DefaultConfiguration(), WithRecorder(recorder))
	ctx := context.Background()
	r.Run(ctx, "print 1;")
	r.Run(ctx, "print -nil;")

	if len(recorded) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(recorded))
	}
	if recorded[0].Status != "ok" || recorded[0].Output != "1\n" || recorded[0].Source != "print 1;" {
		t.Errorf("unexpected first entry %+v", recorded[0])
	}
	if recorded[1].Status != "runtime-error" || recorded[1].Diagnostics != "Operand must be a number.\n[line 1]" {
		t.Errorf("unexpected second entry %+v", recorded[1])
	}
}

func TestRecorderFailureDoesNotFailRun(t *testing.T) {
	recorder := recorderFunc(func(context.Context, journal.Entry) (journal.Entry, error) {
		return journal.Entry{}, errors.New("database is gone")
	})
	r, _, _ := newRunner(util.DefaultConfiguration(), WithRecorder(recorder))

	if result := r.Run(context.Background(), "print 1;"); result.Status != StatusOK {
		t.Errorf("expected ok, got %s", result.Status)
	}
}

func TestRunWithSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	j, err := journal.Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	r, _, _ := newRunner(util.DefaultConfiguration(), WithRecorder(j))
	r.Run(ctx, "for (var i = 0; i < 3; i = i + 1) print i;")

	entries, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Output != "0\n1\n2\n" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if !strings.HasPrefix(entries[0].Source, "for") || entries[0].Digest != journal.Digest(entries[0].Source) {
		t.Errorf("unexpected entry %+v", entries[0])
	}
}
