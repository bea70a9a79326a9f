package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/evaluator"
	"lox/internal/journal"
	"lox/internal/lexer"
	"lox/internal/parser"
	"lox/internal/util"
)

type Status int

const (
	StatusOK Status = iota
	StatusStaticError
	StatusRuntimeError
)

func (s Status) String() string {
	switch s {
	case StatusStaticError:
		return "static-error"
	case StatusRuntimeError:
		return "runtime-error"
	default:
		return "ok"
	}
}

// ExitCode maps a status to the sysexits code the CLI terminates with.
func (s Status) ExitCode() int {
	switch s {
	case StatusStaticError:
		return 65 // EX_DATAERR
	case StatusRuntimeError:
		return 70 // EX_SOFTWARE
	default:
		return 0
	}
}

type Result struct {
	Status Status
	Output string // what the program printed
}

// Recorder stores finished runs.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) (journal.Entry, error)
}

type Option func(*Runner)

func WithRecorder(recorder Recorder) Option {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

// Runner pushes source text through scan, parse and interpret. It keeps a single
// evaluator, so bindings made by one Run are visible to the next. Calls must be
// serialized.
type Runner struct {
	config      util.Configuration
	errOut      io.Writer
	diagnostics *diag.Diagnostics
	evaluator   *evaluator.Evaluator
	captured    bytes.Buffer
	recorder    Recorder
}

func New(config util.Configuration, out, errOut io.Writer, opts ...Option) *Runner {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	r := &Runner{
		config:      config,
		errOut:      errOut,
		diagnostics: diag.New(errOut).WithColor(config.Color),
	}
	r.evaluator = evaluator.New(io.MultiWriter(out, &r.captured), r.diagnostics)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Diagnostics() *diag.Diagnostics {
	return r.diagnostics
}

// Run executes source as one program. Diagnostics from earlier runs are cleared first.
// The context only bounds journal I/O; the program itself runs to completion.
func (r *Runner) Run(ctx context.Context, source string) Result {
	r.diagnostics.Reset()
	r.captured.Reset()

	tokens := lexer.New(source, r.diagnostics).ScanTokens()
	statements := parser.New(tokens, r.diagnostics).Parse()

	r.renderAST(statements)

	var result Result
	if r.diagnostics.HadError() {
		r.showSource(source)
		result = Result{Status: StatusStaticError}
	} else {
		if err := r.evaluator.Interpret(statements); err != nil && !r.diagnostics.HadRuntimeError() {
			// output failures are not program errors
			slog.Warn("failed to write program output", slog.Any("error", err))
		}
		result = Result{Status: StatusOK, Output: r.captured.String()}
		if r.diagnostics.HadRuntimeError() {
			result.Status = StatusRuntimeError
		}
	}

	r.record(ctx, source, result)
	return result
}

func (r *Runner) renderAST(statements []ast.Stmt) {
	switch r.config.DebugAST {
	case util.DebugASTText:
		fmt.Fprintln(r.errOut, parser.RenderProgramAsText(statements))
	case util.DebugASTJSON:
		out, err := parser.RenderASTAsJSON(statements)
		if err != nil {
			slog.Warn("failed to render AST", slog.Any("error", err))
			return
		}
		io.WriteString(r.errOut, out)
	}

	if r.config.DebugASTFile != "" {
		if err := parser.WriteASTToJSON(statements, r.config.DebugASTFile); err != nil {
			slog.Warn("failed to write AST file",
				slog.String("file", r.config.DebugASTFile),
				slog.Any("error", err))
		}
	}
}

func (r *Runner) showSource(source string) {
	if !r.config.ShowSource {
		return
	}
	shown := map[int]bool{}
	for _, d := range r.diagnostics.Entries() {
		if d.Kind != diag.Static || shown[d.Line] {
			continue
		}
		shown[d.Line] = true
		io.WriteString(r.errOut, util.GetContextLines(source, d.Line))
	}
}

func (r *Runner) record(ctx context.Context, source string, result Result) {
	if r.recorder == nil {
		return
	}

	entries := r.diagnostics.Entries()
	lines := make([]string, len(entries))
	for i, d := range entries {
		lines[i] = d.String()
	}

	entry, err := r.recorder.Record(ctx, journal.Entry{
		Source:      source,
		Status:      result.Status.String(),
		Output:      result.Output,
		Diagnostics: strings.Join(lines, "\n"),
	})
	if err != nil {
		slog.Warn("failed to journal run", slog.Any("error", err))
		return
	}
	slog.Debug("run journaled",
		slog.Int64("id", entry.ID),
		slog.String("status", entry.Status))
}
