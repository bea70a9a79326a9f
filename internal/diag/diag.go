package diag

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
)

// Reporter receives diagnostics from the scanner, the parser and the interpreter.
type Reporter interface {
	Report(line int, where string, message string)
	ReportRuntime(line int, message string)
}

type Kind int

const (
	Static Kind = iota // scan or parse error
	Runtime
)

func (k Kind) String() string {
	if k == Runtime {
		return "runtime"
	}
	return "static"
}

type Diagnostic struct {
	Kind    Kind
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Kind == Runtime {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Diagnostics accumulates everything reported during one input and echoes each entry
// to its writer as it arrives. It is owned by the caller and reset between inputs.
type Diagnostics struct {
	out     io.Writer
	paint   *color.Color
	entries []Diagnostic

	hadError        bool
	hadRuntimeError bool
}

func New(out io.Writer) *Diagnostics {
	return &Diagnostics{out: out}
}

// WithColor enables red highlighting of written diagnostics.
func (d *Diagnostics) WithColor(enabled bool) *Diagnostics {
	if enabled {
		d.paint = color.New(color.FgRed)
		d.paint.EnableColor()
	} else {
		d.paint = nil
	}
	return d
}

func (d *Diagnostics) Report(line int, where string, message string) {
	d.hadError = true
	d.add(Diagnostic{Kind: Static, Line: line, Where: where, Message: message})
}

func (d *Diagnostics) ReportRuntime(line int, message string) {
	d.hadRuntimeError = true
	d.add(Diagnostic{Kind: Runtime, Line: line, Message: message})
}

func (d *Diagnostics) add(entry Diagnostic) {
	d.entries = append(d.entries, entry)
	slog.Debug("diagnostic reported",
		slog.String("kind", entry.Kind.String()),
		slog.Int("line", entry.Line),
		slog.String("message", entry.Message))

	if d.out == nil {
		return
	}
	if d.paint != nil {
		d.paint.Fprintln(d.out, entry.String())
		return
	}
	fmt.Fprintln(d.out, entry.String())
}

// HadError reports whether a scan or parse error was seen since the last Reset.
func (d *Diagnostics) HadError() bool { return d.hadError }

func (d *Diagnostics) HadRuntimeError() bool { return d.hadRuntimeError }

func (d *Diagnostics) Entries() []Diagnostic {
	return d.entries
}

func (d *Diagnostics) Reset() {
	d.entries = nil
	d.hadError = false
	d.hadRuntimeError = false
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(int, string, string) {}
func (discard) ReportRuntime(int, string)  {}
