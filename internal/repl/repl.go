package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"lox/internal/journal"
	"lox/internal/runner"
)

const (
	PROMPT         = "> "
	ExitCommand    = "exit"
	HistoryCommand = ":history"

	defaultHistoryCount = 10
	maxLineSize         = 16 * 1024 * 1024
)

// LineReader supplies one line of input per prompt. Prompt returns io.EOF (or
// liner.ErrPromptAborted) when the user is done.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// History lists journaled runs for the :history command.
type History interface {
	Recent(ctx context.Context, n int) ([]journal.Entry, error)
}

type Repl struct {
	reader  LineReader
	runner  *runner.Runner
	out     io.Writer
	prompt  string
	history History
}

type Option func(*Repl)

func WithPrompt(prompt string) Option {
	return func(r *Repl) {
		if prompt != "" {
			r.prompt = prompt
		}
	}
}

func WithHistory(history History) Option {
	return func(r *Repl) {
		r.history = history
	}
}

func New(reader LineReader, run *runner.Runner, out io.Writer, opts ...Option) *Repl {
	r := &Repl{
		reader: reader,
		runner: run,
		out:    out,
		prompt: PROMPT,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start reads and runs lines until end of input or the exit command. Each line is a
// complete program; errors in it are reported and the loop carries on.
func (r *Repl) Start(ctx context.Context) error {
	for {
		line, err := r.reader.Prompt(r.prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		command := strings.TrimSpace(line)
		switch {
		case command == "":
			continue
		case command == ExitCommand:
			return nil
		case strings.HasPrefix(command, HistoryCommand):
			r.reader.AppendHistory(line)
			r.listHistory(ctx, strings.TrimSpace(strings.TrimPrefix(command, HistoryCommand)))
			continue
		}

		r.reader.AppendHistory(line)
		result := r.runner.Run(ctx, line)
		slog.Debug("repl line evaluated", slog.String("status", result.Status.String()))
	}
}

func (r *Repl) listHistory(ctx context.Context, arg string) {
	if r.history == nil {
		fmt.Fprintln(r.out, "history is not available: no journal configured")
		return
	}

	n := defaultHistoryCount
	if arg != "" {
		parsed, err := strconv.Atoi(arg)
		if err != nil || parsed < 1 {
			fmt.Fprintf(r.out, "usage: %s [count]\n", HistoryCommand)
			return
		}
		n = parsed
	}

	entries, err := r.history.Recent(ctx, n)
	if err != nil {
		fmt.Fprintf(r.out, "failed to read history: %v\n", err)
		return
	}

	// oldest first, like a shell
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		source := strings.ReplaceAll(e.Source, "\n", " ")
		fmt.Fprintf(r.out, "%5d  %-13s  %s\n", e.ID, e.Status, source)
	}
}

// Terminal is a LineReader on the controlling terminal with line editing. Its
// history is loaded from and saved to a file.
type Terminal struct {
	*liner.State
	historyPath string
}

// DefaultHistoryPath is ~/.lox_history, or empty when there is no home directory.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lox_history")
}

func NewTerminal(historyPath string) *Terminal {
	t := &Terminal{State: liner.NewLiner(), historyPath: historyPath}
	t.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = t.ReadHistory(f)
			_ = f.Close()
		}
	}
	return t
}

// Close saves the history and restores the terminal.
func (t *Terminal) Close() error {
	if t.historyPath != "" {
		if f, err := os.Create(t.historyPath); err == nil {
			_, _ = t.WriteHistory(f)
			_ = f.Close()
		} else {
			slog.Warn("failed to save history", slog.Any("error", err))
		}
	}
	return t.State.Close()
}

// Scanner is a LineReader over a plain stream, used when input is not a terminal.
type Scanner struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewScanner(in io.Reader, out io.Writer) *Scanner {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Scanner{scanner: scanner, out: out}
}

func (s *Scanner) Prompt(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *Scanner) AppendHistory(string) {}
