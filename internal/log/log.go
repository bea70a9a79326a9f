package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
)

// LevelNone is above every level the interpreter logs at.
const LevelNone = slog.Level(12)

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "trace", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return LevelNone
	}
}

// reopenFile is a log destination that can be reopened in place, so an external
// rotator can move the file away and signal the process.
type reopenFile struct {
	mu   sync.Mutex
	path string
	fh   *os.File
}

func openReopenFile(path string) (*reopenFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for '%s': %w", path, err)
	}
	f := &reopenFile{path: path}
	if err := f.reopen(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *reopenFile) reopen() error {
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file '%s': %w", f.path, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fh != nil {
		f.fh.Close()
	}
	f.fh = fh
	return nil
}

func (f *reopenFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fh.Write(p)
}

func (f *reopenFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fh.Close()
}

// Setup builds a JSON logger at the given level. With a file path the log goes to
// that file, reopened on SIGHUP:
//
//	mv lox.log lox.bak && kill -HUP <pid>
//
// otherwise it goes to fallback. If the file cannot be opened the error is returned
// along with a logger writing to fallback. The returned func releases the file.
func Setup(level, file string, fallback io.Writer) (*slog.Logger, func(), error) {
	options := &slog.HandlerOptions{
		AddSource: false,
		Level:     ParseLevel(level),
	}

	if file == "" {
		return slog.New(slog.NewJSONHandler(fallback, options)), func() {}, nil
	}

	f, err := openReopenFile(file)
	if err != nil {
		return slog.New(slog.NewJSONHandler(fallback, options)), func() {}, err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-sigs:
				if err := f.reopen(); err != nil {
					fmt.Fprintf(fallback, "could not reopen log file: %v\n", err)
				}
			case <-done:
				return
			}
		}
	}()

	closer := func() {
		signal.Stop(sigs)
		close(done)
		f.Close()
	}
	return slog.New(slog.NewJSONHandler(f, options)), closer, nil
}
