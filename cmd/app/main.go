package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"lox/internal/journal"
	"lox/internal/log"
	"lox/internal/repl"
	"lox/internal/runner"
	"lox/internal/util"
)

// sysexits codes
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitNoInput  = 66
	ExitSoftware = 70
	ExitConfig   = 78
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
)

type options struct {
	help    bool
	version bool
	// config vars
	configFile   string
	debugAST     string
	debugASTFile string
	color        bool
	// logging
	logLevel string
	logFile  string
	// journal
	journalDriver string
	journalDSN    string
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printHelp(stderr) }

	fs.BoolVar(&opts.help, "help", false, "Display help information and exit")
	fs.BoolVar(&opts.help, "h", false, "Display help information and exit")
	fs.BoolVar(&opts.version, "version", false, "Display version information and exit")
	fs.BoolVar(&opts.version, "v", false, "Display version information and exit")
	fs.StringVar(&opts.configFile, "config", "", "Load settings from a .toml or .yaml file")
	// parser config
	fs.StringVar(&opts.debugAST, "debug-ast", "", "Render each parsed program to stderr: text or json")
	fs.StringVar(&opts.debugASTFile, "debug-ast-file", "", "Write the JSON AST of each parsed program to this file")
	fs.BoolVar(&opts.color, "color", false, "Colour diagnostics when stderr is a terminal")
	// log config
	fs.StringVar(&opts.logLevel, "log-level", "none", "Log level: trace, debug, info, warn, error, none")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
	// journal config
	fs.StringVar(&opts.journalDriver, "journal-driver", "sqlite3", "Journal database driver: sqlite3, mysql, postgres")
	fs.StringVar(&opts.journalDSN, "journal-dsn", "", "Journal data source name; runs are not journaled when empty")
	return fs
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitOK
		}
		return ExitUsage
	}

	if opts.version {
		printVersion(stdout)
		return ExitOK
	}
	if opts.help {
		printHelp(stdout)
		return ExitOK
	}

	if fs.NArg() > 1 {
		fmt.Fprintln(stdout, "Usage: lox [options] [script]")
		return ExitUsage
	}

	config, err := configure(fs, &opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitConfig
	}

	logger, closeLog, err := log.Setup(config.LogLevel, config.LogFile, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%v; falling back to stderr\n", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx := context.Background()

	var runOpts []runner.Option
	var j *journal.Journal
	if config.JournalEnabled() {
		j, err = journal.Open(ctx, config.JournalDriver, config.JournalDSN)
		if err != nil {
			fmt.Fprintf(stderr, "journal disabled: %v\n", err)
		} else {
			defer j.Close()
			runOpts = append(runOpts, runner.WithRecorder(j))
		}
	}

	r := runner.New(config, stdout, stderr, runOpts...)

	if fs.NArg() == 1 {
		return runFile(ctx, r, fs.Arg(0), stderr)
	}
	return runPrompt(ctx, r, config, j, stdin, stdout, stderr)
}

// configure layers the config file, if any, under the flags that were set explicitly.
func configure(fs *flag.FlagSet, opts *options) (util.Configuration, error) {
	config := util.DefaultConfiguration()
	if opts.configFile != "" {
		var err error
		if config, err = util.LoadConfiguration(opts.configFile); err != nil {
			return config, err
		}
	}

	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug-ast":
			config.DebugAST = opts.debugAST
		case "debug-ast-file":
			config.DebugASTFile = opts.debugASTFile
		case "color":
			config.Color = opts.color
		case "log-level":
			config.LogLevel = opts.logLevel
		case "log-file":
			config.LogFile = opts.logFile
		case "journal-driver":
			config.JournalDriver = opts.journalDriver
		case "journal-dsn":
			config.JournalDSN = opts.journalDSN
		}
	})

	if config.Color && !isTerminal(os.Stderr) {
		config.Color = false
	}
	return config, config.Validate()
}

func runFile(ctx context.Context, r *runner.Runner, path string, stderr io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Could not read file '%s': %v\n", path, err)
		return ExitNoInput
	}

	result := r.Run(ctx, string(source))
	slog.Info("program finished",
		slog.String("file", path),
		slog.String("status", result.Status.String()))
	return result.Status.ExitCode()
}

func runPrompt(ctx context.Context, r *runner.Runner, config util.Configuration, j *journal.Journal, stdin io.Reader, stdout, stderr io.Writer) int {
	var reader repl.LineReader
	if f, ok := stdin.(*os.File); ok && isTerminal(f) {
		historyPath := config.HistoryFile
		if historyPath == "" {
			historyPath = repl.DefaultHistoryPath()
		}
		terminal := repl.NewTerminal(historyPath)
		defer terminal.Close()
		reader = terminal
	} else {
		reader = repl.NewScanner(stdin, stdout)
	}

	replOpts := []repl.Option{repl.WithPrompt(config.Prompt)}
	if j != nil {
		replOpts = append(replOpts, repl.WithHistory(j))
	}

	if err := repl.New(reader, r, stdout, replOpts...).Start(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitSoftware
	}
	return ExitOK
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "lox version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `Usage: lox [options] [script]

Options:
  -config <file>          Load settings from a .toml, .yaml or .yml file.
  -debug-ast <format>     Render each parsed program to stderr: text or json.
  -debug-ast-file <path>  Write the JSON AST of each parsed program to this file.
  -color                  Colour diagnostics when stderr is a terminal.
  -journal-driver <name>  Journal database driver: sqlite3, mysql, postgres. Default is 'sqlite3'.
  -journal-dsn <dsn>      Record every run in the journal at this data source.
  -help                   Display this help information and exit.
  -version                Display version information and exit.
  -log-level <level>      Set the log level: trace, debug, info, warn, error, none. Default is 'none'.
  -log-file <path>        Specify a log file to write logs. Default is stderr.

Details:
Without a script lox starts an interactive prompt; type 'exit' or end the input to
leave it. With a script the whole file runs as one program.

Exit codes:
  0   success
  64  wrong usage
  65  the script has syntax errors
  66  the script could not be read
  70  the script failed at runtime
  78  the configuration is invalid

Examples:
  lox                                   Start the interactive prompt
  lox hello.lox                         Run a script
  lox -journal-dsn runs.db hello.lox    Run a script and journal it in SQLite

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}
