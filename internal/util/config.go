package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"lox/internal/journal"
)

var ErrUnsupportedConfig = errors.New("unsupported config file type")

const (
	DebugASTNone = ""
	DebugASTText = "text"
	DebugASTJSON = "json"
)

type Configuration struct {
	Version   string `toml:"-" yaml:"-"`
	BuildDate string `toml:"-" yaml:"-"`
	Commit    string `toml:"-" yaml:"-"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogFile  string `toml:"log_file" yaml:"log_file"`

	// DebugAST renders each parsed program to stderr before it runs: "text" or "json".
	DebugAST string `toml:"debug_ast" yaml:"debug_ast"`

	// DebugASTFile, when set, receives the JSON AST of every parsed program.
	DebugASTFile string `toml:"debug_ast_file" yaml:"debug_ast_file"`

	Color      bool `toml:"color" yaml:"color"`
	ShowSource bool `toml:"show_source" yaml:"show_source"`

	Prompt      string `toml:"prompt" yaml:"prompt"`
	HistoryFile string `toml:"history_file" yaml:"history_file"`

	JournalDriver string `toml:"journal_driver" yaml:"journal_driver"`
	JournalDSN    string `toml:"journal_dsn" yaml:"journal_dsn"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:      "none",
		Prompt:        "> ",
		JournalDriver: "sqlite3",
	}
}

// LoadConfiguration overlays the file at path onto the defaults. The format is picked
// from the extension: .toml, .yaml or .yml.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return config, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	default:
		return config, fmt.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}

	return config, config.Validate()
}

func (c Configuration) Validate() error {
	switch c.DebugAST {
	case DebugASTNone, DebugASTText, DebugASTJSON:
	default:
		return fmt.Errorf("invalid debug_ast value %q, expected text or json", c.DebugAST)
	}
	if !slices.Contains(journal.Drivers(), c.JournalDriver) {
		return fmt.Errorf("invalid journal_driver value %q, expected one of %s",
			c.JournalDriver, strings.Join(journal.Drivers(), ", "))
	}
	return nil
}

// JournalEnabled reports whether runs should be recorded.
func (c Configuration) JournalEnabled() bool {
	return c.JournalDSN != ""
}
