package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	AudioDir    string `toml:"audio_dir"`
	RecordsFile string `toml:"records_file"`
	LogDir      string `toml:"log_dir"`
	// QuarantineDirName is the holding directory for files removed from
	// active consideration, created inside the audio folder.
	QuarantineDirName string `toml:"quarantine_dir"`
}

// Matching controls filename decomposition and candidate ranking.
type Matching struct {
	CaseSensitive    bool     `toml:"case_sensitive"`
	DefaultExtension string   `toml:"default_extension"`
	AudioExtensions  []string `toml:"audio_extensions"`
	CandidateLimit   int      `toml:"candidate_limit"`
	ConfidenceFloor  float64  `toml:"confidence_floor"`
	// Workers caps the goroutines used by the decomposition and ranking
	// passes. Zero means one worker per CPU.
	Workers int `toml:"workers"`
	// ContentField names the record field compared against orphan filenames
	// during candidate ranking.
	ContentField string `toml:"content_field"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// RuleNode is one node of an expectation rule tree: either a boolean
// combinator (exactly one of All/Any populated) or an atomic predicate.
type RuleNode struct {
	All []RuleNode `toml:"all"`
	Any []RuleNode `toml:"any"`

	Field    string   `toml:"field"`
	Operator string   `toml:"operator"`
	Value    string   `toml:"value"`
	Values   []string `toml:"values"`
}

// Rule configures the expectation rule for one field or field group.
type Rule struct {
	Kind string    `toml:"kind"` // always | non_empty | custom
	When *RuleNode `toml:"when"` // required when kind == custom
}

// Config is the root configuration shape.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Matching Matching `toml:"matching"`
	Logging  Logging  `toml:"logging"`

	// Suffixes maps a filename suffix (possibly empty) to the record fields
	// it identifies.
	Suffixes map[string][]string `toml:"suffixes"`
	// Groups names sets of fields that share one expectation rule.
	Groups map[string][]string `toml:"groups"`
	// Rules maps a field or group name to its expectation rule. Fields
	// without an entry default to "always".
	Rules map[string]Rule `toml:"rules"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dekereke/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dekereke.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes to outside the
// audio folder. The quarantine directory is deliberately not created here:
// its creation is an executor precondition with its own failure semantics.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// QuarantineDir returns the absolute quarantine directory for the configured
// audio folder.
func (c *Config) QuarantineDir() string {
	return filepath.Join(c.Paths.AudioDir, c.Paths.QuarantineDirName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
