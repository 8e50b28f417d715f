package testsupport

import (
	"path/filepath"
	"testing"

	"dekereke/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.AudioDir = filepath.Join(base, "audio")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.RecordsFile = filepath.Join(base, "records.json")
	cfgVal.Suffixes = map[string][]string{"-phon": {"Phonetic"}}

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSuffixes replaces the suffix mapping on the test config.
func WithSuffixes(suffixes map[string][]string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Suffixes = suffixes
	}
}

// WithRules sets expectation rules on the test config.
func WithRules(rules map[string]config.Rule) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Rules = rules
	}
}

// WithCaseSensitive toggles case-sensitive matching on the test config.
func WithCaseSensitive(sensitive bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Matching.CaseSensitive = sensitive
	}
}
