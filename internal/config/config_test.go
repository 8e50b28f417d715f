package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dekereke/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Matching.DefaultExtension != ".wav" {
		t.Fatalf("unexpected default extension %q", cfg.Matching.DefaultExtension)
	}
	if cfg.Matching.CandidateLimit != 3 {
		t.Fatalf("unexpected candidate limit %d", cfg.Matching.CandidateLimit)
	}
	if cfg.Paths.QuarantineDirName != "orphans" {
		t.Fatalf("unexpected quarantine dir %q", cfg.Paths.QuarantineDirName)
	}
}

func TestLoadParsesMappingsAndRules(t *testing.T) {
	path := writeConfig(t, `
[paths]
audio_dir = "/tmp/audio"

[suffixes]
"" = ["Gloss"]
"-phon" = ["Phonetic"]

[rules.Phonetic]
kind = "non_empty"

[rules.Gloss]
kind = "custom"
[rules.Gloss.when]
all = [
    { field = "Gloss", operator = "not_empty" },
    { field = "Status", operator = "not_in_list", values = ["draft"] },
]
`)
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if got := cfg.Suffixes["-phon"]; len(got) != 1 || got[0] != "Phonetic" {
		t.Fatalf("unexpected suffix mapping: %v", got)
	}
	rule := cfg.Rules["Gloss"]
	if rule.Kind != "custom" || rule.When == nil || len(rule.When.All) != 2 {
		t.Fatalf("unexpected custom rule: %+v", rule)
	}
	if rule.When.All[1].Operator != "not_in_list" || len(rule.When.All[1].Values) != 1 {
		t.Fatalf("unexpected nested predicate: %+v", rule.When.All[1])
	}
}

func TestLoadRejectsFieldUnderTwoSuffixes(t *testing.T) {
	path := writeConfig(t, `
[suffixes]
"-phon" = ["Phonetic"]
"-alt" = ["Phonetic"]
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "mapped to both") {
		t.Fatalf("expected one-suffix-per-field violation, got %v", err)
	}
}

func TestLoadRejectsUnknownOperator(t *testing.T) {
	path := writeConfig(t, `
[rules.Gloss]
kind = "custom"
[rules.Gloss.when]
field = "Gloss"
operator = "matches_regex"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown operator to be rejected")
	}
}

func TestLoadRejectsInListWithoutValues(t *testing.T) {
	path := writeConfig(t, `
[rules.Gloss]
kind = "custom"
[rules.Gloss.when]
field = "Status"
operator = "in_list"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected in_list without values to be rejected")
	}
}

func TestLoadRejectsMixedNode(t *testing.T) {
	path := writeConfig(t, `
[rules.Gloss]
kind = "custom"
[rules.Gloss.when]
field = "Gloss"
operator = "not_empty"
all = [ { field = "Status", operator = "empty" } ]
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected mixed combinator/predicate node to be rejected")
	}
}

func TestNormalizeExtensions(t *testing.T) {
	path := writeConfig(t, `
[matching]
default_extension = "WAV"
audio_extensions = ["wav", ".MP3", "wav"]
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Matching.DefaultExtension != ".wav" {
		t.Fatalf("expected .wav, got %q", cfg.Matching.DefaultExtension)
	}
	want := []string{".wav", ".mp3"}
	if len(cfg.Matching.AudioExtensions) != len(want) {
		t.Fatalf("unexpected extensions: %v", cfg.Matching.AudioExtensions)
	}
	for i, ext := range want {
		if cfg.Matching.AudioExtensions[i] != ext {
			t.Fatalf("unexpected extensions: %v", cfg.Matching.AudioExtensions)
		}
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected second create to fail")
	}
	// The sample must itself be loadable.
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
