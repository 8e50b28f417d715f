package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dekereke/internal/config"
)

func writeRecords(t *testing.T, path string, records []map[string]any) {
	t.Helper()
	data, err := json.Marshal(records)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.AudioDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.RecordsFile = filepath.Join(t.TempDir(), "records.json")
	cfg.Suffixes = map[string][]string{
		"":      {"SoundFile"},
		"-phon": {"Phonetic"},
	}
	return &cfg
}

func TestRunFullyMatchedFolder(t *testing.T) {
	cfg := testConfig(t)
	writeRecords(t, cfg.Paths.RecordsFile, []map[string]any{
		{"reference": "0021", "fields": map[string]string{"Gloss": "pig"}, "base_filename": "0021_pig.wav"},
	})
	for _, name := range []string{"0021_pig.wav", "0021_pig-phon.wav"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.AudioDir, name), []byte("riff"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pass, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pass.Classification.Matched) != 1 {
		t.Fatalf("matched = %+v", pass.Classification.Matched)
	}
	if len(pass.Classification.Missing) != 0 || len(pass.Classification.Orphaned) != 0 {
		t.Fatalf("missing=%v orphaned=%v", pass.Classification.Missing, pass.Classification.Orphaned)
	}
}

func TestRunRanksOrphanAgainstMissing(t *testing.T) {
	cfg := testConfig(t)
	writeRecords(t, cfg.Paths.RecordsFile, []map[string]any{
		{"reference": "0021", "fields": map[string]string{"Gloss": "pig"}, "base_filename": "0021_pig.wav"},
	})
	// The phonetic recording exists but was hand-named without the base.
	if err := os.WriteFile(filepath.Join(cfg.Paths.AudioDir, "0021_pig_phonetic_take2.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	pass, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pass.Classification.Missing) != 2 {
		t.Fatalf("missing = %+v", pass.Classification.Missing)
	}
	if len(pass.Candidates) == 0 {
		t.Fatal("no candidates ranked")
	}
	top := pass.Candidates[0]
	if top.Orphan != "0021_pig_phonetic_take2.wav" || top.Artifact.Filename != "0021_pig-phon.wav" {
		t.Fatalf("top candidate = %+v", top)
	}
}

func TestRunFlagsRecordIssues(t *testing.T) {
	cfg := testConfig(t)
	writeRecords(t, cfg.Paths.RecordsFile, []map[string]any{
		{"reference": "0021", "fields": map[string]string{}, "base_filename": "0021_a.wav"},
		{"reference": "0021", "fields": map[string]string{}, "base_filename": "0021_b.wav"},
		{"reference": "0022", "fields": map[string]string{}, "base_filename": ""},
	})

	pass, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pass.Issues.DuplicateReferences["0021"]) != 2 {
		t.Errorf("duplicate references = %v", pass.Issues.DuplicateReferences)
	}
	if len(pass.Issues.EmptyBaseFilenames) != 1 {
		t.Errorf("empty base filenames = %v", pass.Issues.EmptyBaseFilenames)
	}
}

func TestRunIgnoresLogFilesInFolder(t *testing.T) {
	cfg := testConfig(t)
	writeRecords(t, cfg.Paths.RecordsFile, []map[string]any{})
	for _, name := range []string{"soundfile_changes.md", "soundfile_changes.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(cfg.Paths.AudioDir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pass, err := New(cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(pass.Snapshot.Files) != 0 {
		t.Fatalf("snapshot picked up non-audio files: %v", pass.Snapshot.Files)
	}
}
