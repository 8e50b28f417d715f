package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, audioDir, recordsFile, logDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dekereke.toml")
	content := fmt.Sprintf(`[paths]
audio_dir = %q
records_file = %q
log_dir = %q

[suffixes]
"" = ["SoundFile"]
"-phon" = ["Phonetic"]
`, audioDir, recordsFile, logDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func setupFolder(t *testing.T) (configPath, audioDir string) {
	t.Helper()
	audioDir = t.TempDir()
	logDir := t.TempDir()
	recordsFile := filepath.Join(t.TempDir(), "records.json")
	records := `[{"reference":"0021","fields":{"Gloss":"pig"},"base_filename":"0021_pig.wav"}]`
	if err := os.WriteFile(recordsFile, []byte(records), 0o644); err != nil {
		t.Fatal(err)
	}
	return writeTestConfig(t, audioDir, recordsFile, logDir), audioDir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckCommandReportsMissingAndOrphans(t *testing.T) {
	configPath, audioDir := setupFolder(t)
	for _, name := range []string{"0021_pig.wav", "mystery_take.wav"} {
		if err := os.WriteFile(filepath.Join(audioDir, name), []byte("riff"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := runCommand(t, "-c", configPath, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	for _, want := range []string{"Missing", "0021_pig-phon.wav", "mystery_take.wav"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplyExecutesApprovedRename(t *testing.T) {
	configPath, audioDir := setupFolder(t)
	if err := os.WriteFile(filepath.Join(audioDir, "0021_pig.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(audioDir, "pig_take2.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	approvals := filepath.Join(t.TempDir(), "approvals.toml")
	content := `[[accept]]
orphan = "pig_take2.wav"
reference = "0021"
field = "Phonetic"
reason = "operator confirmed"
`
	if err := os.WriteFile(approvals, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "-c", configPath, "apply", "-a", approvals, "--skip-preflight")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "0021_pig-phon.wav")); err != nil {
		t.Fatalf("rename not executed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "soundfile_changes.md")); err != nil {
		t.Errorf("markdown log missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "soundfile_changes.json")); err != nil {
		t.Errorf("machine log missing: %v", err)
	}
}

func TestPlanRejectsStaleApproval(t *testing.T) {
	configPath, _ := setupFolder(t)

	approvals := filepath.Join(t.TempDir(), "approvals.toml")
	content := `[[accept]]
orphan = "x.wav"
reference = "9999"
field = "Phonetic"
`
	if err := os.WriteFile(approvals, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "-c", configPath, "plan", "-a", approvals)
	if err == nil {
		t.Fatalf("expected error for stale approval, got:\n%s", out)
	}
	if !strings.Contains(err.Error(), "9999") {
		t.Errorf("error does not name the stale record: %v", err)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	if out, err := runCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v\n%s", err, out)
	}
}

func TestGenerateCommandPreviewsNames(t *testing.T) {
	configPath, _ := setupFolder(t)

	out, err := runCommand(t, "-c", configPath, "generate", "--template", "{Reference}_{Gloss}")
	if err != nil {
		t.Fatalf("generate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0021_pig") {
		t.Errorf("output missing generated name:\n%s", out)
	}
}

func TestPlanRefusesApprovalForMissingFile(t *testing.T) {
	configPath, audioDir := setupFolder(t)
	if err := os.WriteFile(filepath.Join(audioDir, "0021_pig.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	approvals := filepath.Join(t.TempDir(), "approvals.toml")
	content := `[[accept]]
orphan = "typo_never_existed.wav"
reference = "0021"
field = "Phonetic"
`
	if err := os.WriteFile(approvals, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "-c", configPath, "plan", "-a", approvals)
	if err == nil {
		t.Fatalf("expected error for approval of absent file:\n%s", out)
	}
	if !strings.Contains(err.Error(), "typo_never_existed.wav") {
		t.Errorf("error does not name the stale file: %v", err)
	}
}

func TestConfigShowHonorsConfigFlag(t *testing.T) {
	configPath, audioDir := setupFolder(t)

	out, err := runCommand(t, "-c", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if !strings.Contains(out, configPath) {
		t.Errorf("output does not name the config path %s:\n%s", configPath, out)
	}
	if !strings.Contains(out, audioDir) {
		t.Errorf("output does not show the configured audio folder:\n%s", out)
	}
}

func TestBackupCommandCopiesAudioFolder(t *testing.T) {
	configPath, audioDir := setupFolder(t)
	if err := os.WriteFile(filepath.Join(audioDir, "0021_pig.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	dest := t.TempDir()

	out, err := runCommand(t, "-c", configPath, "backup", "-d", dest)
	if err != nil {
		t.Fatalf("backup: %v\n%s", err, out)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.Contains(entries[0].Name(), "_backup_") {
		t.Fatalf("backup folder not created: %v", entries)
	}
	copied := filepath.Join(dest, entries[0].Name(), "0021_pig.wav")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("file not in backup: %v", err)
	}
	if _, err := os.Stat(filepath.Join(audioDir, "0021_pig.wav")); err != nil {
		t.Fatalf("original file disturbed: %v", err)
	}
}
