package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"dekereke/internal/record"
)

// WriteAudioFiles creates empty placeholder audio files in dir, creating the
// directory as needed.
func WriteAudioFiles(t testing.TB, dir string, names ...string) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// WriteRecords marshals the records to path as the JSON export the engine
// consumes.
func WriteRecords(t testing.TB, path string, records ...record.Record) {
	t.Helper()

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Record builds a record with the given reference, gloss, and base filename.
func Record(reference, gloss, baseFilename string) record.Record {
	return record.Record{
		Reference:    reference,
		Fields:       map[string]string{"Gloss": gloss},
		BaseFilename: baseFilename,
	}
}
