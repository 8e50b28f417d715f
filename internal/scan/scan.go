// Package scan takes flat snapshots of the target audio folder. A snapshot
// is taken once per reconciliation pass, immediately before planning, so the
// engine never acts on stale folder state.
package scan

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Snapshot is the file listing of the audio folder at one instant.
type Snapshot struct {
	Folder  string
	Files   []string
	TakenAt time.Time
}

// Folder lists the audio files directly inside folder, filtered to the given
// extensions (compared case-insensitively) and sorted by name.
// Subdirectories, including the quarantine directory, are not descended into.
func Folder(folder string, extensions []string) (Snapshot, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan folder %q: %w", folder, err)
	}

	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	snapshot := Snapshot{Folder: folder, TakenAt: time.Now()}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !matchesExtension(name, exts) {
			continue
		}
		snapshot.Files = append(snapshot.Files, name)
	}
	sort.Strings(snapshot.Files)
	return snapshot, nil
}

func matchesExtension(name string, exts map[string]struct{}) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	_, ok := exts[strings.ToLower(name[idx:])]
	return ok
}
