// Package decompose resolves actual audio filenames into (base, suffix)
// pairs against the base filenames supplied by the record set.
//
// Resolution picks the longest base that is a prefix of the filename's stem.
// Two distinct bases tying for longest match make the file ambiguous; no
// default is chosen and the caller must disambiguate before planning.
package decompose

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"dekereke/internal/textutil"
)

// Resolution is a successfully decomposed actual file.
type Resolution struct {
	Filename  string
	Base      string // base filename stem the file resolved to
	Suffix    string // remainder between base and extension
	Extension string
}

// Ambiguity reports a file whose longest-match bases tied.
type Ambiguity struct {
	Filename   string
	Candidates []string // tied base stems, sorted
}

// Advisory flags a base/actual pair whose extensions differ only in case.
// It is informational, never an error.
type Advisory struct {
	BaseFilename string // record base filename including its extension
	ActualFile   string
}

// Result is the decomposition of one folder snapshot.
type Result struct {
	Resolved    map[string]Resolution
	Orphans     []string // files matching no base at all
	Ambiguities []Ambiguity
	Advisories  []Advisory
}

type baseEntry struct {
	stem string
	ext  string
	full string
}

type outcome struct {
	resolution *Resolution
	ambiguity  *Ambiguity
	advisory   *Advisory
	orphan     string
}

// Decompose resolves every file against the given base filenames. bases
// carry their extensions as stored on the records; files are bare names from
// a folder snapshot. The work is sharded across workers (0 means one per
// CPU); output is independent of worker count.
func Decompose(bases []string, files []string, caser textutil.Caser, workers int) Result {
	entries := dedupeBases(bases)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]outcome, len(files))
	var wg sync.WaitGroup
	chunk := (len(files) + workers - 1) / workers
	for start := 0; start < len(files); start += chunk {
		end := start + chunk
		if end > len(files) {
			end = len(files)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				outcomes[i] = resolveFile(files[i], entries, caser)
			}
		}(start, end)
	}
	wg.Wait()

	result := Result{Resolved: make(map[string]Resolution, len(files))}
	for _, out := range outcomes {
		switch {
		case out.resolution != nil:
			result.Resolved[out.resolution.Filename] = *out.resolution
			if out.advisory != nil {
				result.Advisories = append(result.Advisories, *out.advisory)
			}
		case out.ambiguity != nil:
			result.Ambiguities = append(result.Ambiguities, *out.ambiguity)
		case out.orphan != "":
			result.Orphans = append(result.Orphans, out.orphan)
		}
	}
	return result
}

func resolveFile(name string, entries []baseEntry, caser textutil.Caser) outcome {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	best := -1
	var tied []baseEntry
	for _, entry := range entries {
		ok, n := caser.HasPrefix(stem, entry.stem)
		if !ok {
			continue
		}
		switch {
		case n > best:
			best = n
			tied = tied[:0]
			tied = append(tied, entry)
		case n == best:
			tied = append(tied, entry)
		}
	}

	if best < 0 {
		return outcome{orphan: name}
	}
	if len(tied) > 1 {
		candidates := make([]string, 0, len(tied))
		for _, entry := range tied {
			candidates = append(candidates, entry.stem)
		}
		sort.Strings(candidates)
		return outcome{ambiguity: &Ambiguity{Filename: name, Candidates: candidates}}
	}

	chosen := tied[0]
	out := outcome{resolution: &Resolution{
		Filename:  name,
		Base:      chosen.stem,
		Suffix:    stem[best:],
		Extension: ext,
	}}
	if chosen.ext != "" && ext != chosen.ext && strings.EqualFold(ext, chosen.ext) {
		out.advisory = &Advisory{BaseFilename: chosen.full, ActualFile: name}
	}
	return out
}

// dedupeBases keeps one entry per distinct base stem. Identical stems from
// several records decompose identically, so duplicates carry no information;
// stems differing only in case stay distinct so longest-match ties can be
// detected under a case-insensitive policy.
func dedupeBases(bases []string) []baseEntry {
	sorted := append([]string{}, bases...)
	sort.Strings(sorted)

	entries := make([]baseEntry, 0, len(sorted))
	seen := map[string]struct{}{}
	for _, full := range sorted {
		full = strings.TrimSpace(full)
		if full == "" {
			continue
		}
		ext := filepath.Ext(full)
		stem := strings.TrimSuffix(full, ext)
		if _, ok := seen[stem]; ok {
			continue
		}
		seen[stem] = struct{}{}
		entries = append(entries, baseEntry{stem: stem, ext: ext, full: full})
	}
	return entries
}
