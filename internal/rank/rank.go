// Package rank scores orphaned files against missing expected artifacts and
// returns ranked candidate lists. Scoring is purely advisory: nothing here
// mutates state, and every suggestion still needs explicit approval before
// the planner will touch it.
package rank

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"dekereke/internal/expect"
	"dekereke/internal/textutil"
)

// Score weights. Reference proximity dominates: a filename that carries the
// right reference is a far stronger signal than overall string shape.
const (
	weightReference = 0.5
	weightFilename  = 0.3
	weightContent   = 0.2
)

// Candidate pairs an orphan with one missing artifact it might satisfy.
type Candidate struct {
	Orphan       string
	Artifact     expect.Artifact
	Score        float64
	EditDistance int // full-filename edit distance, used for tie-breaking
}

// Options configures ranking.
type Options struct {
	// Limit caps candidates returned per orphan. Zero means 3.
	Limit int
	// Floor drops candidates scoring below it.
	Floor float64
	// Workers caps scoring goroutines. Zero means one per CPU. Scoring is
	// pure, so the worker count never changes the output.
	Workers int
}

// Rank scores every orphan against every missing artifact and returns, per
// orphan, its top candidates sorted descending by score. Orphans are
// processed in sorted order and each orphan's candidate list is fully
// ordered, so output is deterministic for fixed inputs.
func Rank(orphans []string, missing []expect.Artifact, opts Options) []Candidate {
	limit := opts.Limit
	if limit <= 0 {
		limit = 3
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	sorted := append([]string{}, orphans...)
	sort.Strings(sorted)

	if workers > len(sorted) {
		workers = len(sorted)
	}
	if workers < 1 {
		workers = 1
	}

	perOrphan := make([][]Candidate, len(sorted))
	var wg sync.WaitGroup
	chunk := (len(sorted) + workers - 1) / workers
	for start := 0; start < len(sorted); start += chunk {
		end := start + chunk
		if end > len(sorted) {
			end = len(sorted)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				perOrphan[i] = rankOrphan(sorted[i], missing, limit, opts.Floor)
			}
		}(start, end)
	}
	wg.Wait()

	var out []Candidate
	for _, batch := range perOrphan {
		out = append(out, batch...)
	}
	return out
}

func rankOrphan(orphan string, missing []expect.Artifact, limit int, floor float64) []Candidate {
	candidates := make([]Candidate, 0, len(missing))
	for _, art := range missing {
		score, dist := scorePair(orphan, art)
		if score < floor {
			continue
		}
		candidates = append(candidates, Candidate{
			Orphan:       orphan,
			Artifact:     art,
			Score:        score,
			EditDistance: dist,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].EditDistance != candidates[j].EditDistance {
			return candidates[i].EditDistance < candidates[j].EditDistance
		}
		return candidates[i].Artifact.Filename < candidates[j].Artifact.Filename
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func scorePair(orphan string, art expect.Artifact) (float64, int) {
	dist := levenshtein.ComputeDistance(textutil.Fold(orphan), textutil.Fold(art.Filename))
	filenameScore := normalized(dist, len(orphan), len(art.Filename))
	refScore := referenceScore(orphan, art.Reference)
	glossScore := contentScore(orphan, art.Content)

	score := refScore*weightReference + filenameScore*weightFilename + glossScore*weightContent
	return clamp(score), dist
}

// referenceScore measures how strongly the orphan's name carries the
// artifact's reference. Containment is conclusive; a match after stripping
// leading zeros is almost as good, since references keep their zeros but
// hand-named files often drop them. Failing both, the leading fragment of
// the orphan's stem is compared by edit distance.
func referenceScore(orphan, reference string) float64 {
	if reference == "" {
		return 0
	}
	folded := textutil.Fold(orphan)
	if strings.Contains(folded, textutil.Fold(reference)) {
		return 1.0
	}
	stripped := strings.TrimLeft(reference, "0")
	if stripped != "" && strings.Contains(folded, textutil.Fold(stripped)) {
		return 0.8
	}
	fragment := leadingFragment(orphan)
	if fragment == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(textutil.Fold(fragment), textutil.Fold(reference))
	return normalized(dist, len(fragment), len(reference))
}

// leadingFragment returns the orphan stem up to the first separator, the
// place a reference lives when the file follows the naming convention.
func leadingFragment(orphan string) string {
	stem := strings.TrimSuffix(orphan, filepath.Ext(orphan))
	if i := strings.IndexAny(stem, "_- ."); i >= 0 {
		return stem[:i]
	}
	return stem
}

// contentScore measures token overlap between the orphan's name and the
// record's content field. Full containment wins outright; otherwise cosine
// similarity over the token sets, with a small floor when only the first
// four characters of the content appear.
func contentScore(orphan, content string) float64 {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0
	}
	folded := textutil.Fold(orphan)
	if strings.Contains(folded, textutil.Fold(content)) {
		return 1.0
	}
	score := textutil.CosineSimilarity(
		textutil.NewFingerprint(orphan),
		textutil.NewFingerprint(content),
	)
	if runes := []rune(textutil.Fold(content)); len(runes) >= 4 {
		if strings.Contains(folded, string(runes[:4])) && score < 0.6 {
			score = 0.6
		}
	}
	return score
}

func normalized(dist, lenA, lenB int) float64 {
	longest := lenA
	if lenB > longest {
		longest = lenB
	}
	if longest == 0 {
		return 0
	}
	return clamp(1.0 - float64(dist)/float64(longest))
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
