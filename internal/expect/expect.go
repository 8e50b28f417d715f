// Package expect computes the set of expected artifacts: for every record
// and every mapped (suffix, field) pair whose rule holds, the filename that
// should exist in the audio folder.
//
// The set is a derived view. It is recomputed whenever records or rules
// change and is never persisted as authoritative state.
package expect

import (
	"runtime"
	"sync"

	"dekereke/internal/record"
	"dekereke/internal/rules"
)

// Key identifies an expected artifact.
type Key struct {
	Reference string
	Field     string
	Suffix    string
}

// Artifact is one expected (record, field, suffix) triple together with the
// filename derived for it.
type Artifact struct {
	Reference string
	Field     string
	Suffix    string
	Filename  string // base stem + suffix + extension
	BaseStem  string
	Content   string // value of the configured content field, for ranking
}

// Key returns the artifact's identity triple.
func (a Artifact) Key() Key {
	return Key{Reference: a.Reference, Field: a.Field, Suffix: a.Suffix}
}

// Options configures evaluation.
type Options struct {
	DefaultExtension string
	ContentField     string
	// Workers caps the per-record evaluation goroutines. Zero means one per
	// CPU. Rule evaluation is pure, so sharding cannot change the result.
	Workers int
}

// Evaluate computes the full expected artifact set. Records with an empty
// base filename produce nothing: there is no stem to derive filenames from.
// Output order is deterministic: record order, then suffix order, then field
// order within the suffix.
func Evaluate(set record.Set, mapping record.SuffixMapping, ruleSet rules.Set, opts Options) []Artifact {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(set.Records) {
		workers = len(set.Records)
	}
	if workers < 1 {
		workers = 1
	}

	suffixes := mapping.Suffixes()
	perRecord := make([][]Artifact, len(set.Records))

	var wg sync.WaitGroup
	chunk := (len(set.Records) + workers - 1) / workers
	for start := 0; start < len(set.Records); start += chunk {
		end := start + chunk
		if end > len(set.Records) {
			end = len(set.Records)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				perRecord[i] = evaluateRecord(set.Records[i], suffixes, mapping, ruleSet, opts)
			}
		}(start, end)
	}
	wg.Wait()

	var artifacts []Artifact
	for _, batch := range perRecord {
		artifacts = append(artifacts, batch...)
	}
	return artifacts
}

func evaluateRecord(rec record.Record, suffixes []string, mapping record.SuffixMapping, ruleSet rules.Set, opts Options) []Artifact {
	stem, ext := rec.BaseStem(opts.DefaultExtension)
	if stem == "" {
		return nil
	}

	var artifacts []Artifact
	for _, suffix := range suffixes {
		for _, field := range mapping.FieldsFor(suffix) {
			if !ruleSet.Expected(rec, field) {
				continue
			}
			artifacts = append(artifacts, Artifact{
				Reference: rec.Reference,
				Field:     field,
				Suffix:    suffix,
				Filename:  stem + suffix + ext,
				BaseStem:  stem,
				Content:   rec.Field(opts.ContentField),
			})
		}
	}
	return artifacts
}
