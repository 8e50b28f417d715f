// Package reconcile diffs the expected artifact set against the decomposed
// folder snapshot and classifies every artifact and every actual file.
package reconcile

import (
	"sort"

	"dekereke/internal/decompose"
	"dekereke/internal/expect"
	"dekereke/internal/record"
	"dekereke/internal/textutil"
)

// Match pairs an expected artifact with the actual file satisfying it.
type Match struct {
	Artifact   expect.Artifact
	ActualFile string
}

// Unexpected is an actual file that decomposed to a mapped suffix but whose
// governing rules say no recording is currently expected there.
type Unexpected struct {
	Filename  string
	Reference string
	Suffix    string
	Fields    []string
}

// Duplicate is an actual file sharing a (base, suffix) pair with the file
// that satisfied the expected artifact, usually an extension twin left over
// from a re-export. The pair-mate that sorted first holds the match.
type Duplicate struct {
	Filename    string
	Reference   string
	Suffix      string
	MatchedFile string
}

// Classification is the full diff for one pass. Every actual file lands in
// exactly one of Matched, Unexpected, Orphaned, Duplicates, or Ambiguities.
type Classification struct {
	Matched     []Match
	Missing     []expect.Artifact
	Unexpected  []Unexpected
	Orphaned    []string
	Duplicates  []Duplicate
	Ambiguities []decompose.Ambiguity
	Advisories  []decompose.Advisory
}

// Input gathers everything Classify needs.
type Input struct {
	Artifacts     []expect.Artifact
	Decomposition decompose.Result
	Mapping       record.SuffixMapping
	Records       record.Set
	Caser         textutil.Caser
}

func pairKey(c textutil.Caser, base, suffix string) string {
	return c.Key(base) + "\x00" + c.Key(suffix)
}

// Classify walks both sides of the diff. Expected artifacts keep their input
// order; actual-file lists come out sorted by filename. Ambiguous files are
// neither matched nor orphaned: they are surfaced as-is so the operator can
// resolve the tie in the record list.
func Classify(in Input) Classification {
	caser := in.Caser

	// Index actual files by their resolved (base, suffix) pair. Matching is
	// extension-agnostic: a file with the right base and suffix satisfies the
	// artifact even when the extension case drifted (that is an advisory).
	actualByPair := map[string][]string{}
	for _, res := range in.Decomposition.Resolved {
		key := pairKey(caser, res.Base, res.Suffix)
		actualByPair[key] = append(actualByPair[key], res.Filename)
	}
	for _, files := range actualByPair {
		sort.Strings(files)
	}

	expectedPairs := map[string]bool{}
	for _, art := range in.Artifacts {
		expectedPairs[pairKey(caser, art.BaseStem, art.Suffix)] = true
	}

	suffixByKey := map[string]string{}
	for _, suffix := range in.Mapping.Suffixes() {
		suffixByKey[caser.Key(suffix)] = suffix
	}

	referenceByBase := map[string]string{}
	for _, rec := range in.Records.Records {
		stem, _ := rec.BaseStem("")
		if stem == "" {
			continue
		}
		key := caser.Key(stem)
		if _, ok := referenceByBase[key]; !ok {
			referenceByBase[key] = rec.Reference
		}
	}

	var out Classification
	matchedByPair := map[string]string{}
	for _, art := range in.Artifacts {
		key := pairKey(caser, art.BaseStem, art.Suffix)
		files := actualByPair[key]
		if len(files) == 0 {
			out.Missing = append(out.Missing, art)
			continue
		}
		out.Matched = append(out.Matched, Match{Artifact: art, ActualFile: files[0]})
		matchedByPair[key] = files[0]
	}

	out.Orphaned = append(out.Orphaned, in.Decomposition.Orphans...)

	names := make([]string, 0, len(in.Decomposition.Resolved))
	for name := range in.Decomposition.Resolved {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		res := in.Decomposition.Resolved[name]
		canonical, mapped := suffixByKey[caser.Key(res.Suffix)]
		if !mapped {
			// Resolves to a base but the remainder is no known suffix. As
			// far as the engine is concerned this file belongs to nothing.
			out.Orphaned = append(out.Orphaned, name)
			continue
		}
		key := pairKey(caser, res.Base, res.Suffix)
		if expectedPairs[key] {
			// The pair is satisfied. Any second file resolving to it is a
			// duplicate of the matched one, not a silent no-op.
			if matched := matchedByPair[key]; matched != "" && matched != name {
				out.Duplicates = append(out.Duplicates, Duplicate{
					Filename:    name,
					Reference:   referenceByBase[caser.Key(res.Base)],
					Suffix:      canonical,
					MatchedFile: matched,
				})
			}
			continue
		}
		out.Unexpected = append(out.Unexpected, Unexpected{
			Filename:  name,
			Reference: referenceByBase[caser.Key(res.Base)],
			Suffix:    canonical,
			Fields:    in.Mapping.FieldsFor(canonical),
		})
	}
	sort.Strings(out.Orphaned)

	out.Ambiguities = in.Decomposition.Ambiguities
	out.Advisories = in.Decomposition.Advisories
	return out
}

// UnresolvedRecord lists the still-missing fields of one record, carrying the
// content field value so the report reads like the record list does.
type UnresolvedRecord struct {
	Reference string
	Content   string
	Fields    []string
}

// UnresolvedByRecord groups missing artifacts by record, skipping any the
// operator has excluded. Records appear in first-missing order; fields keep
// evaluation order.
func UnresolvedByRecord(missing []expect.Artifact, excluded map[expect.Key]bool) []UnresolvedRecord {
	index := map[string]int{}
	var out []UnresolvedRecord
	for _, art := range missing {
		if excluded[art.Key()] {
			continue
		}
		i, ok := index[art.Reference]
		if !ok {
			i = len(out)
			index[art.Reference] = i
			out = append(out, UnresolvedRecord{Reference: art.Reference, Content: art.Content})
		}
		out[i].Fields = append(out[i].Fields, art.Field)
	}
	return out
}
