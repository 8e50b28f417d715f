// Package engine wires one reconciliation pass end to end: load records,
// snapshot the folder, decompose filenames, evaluate expectations, classify
// the diff, and rank orphan candidates. It never mutates the folder; the
// planner and executor own mutation.
package engine

import (
	"context"
	"log/slog"

	"dekereke/internal/config"
	"dekereke/internal/decompose"
	"dekereke/internal/expect"
	"dekereke/internal/logging"
	"dekereke/internal/rank"
	"dekereke/internal/reconcile"
	"dekereke/internal/record"
	"dekereke/internal/rules"
	"dekereke/internal/scan"
	"dekereke/internal/textutil"
)

// RecordIssues flags record-set problems worth surfacing before any plan is
// reviewed. They do not stop a pass.
type RecordIssues struct {
	DuplicateReferences map[string][]int
	EmptyBaseFilenames  []int
}

// Pass is the complete read-only state of one reconciliation.
type Pass struct {
	Records        record.Set
	Issues         RecordIssues
	Snapshot       scan.Snapshot
	Decomposition  decompose.Result
	Artifacts      []expect.Artifact
	Classification reconcile.Classification
	Candidates     []rank.Candidate
}

// Engine runs reconciliation passes against one configured folder.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{cfg: cfg, logger: logging.NewComponentLogger(logger, "engine")}
}

// Run executes a full pass. The folder snapshot is taken once, immediately
// before classification, so the result reflects a single point in time.
func (e *Engine) Run(ctx context.Context) (*Pass, error) {
	set, err := record.LoadSet(e.cfg.Paths.RecordsFile)
	if err != nil {
		return nil, err
	}

	mapping, err := record.MappingFromConfig(e.cfg)
	if err != nil {
		return nil, err
	}
	ruleSet, err := rules.FromConfig(e.cfg)
	if err != nil {
		return nil, err
	}

	pass := &Pass{
		Records: set,
		Issues: RecordIssues{
			DuplicateReferences: set.DuplicateReferences(),
			EmptyBaseFilenames:  set.EmptyBaseFilenames(),
		},
	}

	snapshot, err := scan.Folder(e.cfg.Paths.AudioDir, e.cfg.Matching.AudioExtensions)
	if err != nil {
		return nil, err
	}
	pass.Snapshot = snapshot

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	caser := textutil.Caser{Sensitive: e.cfg.Matching.CaseSensitive}
	workers := e.cfg.Matching.Workers

	pass.Decomposition = decompose.Decompose(set.BaseFilenames(), snapshot.Files, caser, workers)
	pass.Artifacts = expect.Evaluate(set, mapping, ruleSet, expect.Options{
		DefaultExtension: e.cfg.Matching.DefaultExtension,
		ContentField:     e.cfg.Matching.ContentField,
		Workers:          workers,
	})
	pass.Classification = reconcile.Classify(reconcile.Input{
		Artifacts:     pass.Artifacts,
		Decomposition: pass.Decomposition,
		Mapping:       mapping,
		Records:       set,
		Caser:         caser,
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pass.Candidates = rank.Rank(pass.Classification.Orphaned, pass.Classification.Missing, rank.Options{
		Limit:   e.cfg.Matching.CandidateLimit,
		Floor:   e.cfg.Matching.ConfidenceFloor,
		Workers: workers,
	})

	e.logger.Info("pass complete",
		logging.Int("records", len(set.Records)),
		logging.Int("files", len(snapshot.Files)),
		logging.Int("matched", len(pass.Classification.Matched)),
		logging.Int("missing", len(pass.Classification.Missing)),
		logging.Int("orphaned", len(pass.Classification.Orphaned)),
		logging.Int("unexpected", len(pass.Classification.Unexpected)),
		logging.Int("duplicates", len(pass.Classification.Duplicates)),
		logging.Int("ambiguous", len(pass.Classification.Ambiguities)),
		logging.Int("candidates", len(pass.Candidates)),
	)
	return pass, nil
}
