package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"dekereke/internal/engine"
	"dekereke/internal/expect"
	"dekereke/internal/plan"
	"dekereke/internal/services"
)

// approvalsFile is the operator-authored TOML file that turns suggestions
// into an operation queue. Nothing is ever queued without an entry here.
type approvalsFile struct {
	Unlink     []string            `toml:"unlink"`
	Accept     []acceptApproval    `toml:"accept"`
	Quarantine []quarantineMarking `toml:"quarantine"`
	Exclude    []excludeMarking    `toml:"exclude"`
}

type acceptApproval struct {
	Orphan    string `toml:"orphan"`
	Reference string `toml:"reference"`
	Field     string `toml:"field"`
	Reason    string `toml:"reason"`
}

type quarantineMarking struct {
	File   string `toml:"file"`
	Reason string `toml:"reason"`
}

type excludeMarking struct {
	Reference string `toml:"reference"`
	Field     string `toml:"field"`
	Reason    string `toml:"reason"`
}

func loadApprovals(path string) (approvalsFile, error) {
	var approvals approvalsFile
	data, err := os.ReadFile(path)
	if err != nil {
		return approvals, fmt.Errorf("read approvals file: %w", err)
	}
	if err := toml.Unmarshal(data, &approvals); err != nil {
		return approvals, fmt.Errorf("parse approvals file %s: %w", path, err)
	}
	return approvals, nil
}

// resolveRequests maps the approvals onto the current pass. An acceptance
// must name an artifact the pass actually expects; anything else is a stale
// approval and refuses to plan.
func resolveRequests(approvals approvalsFile, pass *engine.Pass) (plan.Requests, error) {
	byKey := map[string]expect.Artifact{}
	for _, art := range pass.Artifacts {
		byKey[art.Reference+"\x00"+art.Field] = art
	}

	var req plan.Requests
	req.Unlink = approvals.Unlink

	for _, acc := range approvals.Accept {
		art, ok := byKey[acc.Reference+"\x00"+acc.Field]
		if !ok {
			return plan.Requests{}, services.Wrap(services.ErrValidation, "approvals", "resolve",
				fmt.Sprintf("no expected recording for record %s field %s", acc.Reference, acc.Field), nil)
		}
		req.Accept = append(req.Accept, plan.Approval{
			Orphan:   acc.Orphan,
			Artifact: art,
			Reason:   acc.Reason,
		})
	}
	for _, q := range approvals.Quarantine {
		req.Quarantine = append(req.Quarantine, plan.QuarantineRequest{File: q.File, Reason: q.Reason})
	}
	for _, ex := range approvals.Exclude {
		suffix := ""
		if art, ok := byKey[ex.Reference+"\x00"+ex.Field]; ok {
			suffix = art.Suffix
		}
		req.Exclude = append(req.Exclude, plan.Exclusion{
			Reference: ex.Reference,
			Field:     ex.Field,
			Suffix:    suffix,
			Reason:    ex.Reason,
		})
	}
	return req, nil
}

// excludedKeys returns the exclusion set for the unresolved report.
func excludedKeys(req plan.Requests, pass *engine.Pass) map[expect.Key]bool {
	excluded := map[expect.Key]bool{}
	for _, ex := range req.Exclude {
		for _, art := range pass.Artifacts {
			if art.Reference == ex.Reference && art.Field == ex.Field {
				excluded[art.Key()] = true
			}
		}
	}
	return excluded
}
