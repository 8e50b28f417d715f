// Package plan turns externally approved decisions into a conflict-free
// operation queue. Nothing enters the queue without explicit approval; the
// planner's job is to refuse combinations that could not execute cleanly.
package plan

import (
	"fmt"

	"dekereke/internal/expect"
	"dekereke/internal/services"
	"dekereke/internal/textutil"
)

// Kind tags an operation variant.
type Kind string

const (
	Rename           Kind = "rename"
	MoveToQuarantine Kind = "quarantine"
	Exclude          Kind = "exclude"
)

// Operation is one queued mutation. From and To are filenames within the
// audio folder; the executor resolves them against its configured paths.
// Exclude operations carry no paths, only the (reference, field) they retire.
type Operation struct {
	Kind      Kind
	From      string
	To        string
	Reference string
	Field     string
	Suffix    string
	Reason    string
}

// Drop records an operation that did not make the queue and why.
type Drop struct {
	Operation Operation
	Reason    string
}

// Approval accepts a ranked candidate: the orphan will be renamed to the
// artifact's expected filename.
type Approval struct {
	Orphan   string
	Artifact expect.Artifact
	Reason   string
}

// QuarantineRequest marks a file for removal to the quarantine folder.
type QuarantineRequest struct {
	File   string
	Reason string
}

// Exclusion retires an expected artifact from the unresolved report without
// touching any file.
type Exclusion struct {
	Reference string
	Field     string
	Suffix    string
	Reason    string
}

// Requests is the full approved input for one planning pass. Unlink names
// orphans whose earlier acceptance the operator withdrew; any Approval for
// an unlinked orphan is silently skipped, matching the withdrawal intent.
type Requests struct {
	Accept     []Approval
	Unlink     []string
	Quarantine []QuarantineRequest
	Exclude    []Exclusion
}

// Plan is the accepted queue plus everything that was refused.
type Plan struct {
	Operations []Operation
	Rejected   []Drop // conflicting requests, reportable to the operator
	Dropped    []Drop // renames superseded by quarantine precedence
}

// Build validates the requests and assembles the queue. Insertion order is
// preserved for display; execution order is the executor's concern.
//
// existing is the current folder snapshot. Every rename source and
// quarantine target must appear in it; an approval naming a file that is no
// longer there is stale and Build returns services.ErrValidation. A rename
// destination that would land on a file not itself being moved or renamed
// away is a collision: Build returns services.ErrCollision and the queue
// must not be executed.
func Build(req Requests, existing []string, caser textutil.Caser) (Plan, error) {
	present := map[string]bool{}
	for _, name := range existing {
		present[caser.Key(name)] = true
	}
	unlinked := map[string]bool{}
	for _, name := range req.Unlink {
		unlinked[caser.Key(name)] = true
	}
	quarantined := map[string]bool{}
	for _, q := range req.Quarantine {
		quarantined[caser.Key(q.File)] = true
	}

	var p Plan
	fieldTaken := map[string]Operation{}   // (reference, field) -> first operation
	sourceTaken := map[string]Operation{}  // source filename -> first operation
	destinations := map[string]Operation{} // rename destination -> operation

	fieldKey := func(reference, field string) string {
		return reference + "\x00" + field
	}

	reject := func(op Operation, format string, args ...any) {
		p.Rejected = append(p.Rejected, Drop{Operation: op, Reason: fmt.Sprintf(format, args...)})
	}

	for _, acc := range req.Accept {
		if unlinked[caser.Key(acc.Orphan)] {
			continue
		}
		op := Operation{
			Kind:      Rename,
			From:      acc.Orphan,
			To:        acc.Artifact.Filename,
			Reference: acc.Artifact.Reference,
			Field:     acc.Artifact.Field,
			Suffix:    acc.Artifact.Suffix,
			Reason:    acc.Reason,
		}
		if quarantined[caser.Key(acc.Orphan)] {
			p.Dropped = append(p.Dropped, Drop{Operation: op, Reason: "superseded by quarantine"})
			continue
		}
		if !present[caser.Key(op.From)] {
			return p, services.Wrap(services.ErrValidation, "plan", "build",
				fmt.Sprintf("approved file %s is not in the audio folder; the approval is stale", op.From), nil)
		}
		fk := fieldKey(op.Reference, op.Field)
		if prior, ok := fieldTaken[fk]; ok {
			reject(op, "field %s of record %s already targeted by %s %s", op.Field, op.Reference, prior.Kind, prior.From)
			continue
		}
		if prior, ok := sourceTaken[caser.Key(op.From)]; ok {
			reject(op, "file %s already planned for %s", op.From, prior.Kind)
			continue
		}
		fieldTaken[fk] = op
		sourceTaken[caser.Key(op.From)] = op
		destinations[caser.Key(op.To)] = op
		p.Operations = append(p.Operations, op)
	}

	for _, q := range req.Quarantine {
		op := Operation{Kind: MoveToQuarantine, From: q.File, Reason: q.Reason}
		if !present[caser.Key(op.From)] {
			return p, services.Wrap(services.ErrValidation, "plan", "build",
				fmt.Sprintf("quarantine target %s is not in the audio folder; the approval is stale", op.From), nil)
		}
		if prior, ok := sourceTaken[caser.Key(op.From)]; ok && prior.Kind == MoveToQuarantine {
			reject(op, "file %s already planned for %s", op.From, prior.Kind)
			continue
		}
		sourceTaken[caser.Key(op.From)] = op
		p.Operations = append(p.Operations, op)
	}

	for _, ex := range req.Exclude {
		op := Operation{
			Kind:      Exclude,
			Reference: ex.Reference,
			Field:     ex.Field,
			Suffix:    ex.Suffix,
			Reason:    ex.Reason,
		}
		fk := fieldKey(op.Reference, op.Field)
		if prior, ok := fieldTaken[fk]; ok {
			reject(op, "field %s of record %s already targeted by %s %s", op.Field, op.Reference, prior.Kind, prior.From)
			continue
		}
		fieldTaken[fk] = op
		p.Operations = append(p.Operations, op)
	}

	if err := checkCollisions(p.Operations, existing, caser); err != nil {
		return p, err
	}
	return p, nil
}

// checkCollisions refuses any queue where two operations alias a destination
// or a rename lands on a file nothing else moves out of the way.
func checkCollisions(ops []Operation, existing []string, caser textutil.Caser) error {
	seen := map[string]Operation{}
	vacated := map[string]bool{}
	for _, op := range ops {
		if op.Kind == Rename || op.Kind == MoveToQuarantine {
			vacated[caser.Key(op.From)] = true
		}
	}
	present := map[string]bool{}
	for _, name := range existing {
		present[caser.Key(name)] = true
	}

	for _, op := range ops {
		if op.Kind != Rename {
			continue
		}
		key := caser.Key(op.To)
		if prior, ok := seen[key]; ok {
			return services.Wrap(services.ErrCollision, "plan", "build",
				fmt.Sprintf("renames of %s and %s both produce %s", prior.From, op.From, op.To), nil)
		}
		seen[key] = op
		if present[key] && !vacated[key] {
			return services.Wrap(services.ErrCollision, "plan", "build",
				fmt.Sprintf("rename of %s targets existing file %s", op.From, op.To), nil)
		}
	}
	return nil
}
