package plan

import (
	"errors"
	"testing"

	"dekereke/internal/expect"
	"dekereke/internal/services"
	"dekereke/internal/textutil"
)

var caser = textutil.Caser{Sensitive: false}

func artifact(ref, field, suffix, filename string) expect.Artifact {
	return expect.Artifact{Reference: ref, Field: field, Suffix: suffix, Filename: filename}
}

func TestBuildQueuesApprovedRename(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{{
			Orphan:   "pig_recording.wav",
			Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav"),
			Reason:   "accepted suggestion",
		}},
	}, []string{"pig_recording.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 1 {
		t.Fatalf("operations = %+v", p.Operations)
	}
	op := p.Operations[0]
	if op.Kind != Rename || op.From != "pig_recording.wav" || op.To != "0021_pig-phon.wav" {
		t.Fatalf("operation = %+v", op)
	}
	if op.Reference != "0021" || op.Field != "Phonetic" {
		t.Fatalf("operation link = %+v", op)
	}
}

func TestBuildQuarantineSupersedesRename(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{{
			Orphan:   "stray.wav",
			Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav"),
		}},
		Quarantine: []QuarantineRequest{{File: "stray.wav", Reason: "marked orphan"}},
	}, []string{"stray.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 1 || p.Operations[0].Kind != MoveToQuarantine {
		t.Fatalf("operations = %+v", p.Operations)
	}
	if len(p.Dropped) != 1 {
		t.Fatalf("dropped = %+v", p.Dropped)
	}
	if p.Dropped[0].Reason != "superseded by quarantine" {
		t.Errorf("drop reason = %q", p.Dropped[0].Reason)
	}
	if p.Dropped[0].Operation.Kind != Rename {
		t.Errorf("dropped operation = %+v", p.Dropped[0].Operation)
	}
}

func TestBuildRefusesRenameOfAbsentFile(t *testing.T) {
	_, err := Build(Requests{
		Accept: []Approval{{
			Orphan:   "typo_never_existed.wav",
			Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav"),
		}},
	}, []string{"0021_pig.wav"}, caser)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestBuildRefusesQuarantineOfAbsentFile(t *testing.T) {
	_, err := Build(Requests{
		Quarantine: []QuarantineRequest{{File: "gone.wav", Reason: "bad take"}},
	}, []string{"0021_pig.wav"}, caser)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestBuildRejectsSecondOperationOnField(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
			{Orphan: "b.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
	}, []string{"a.wav", "b.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 1 || p.Operations[0].From != "a.wav" {
		t.Fatalf("operations = %+v", p.Operations)
	}
	if len(p.Rejected) != 1 || p.Rejected[0].Operation.From != "b.wav" {
		t.Fatalf("rejected = %+v", p.Rejected)
	}
	if p.Rejected[0].Reason == "" {
		t.Error("rejection carries no reason")
	}
}

func TestBuildRejectsExcludeOnPlannedField(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
		Exclude: []Exclusion{{Reference: "0021", Field: "Phonetic", Suffix: "-phon"}},
	}, []string{"a.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 1 {
		t.Fatalf("operations = %+v", p.Operations)
	}
	if len(p.Rejected) != 1 || p.Rejected[0].Operation.Kind != Exclude {
		t.Fatalf("rejected = %+v", p.Rejected)
	}
}

func TestBuildDetectsDestinationCollision(t *testing.T) {
	_, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
			{Orphan: "b.wav", Artifact: artifact("0022", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
	}, []string{"a.wav", "b.wav"}, caser)
	if !errors.Is(err, services.ErrCollision) {
		t.Fatalf("err = %v, want ErrCollision", err)
	}
}

func TestBuildDetectsCollisionWithExistingFile(t *testing.T) {
	_, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
	}, []string{"a.wav", "0021_pig-phon.wav"}, caser)
	if !errors.Is(err, services.ErrCollision) {
		t.Fatalf("err = %v, want ErrCollision", err)
	}
}

func TestBuildAllowsDestinationVacatedByQuarantine(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
		Quarantine: []QuarantineRequest{{File: "0021_pig-phon.wav", Reason: "bad take"}},
	}, []string{"a.wav", "0021_pig-phon.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 2 {
		t.Fatalf("operations = %+v", p.Operations)
	}
}

func TestBuildUnlinkWithdrawsAcceptance(t *testing.T) {
	p, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
		Unlink: []string{"a.wav"},
	}, []string{"a.wav"}, caser)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(p.Operations) != 0 {
		t.Fatalf("operations = %+v", p.Operations)
	}
	if len(p.Rejected) != 0 || len(p.Dropped) != 0 {
		t.Fatalf("rejected=%v dropped=%v", p.Rejected, p.Dropped)
	}
}

func TestBuildCaseInsensitiveCollision(t *testing.T) {
	_, err := Build(Requests{
		Accept: []Approval{
			{Orphan: "a.wav", Artifact: artifact("0021", "Phonetic", "-phon", "0021_PIG-phon.wav")},
			{Orphan: "b.wav", Artifact: artifact("0022", "Phonetic", "-phon", "0021_pig-phon.wav")},
		},
	}, []string{"a.wav", "b.wav"}, caser)
	if !errors.Is(err, services.ErrCollision) {
		t.Fatalf("err = %v, want ErrCollision", err)
	}
}
