package services_test

import (
	"errors"
	"strings"
	"testing"

	"dekereke/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrOperation, "executor", "rename", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrOperation) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"executor", "rename", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "executor", "move", "failed", nil)
	if !errors.Is(err, services.ErrOperation) {
		t.Fatalf("expected nil marker to default to ErrOperation, got %v", err)
	}
}

func TestFatalClassification(t *testing.T) {
	fatal := services.Wrap(services.ErrPrecondition, "executor", "mkdir", "quarantine dir", errors.New("read-only fs"))
	if !services.Fatal(fatal) {
		t.Fatalf("expected precondition failure to be fatal: %v", fatal)
	}
	partial := services.Wrap(services.ErrOperation, "executor", "rename", "target exists", nil)
	if services.Fatal(partial) {
		t.Fatalf("expected operation failure to be non-fatal: %v", partial)
	}
}

func TestRecoverableClassification(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrAmbiguous, "decompose", "resolve", "tied bases", nil), true},
		{services.Wrap(services.ErrConflict, "planner", "queue", "field already targeted", nil), true},
		{services.Wrap(services.ErrCollision, "planner", "queue", "duplicate destination", nil), true},
		{services.Wrap(services.ErrPrecondition, "executor", "mkdir", "denied", nil), false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := services.Recoverable(tc.err); got != tc.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
