package services_test

import (
	"context"
	"testing"

	"dekereke/internal/services"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id on empty context")
	}
	ctx = services.WithRunID(ctx, "run-123")
	id, ok := services.RunIDFromContext(ctx)
	if !ok || id != "run-123" {
		t.Fatalf("expected run-123, got %q (ok=%v)", id, ok)
	}
}

func TestEmptyValuesDoNotAnnotate(t *testing.T) {
	ctx := context.Background()
	if services.WithRunID(ctx, "") != ctx {
		t.Fatal("expected empty run id to leave context untouched")
	}
	if services.WithFolder(ctx, "") != ctx {
		t.Fatal("expected empty folder to leave context untouched")
	}
	if services.WithPhase(ctx, "") != ctx {
		t.Fatal("expected empty phase to leave context untouched")
	}
}

func TestFolderAndPhase(t *testing.T) {
	ctx := services.WithFolder(context.Background(), "/audio")
	ctx = services.WithPhase(ctx, "quarantine")

	folder, ok := services.FolderFromContext(ctx)
	if !ok || folder != "/audio" {
		t.Fatalf("expected /audio, got %q (ok=%v)", folder, ok)
	}
	phase, ok := services.PhaseFromContext(ctx)
	if !ok || phase != "quarantine" {
		t.Fatalf("expected quarantine, got %q (ok=%v)", phase, ok)
	}
}
