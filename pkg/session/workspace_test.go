package session

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/storyshuffle/pkg/manuscript"
)

func TestNewWorkspace(t *testing.T) {
	rules := manuscript.Rules{Delimiter: "* * *"}
	ws := NewWorkspace("draft", "some text", rules)

	if ws.ID == "" {
		t.Error("NewWorkspace should assign an ID")
	}
	if ws.Name != "draft" || ws.Manuscript != "some text" {
		t.Errorf("workspace fields = %q, %q", ws.Name, ws.Manuscript)
	}
	if ws.IsExpired() {
		t.Error("fresh workspace should not be expired")
	}

	other := NewWorkspace("draft", "some text", rules)
	if ws.ID == other.ID {
		t.Error("workspace IDs should be unique")
	}
}

func TestWorkspaceTouch(t *testing.T) {
	ws := NewWorkspace("draft", "text", manuscript.Rules{})
	ws.ExpiresAt = time.Now().Add(-time.Hour)
	if !ws.IsExpired() {
		t.Fatal("workspace should be expired")
	}

	ws.Touch(DefaultTTL)
	if ws.IsExpired() {
		t.Error("Touch should extend the lifetime")
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	// Absent workspace
	got, err := store.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != nil {
		t.Error("Get of absent workspace should return nil")
	}

	// Round trip
	ws := NewWorkspace("draft", "text", manuscript.Rules{})
	if err := store.Set(ctx, ws); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err = store.Get(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got == nil || got.Name != "draft" {
		t.Fatalf("Get = %+v, want stored workspace", got)
	}

	// Returned workspace is a copy
	got.Name = "mutated"
	again, _ := store.Get(ctx, ws.ID)
	if again.Name != "draft" {
		t.Error("Get should return a copy, not shared state")
	}

	// List
	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !slices.Contains(ids, ws.ID) {
		t.Errorf("List = %v, want to contain %s", ids, ws.ID)
	}

	// Delete
	if err := store.Delete(ctx, ws.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	got, _ = store.Get(ctx, ws.ID)
	if got != nil {
		t.Error("Get after Delete should return nil")
	}
}

func TestMemoryStoreExpiration(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close()

	ws := NewWorkspace("old", "text", manuscript.Rules{})
	ws.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Set(ctx, ws); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Expired workspaces read as absent
	got, err := store.Get(ctx, ws.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got != nil {
		t.Error("expired workspace should read as absent")
	}

	// And List skips them
	live := NewWorkspace("live", "text", manuscript.Rules{})
	store.Set(ctx, live)
	ids, _ := store.List(ctx)
	if slices.Contains(ids, ws.ID) {
		t.Error("List should skip expired workspaces")
	}
	if !slices.Contains(ids, live.ID) {
		t.Error("List should include live workspaces")
	}

	// Cleanup drops them from the map
	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup error: %v", err)
	}
}
