// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package clarify

import (
	"errors"
	"testing"
	"time"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// =============================================================================
// Test Helpers
// =============================================================================

// fakeClock is a settable clock injected into stores so expiry tests do not
// sleep.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRecord(id string) *Record {
	return &Record{
		ID:      id,
		Payload: map[string]any{"type": "UPSERT_OPERATIONAL_POINT"},
		Apply: datatypes.ApplyInstruction{
			Mode: datatypes.ApplyModeValue,
			Path: []any{"target", "uniqueOpId"},
		},
		Title: "Which operational point do you mean?",
		Options: []datatypes.ClarificationOption{
			{ID: "OP1", Label: "Hauptbahnhof", Details: "STATION"},
			{ID: "OP2", Label: "Hauptbahnhof", Details: "SMALL_STATION"},
		},
	}
}

func newTestMemoryStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	store := NewMemoryStore(ttl)
	store.now = clock.Now
	return store, clock
}

// =============================================================================
// Basic Store Operations
// =============================================================================

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	if _, err := store.Create(newTestRecord("c-1")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	rec, err := store.Get("c-1", "", "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record, got nil")
	}
	if rec.CreatedAt == 0 || rec.UpdatedAt == 0 {
		t.Error("create should stamp CreatedAt and UpdatedAt")
	}
	if _, ok := rec.Option("OP2"); !ok {
		t.Error("stored options should be retrievable by id")
	}
}

// TestMemoryStore_GetAbsent tests that an unknown id is (nil, nil), not an
// error, so callers cannot distinguish absence from expiry.
func TestMemoryStore_GetAbsent(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	rec, err := store.Get("missing", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Fatal("expected nil record for absent id")
	}
}

// TestMemoryStore_GetReturnsCopy tests that a returned record is the
// caller's own: patching its payload tree or options must not leak into
// the stored record that a concurrent caller will receive.
func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	rec := newTestRecord("c-1")
	rec.Payload["target"] = map[string]any{"name": "Hauptbahnhof"}
	if _, err := store.Create(rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := store.Get("c-1", "", "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Payload["target"].(map[string]any)["uniqueOpId"] = "OP1"
	first.Options[0].ID = "mutated"

	second, err := store.Get("c-1", "", "")
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	target := second.Payload["target"].(map[string]any)
	if _, ok := target["uniqueOpId"]; ok {
		t.Error("patching a returned payload must not modify the stored record")
	}
	if second.Options[0].ID != "OP1" {
		t.Errorf("stored option mutated: got %q, want OP1", second.Options[0].ID)
	}
}

// TestMemoryStore_CreateStoresCopy tests that the caller keeps no live
// reference into the store after Create.
func TestMemoryStore_CreateStoresCopy(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)

	rec := newTestRecord("c-1")
	if _, err := store.Create(rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	rec.Payload["type"] = "DELETE_OPERATIONAL_POINT"

	got, err := store.Get("c-1", "", "")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Payload["type"] != "UPSERT_OPERATIONAL_POINT" {
		t.Errorf("stored payload mutated through caller's record: got %v", got.Payload["type"])
	}
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	_, _ = store.Create(newTestRecord("c-1"))

	if err := store.Delete("c-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete("c-1"); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}

	rec, _ := store.Get("c-1", "", "")
	if rec != nil {
		t.Fatal("record should be gone after delete")
	}
}

// =============================================================================
// Ownership Binding
// =============================================================================

// TestMemoryStore_OwnershipBindsOnFirstUse tests the lazy binding sequence:
// the first non-empty clientId fixes ownership, a different one is rejected,
// and an empty clientId always skips the check.
func TestMemoryStore_OwnershipBindsOnFirstUse(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	_, _ = store.Create(newTestRecord("c-1"))

	if _, err := store.Get("c-1", "tab-1", ""); err != nil {
		t.Fatalf("first access should bind, got: %v", err)
	}
	if _, err := store.Get("c-1", "tab-1", ""); err != nil {
		t.Fatalf("same client should still be accepted, got: %v", err)
	}

	if _, err := store.Get("c-1", "tab-2", ""); !errors.Is(err, ErrOwnership) {
		t.Fatalf("different client should trip ErrOwnership, got: %v", err)
	}

	// Empty identity never participates in the check.
	if rec, err := store.Get("c-1", "", ""); err != nil || rec == nil {
		t.Fatalf("empty clientId should skip the check, got rec=%v err=%v", rec, err)
	}
}

func TestMemoryStore_RoleBindsIndependently(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	_, _ = store.Create(newTestRecord("c-1"))

	if _, err := store.Get("c-1", "tab-1", "dispatcher"); err != nil {
		t.Fatalf("binding both fields should succeed, got: %v", err)
	}
	if _, err := store.Get("c-1", "tab-1", "viewer"); !errors.Is(err, ErrOwnership) {
		t.Fatalf("role mismatch should trip ErrOwnership, got: %v", err)
	}
}

// TestMemoryStore_OwnershipSurvivesBinding tests that a record pre-bound at
// creation time rejects other callers from the very first Get.
func TestMemoryStore_OwnershipSurvivesBinding(t *testing.T) {
	store, _ := newTestMemoryStore(time.Minute)
	rec := newTestRecord("c-1")
	if _, err := rec.ClientID.Assert("tab-1"); err != nil {
		t.Fatalf("pre-binding failed: %v", err)
	}
	_, _ = store.Create(rec)

	if _, err := store.Get("c-1", "tab-2", ""); !errors.Is(err, ErrOwnership) {
		t.Fatalf("expected ErrOwnership, got: %v", err)
	}
}

// =============================================================================
// Expiry
// =============================================================================

// TestMemoryStore_TTLBoundary tests expiry around the exact TTL edge: a
// record strictly older than the TTL is swept, one at or inside it is kept.
func TestMemoryStore_TTLBoundary(t *testing.T) {
	store, clock := newTestMemoryStore(5 * time.Second)
	_, _ = store.Create(newTestRecord("c-1"))

	clock.Advance(4999 * time.Millisecond)
	if rec, _ := store.Get("c-1", "", ""); rec == nil {
		t.Fatal("record inside the TTL should survive")
	}

	clock.Advance(2 * time.Millisecond)
	rec, err := store.Get("c-1", "", "")
	if err != nil {
		t.Fatalf("expired lookup must not error: %v", err)
	}
	if rec != nil {
		t.Fatal("record past the TTL should be swept")
	}
}

// TestMemoryStore_BindingRefreshesExpiry tests that a Get that binds
// ownership counts as activity and pushes expiry out.
func TestMemoryStore_BindingRefreshesExpiry(t *testing.T) {
	store, clock := newTestMemoryStore(5 * time.Second)
	_, _ = store.Create(newTestRecord("c-1"))

	clock.Advance(4 * time.Second)
	if _, err := store.Get("c-1", "tab-1", ""); err != nil {
		t.Fatalf("binding get failed: %v", err)
	}

	// 8s after creation but only 4s after the binding refresh.
	clock.Advance(4 * time.Second)
	if rec, _ := store.Get("c-1", "", ""); rec == nil {
		t.Fatal("refreshed record should still be alive")
	}

	clock.Advance(6 * time.Second)
	if rec, _ := store.Get("c-1", "", ""); rec != nil {
		t.Fatal("record should expire relative to the refreshed UpdatedAt")
	}
}

// TestMemoryStore_SweepRunsOnCreate tests that creating one record purges
// other expired ones.
func TestMemoryStore_SweepRunsOnCreate(t *testing.T) {
	store, clock := newTestMemoryStore(5 * time.Second)
	_, _ = store.Create(newTestRecord("old"))

	clock.Advance(10 * time.Second)
	_, _ = store.Create(newTestRecord("new"))

	if rec, _ := store.Get("old", "", ""); rec != nil {
		t.Fatal("expired record should have been swept by Create")
	}
	if rec, _ := store.Get("new", "", ""); rec == nil {
		t.Fatal("fresh record should survive")
	}
}

func TestMemoryStore_NonPositiveTTLDisablesExpiry(t *testing.T) {
	store, clock := newTestMemoryStore(0)
	_, _ = store.Create(newTestRecord("c-1"))

	clock.Advance(1000 * time.Hour)
	if rec, _ := store.Get("c-1", "", ""); rec == nil {
		t.Fatal("zero TTL should never expire records")
	}
}
