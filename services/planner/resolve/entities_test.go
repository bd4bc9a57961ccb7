// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resolve

import (
	"reflect"
	"strings"
	"testing"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// =============================================================================
// Test Fixture
// =============================================================================

// testState builds a small topology with two operational points sharing the
// display name "Hauptbahnhof", which is the canonical ambiguity case.
func testState() *topology.State {
	return &topology.State{
		OperationalPoints: []datatypes.OperationalPoint{
			{ID: "op-1", UniqueOpID: "OP1", Name: "Hauptbahnhof", OpType: datatypes.OpTypeStation},
			{ID: "op-2", UniqueOpID: "OP2", Name: "Hauptbahnhof", OpType: datatypes.OpTypeSmallStation},
			{ID: "op-3", UniqueOpID: "OP3", Name: "Westbahnhof", OpType: datatypes.OpTypeStation},
			{ID: "op-4", UniqueOpID: "OP4", Name: "Bahnhof  Nord", OpType: datatypes.OpTypeJunction},
		},
		SectionsOfLine: []datatypes.SectionOfLine{
			{ID: "sol-1", LineNationalID: "1100", OpStartID: "op-1", OpEndID: "op-3"},
			{ID: "sol-2", LineNationalID: "2200", OpStartID: "op-1", OpEndID: "op-3"},
			{ID: "sol-3", LineNationalID: "1100", OpStartID: "op-3", OpEndID: "op-4"},
		},
		PersonnelSites: []datatypes.PersonnelSite{
			{ID: "ps-1", SiteID: "S1", Name: "Meldestelle Nord", SiteType: "MELDESTELLE"},
			{ID: "ps-2", SiteID: "S2", Name: "Meldestelle Nord", SiteType: "CREW_ROOM"},
		},
		ReplacementStops: []datatypes.ReplacementStop{
			{ID: "rs-1", StopID: "ST1", Name: "Bussteig A"},
			{ID: "rs-2", StopID: "ST2", Name: "Bussteig B"},
		},
		ReplacementRoutes: []datatypes.ReplacementRoute{
			{ID: "rr-1", RouteID: "R1", Name: "SEV 3", Code: "SEV3"},
		},
		ReplacementEdges: []datatypes.ReplacementEdge{
			{ID: "re-1", RouteID: "R1", Seq: 1, FromStopID: "rs-1", ToStopID: "rs-2"},
			{ID: "re-2", RouteID: "R1", Seq: 2, FromStopID: "rs-2", ToStopID: "rs-1"},
		},
		OpStopLinks: []datatypes.OpStopLink{
			{ID: "lk-1", OpID: "op-3", StopID: "rs-1", WalkSeconds: 120},
		},
	}
}

// =============================================================================
// Operational Point Precedence Tests
// =============================================================================

func TestOperationalPoint_ByInternalID(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{ID: "op-2"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.UniqueOpID != "OP2" {
		t.Errorf("expected OP2, got %q", out.Entity.UniqueOpID)
	}
}

// TestOperationalPoint_IDMissIsHard tests that a miss on the internal id is
// a hard NotFound and is never reinterpreted as a name lookup, even when a
// point with that display name exists.
func TestOperationalPoint_IDMissIsHard(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{ID: "Westbahnhof"}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
	if !strings.Contains(out.Feedback, "Westbahnhof") {
		t.Errorf("feedback should name the missed id, got %q", out.Feedback)
	}
}

func TestOperationalPoint_ByUniqueOpID(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{UniqueOpID: "OP3"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.ID != "op-3" {
		t.Errorf("expected op-3, got %q", out.Entity.ID)
	}
}

// TestOperationalPoint_UniqueOpIDTakesPrecedenceOverName tests that a
// present uniqueOpId wins even when the reference also carries a name that
// would match something else.
func TestOperationalPoint_UniqueOpIDTakesPrecedenceOverName(t *testing.T) {
	ref := datatypes.EntityRef{UniqueOpID: "OP4", Name: "Westbahnhof"}
	out := OperationalPoint(testState(), ref, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.UniqueOpID != "OP4" {
		t.Errorf("uniqueOpId should win over name, got %q", out.Entity.UniqueOpID)
	}
}

// TestOperationalPoint_UniqueOpIDMissDoesNotFallBackToName tests the same
// hard-miss rule for the secondary id.
func TestOperationalPoint_UniqueOpIDMissDoesNotFallBackToName(t *testing.T) {
	ref := datatypes.EntityRef{UniqueOpID: "OP99", Name: "Westbahnhof"}
	out := OperationalPoint(testState(), ref, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
}

func TestOperationalPoint_ByName_Unique(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{Name: "Westbahnhof"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.UniqueOpID != "OP3" {
		t.Errorf("expected OP3, got %q", out.Entity.UniqueOpID)
	}
}

// TestOperationalPoint_NameNormalization tests that name matching is
// case-insensitive and collapses interior whitespace runs.
func TestOperationalPoint_NameNormalization(t *testing.T) {
	cases := []string{"bahnhof nord", "BAHNHOF  NORD", "  Bahnhof   Nord  "}
	for _, name := range cases {
		out := OperationalPoint(testState(), datatypes.EntityRef{Name: name}, nil)
		if out.Status != StatusFound {
			t.Errorf("name %q: expected Found, got status %d (%s)", name, out.Status, out.Feedback)
			continue
		}
		if out.Entity.UniqueOpID != "OP4" {
			t.Errorf("name %q: expected OP4, got %q", name, out.Entity.UniqueOpID)
		}
	}
}

func TestOperationalPoint_NameUnknown(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{Name: "Ostbahnhof"}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
	if !strings.Contains(out.Feedback, "Ostbahnhof") {
		t.Errorf("feedback should echo the unknown name, got %q", out.Feedback)
	}
}

func TestOperationalPoint_EmptyReference(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound for empty reference, got status %d", out.Status)
	}
}

// =============================================================================
// Ambiguity Tests
// =============================================================================

// TestOperationalPoint_AmbiguousWithoutClarify tests that a multi-match
// without a clarification capability comes back as feedback enumerating
// every candidate by its stable id.
func TestOperationalPoint_AmbiguousWithoutClarify(t *testing.T) {
	out := OperationalPoint(testState(), datatypes.EntityRef{Name: "Hauptbahnhof"}, nil)

	if out.Status != StatusAmbiguous {
		t.Fatalf("expected Ambiguous, got status %d", out.Status)
	}
	if out.Clarification != nil {
		t.Error("no clarification capability was supplied, expected feedback only")
	}
	for _, want := range []string{"OP1", "OP2", "STATION", "SMALL_STATION"} {
		if !strings.Contains(out.Feedback, want) {
			t.Errorf("feedback should mention %q, got %q", want, out.Feedback)
		}
	}
}

// TestOperationalPoint_AmbiguousWithClarify tests that the clarification
// request carries one option per candidate and an apply instruction that
// splices the chosen uniqueOpId under the caller's base path.
func TestOperationalPoint_AmbiguousWithClarify(t *testing.T) {
	clarify := &Clarify{BasePath: []any{"target"}}
	out := OperationalPoint(testState(), datatypes.EntityRef{Name: "Hauptbahnhof"}, clarify)

	if out.Status != StatusAmbiguous {
		t.Fatalf("expected Ambiguous, got status %d", out.Status)
	}
	req := out.Clarification
	if req == nil {
		t.Fatal("expected a clarification request")
	}
	if !strings.Contains(req.Title, "Hauptbahnhof") {
		t.Errorf("title should echo the ambiguous name, got %q", req.Title)
	}
	if len(req.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(req.Options))
	}
	if req.Options[0].ID != "OP1" || req.Options[1].ID != "OP2" {
		t.Errorf("options should be the stable ids in snapshot order, got %q and %q",
			req.Options[0].ID, req.Options[1].ID)
	}
	if req.Apply.Mode != datatypes.ApplyModeValue {
		t.Errorf("expected value mode, got %q", req.Apply.Mode)
	}
	wantPath := []any{"target", "uniqueOpId"}
	if !reflect.DeepEqual(req.Apply.Path, wantPath) {
		t.Errorf("expected apply path %v, got %v", wantPath, req.Apply.Path)
	}
	if !reflect.DeepEqual(clarify.BasePath, []any{"target"}) {
		t.Errorf("caller's base path must not be modified, got %v", clarify.BasePath)
	}
}

// TestOperationalPoint_AmbiguousIsDeterministic tests that repeated
// resolution of the same name against the same state yields the candidates
// in the same order.
func TestOperationalPoint_AmbiguousIsDeterministic(t *testing.T) {
	state := testState()
	clarify := &Clarify{BasePath: []any{"target"}}

	first := OperationalPoint(state, datatypes.EntityRef{Name: "Hauptbahnhof"}, clarify)
	for i := 0; i < 10; i++ {
		again := OperationalPoint(state, datatypes.EntityRef{Name: "Hauptbahnhof"}, clarify)
		if !reflect.DeepEqual(first.Clarification.Options, again.Clarification.Options) {
			t.Fatalf("candidate order changed between runs: %v vs %v",
				first.Clarification.Options, again.Clarification.Options)
		}
	}
}

// =============================================================================
// Other Single-Entity Kinds
// =============================================================================

func TestPersonnelSite_BySiteID(t *testing.T) {
	out := PersonnelSite(testState(), datatypes.EntityRef{SiteID: "S2"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.ID != "ps-2" {
		t.Errorf("expected ps-2, got %q", out.Entity.ID)
	}
}

func TestPersonnelSite_AmbiguousName_UsesSiteIDField(t *testing.T) {
	clarify := &Clarify{BasePath: []any{"target"}}
	out := PersonnelSite(testState(), datatypes.EntityRef{Name: "Meldestelle Nord"}, clarify)

	if out.Status != StatusAmbiguous || out.Clarification == nil {
		t.Fatalf("expected ambiguous clarification, got status %d", out.Status)
	}
	wantPath := []any{"target", "siteId"}
	if !reflect.DeepEqual(out.Clarification.Apply.Path, wantPath) {
		t.Errorf("expected apply path %v, got %v", wantPath, out.Clarification.Apply.Path)
	}
}

func TestReplacementStop_ByStopID(t *testing.T) {
	out := ReplacementStop(testState(), datatypes.EntityRef{StopID: "ST1"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.Name != "Bussteig A" {
		t.Errorf("expected Bussteig A, got %q", out.Entity.Name)
	}
}

func TestReplacementRoute_ByName(t *testing.T) {
	out := ReplacementRoute(testState(), datatypes.EntityRef{Name: "sev 3"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.RouteID != "R1" {
		t.Errorf("expected R1, got %q", out.Entity.RouteID)
	}
}

// =============================================================================
// Section Of Line Tests
// =============================================================================

func TestSectionOfLine_ByInternalID(t *testing.T) {
	out := SectionOfLine(testState(), datatypes.EntityRef{ID: "sol-3"}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
}

// TestSectionOfLine_EndpointTupleAmbiguous tests that two parallel sections
// between the same endpoints are ambiguous until the line narrows them.
func TestSectionOfLine_EndpointTupleAmbiguous(t *testing.T) {
	ref := datatypes.EntityRef{OpStartID: "op-1", OpEndID: "op-3"}
	out := SectionOfLine(testState(), ref, nil)

	if out.Status != StatusAmbiguous {
		t.Fatalf("expected Ambiguous, got status %d", out.Status)
	}
}

func TestSectionOfLine_EndpointTupleNarrowedByLine(t *testing.T) {
	ref := datatypes.EntityRef{OpStartID: "op-1", OpEndID: "op-3", LineNationalID: "2200"}
	out := SectionOfLine(testState(), ref, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.ID != "sol-2" {
		t.Errorf("expected sol-2, got %q", out.Entity.ID)
	}
}

func TestSectionOfLine_MissingEndpoint(t *testing.T) {
	out := SectionOfLine(testState(), datatypes.EntityRef{OpStartID: "op-1"}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
}

// =============================================================================
// Replacement Edge / Op-Stop Link Tests
// =============================================================================

func TestReplacementEdge_BySeqWithinRoute(t *testing.T) {
	state := testState()
	route := state.ReplacementRoutes[0]
	seq := 2

	out := ReplacementEdge(state, route, datatypes.EntityRef{Seq: &seq}, nil)

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.ID != "re-2" {
		t.Errorf("expected re-2, got %q", out.Entity.ID)
	}
}

func TestReplacementEdge_SeqMiss(t *testing.T) {
	state := testState()
	seq := 9

	out := ReplacementEdge(state, state.ReplacementRoutes[0], datatypes.EntityRef{Seq: &seq}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
}

func TestReplacementEdge_MissingSeq(t *testing.T) {
	state := testState()

	out := ReplacementEdge(state, state.ReplacementRoutes[0], datatypes.EntityRef{}, nil)

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
}

func TestOpStopLink_ByTuple(t *testing.T) {
	state := testState()

	out := OpStopLink(state, state.OperationalPoints[2], state.ReplacementStops[0])

	if out.Status != StatusFound {
		t.Fatalf("expected Found, got status %d (%s)", out.Status, out.Feedback)
	}
	if out.Entity.ID != "lk-1" {
		t.Errorf("expected lk-1, got %q", out.Entity.ID)
	}
}

func TestOpStopLink_NotLinked(t *testing.T) {
	state := testState()

	out := OpStopLink(state, state.OperationalPoints[0], state.ReplacementStops[0])

	if out.Status != StatusNotFound {
		t.Fatalf("expected NotFound, got status %d", out.Status)
	}
}
