// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"encoding/json"
	"testing"
)

// =============================================================================
// Request Validation Tests
// =============================================================================

func TestPreviewRequest_Validate(t *testing.T) {
	valid := PreviewRequest{Action: json.RawMessage(`{"type":"DELETE_OPERATIONAL_POINT"}`)}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request should pass, got: %v", err)
	}

	missing := PreviewRequest{}
	if err := missing.Validate(); err == nil {
		t.Error("missing action should fail validation")
	}
}

func TestPreviewRequest_WantsClarification(t *testing.T) {
	defaulted := PreviewRequest{}
	if !defaulted.WantsClarification() {
		t.Error("clarification should default to opted-in")
	}

	no := false
	optedOut := PreviewRequest{Clarify: &no}
	if optedOut.WantsClarification() {
		t.Error("explicit false should opt out")
	}

	yes := true
	optedIn := PreviewRequest{Clarify: &yes}
	if !optedIn.WantsClarification() {
		t.Error("explicit true should opt in")
	}
}

func TestResolveRequest_Validate(t *testing.T) {
	valid := ResolveRequest{ClarificationID: "c-1", ChosenOptionID: "OP1"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid request should pass, got: %v", err)
	}

	tests := []ResolveRequest{
		{},
		{ClarificationID: "c-1"},
		{ChosenOptionID: "OP1"},
	}
	for i, req := range tests {
		if err := req.Validate(); err == nil {
			t.Errorf("case %d: incomplete request should fail validation", i)
		}
	}
}

// =============================================================================
// Apply Instruction Tests
// =============================================================================

func TestApplyInstruction_ChildPath(t *testing.T) {
	ins := ApplyInstruction{Mode: ApplyModeValue, Path: []any{"from"}}

	child := ins.ChildPath("siteId")

	if len(child) != 2 || child[0] != "from" || child[1] != "siteId" {
		t.Errorf("unexpected child path: %v", child)
	}
	if len(ins.Path) != 1 {
		t.Error("ChildPath must not modify the receiver")
	}
}
