// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the planner service.
//
// This file contains the request and response bodies of the action preview
// and clarification resolve endpoints.
package datatypes

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// plannerValidate is the validator instance for planner request types.
var plannerValidate *validator.Validate

func init() {
	plannerValidate = validator.New()
}

// =============================================================================
// Preview / Resolve Requests
// =============================================================================

// PreviewRequest asks the service to resolve every entity reference in an
// action and report what a commit would change.
//
// Action is kept as raw JSON: the typed PlanningAction is decoded from it
// for validation and resolution, while the generic decoded form is what a
// clarification stores and later patches. Client identity arrives via the
// X-Aleutian-Client-Id and X-Aleutian-Role headers, not in the body.
type PreviewRequest struct {
	Action json.RawMessage `json:"action" validate:"required"`

	// Clarify opts into the clarification protocol. Defaults to true; a
	// caller that cannot pause for a question sets it to false and gets
	// candidate-enumerating feedback instead.
	Clarify *bool `json:"clarify,omitempty"`
}

// WantsClarification reports whether the caller is willing to pause and
// ask the user.
func (r *PreviewRequest) WantsClarification() bool {
	return r.Clarify == nil || *r.Clarify
}

// Validate validates the PreviewRequest fields.
func (r *PreviewRequest) Validate() error {
	return plannerValidate.Struct(r)
}

// ResolveRequest resumes a pending clarification with the user's choice.
type ResolveRequest struct {
	ClarificationID string `json:"clarificationId" validate:"required"`
	ChosenOptionID  string `json:"chosenOptionId" validate:"required"`
}

// Validate validates the ResolveRequest fields.
func (r *ResolveRequest) Validate() error {
	return plannerValidate.Struct(r)
}

// =============================================================================
// Responses
// =============================================================================

// Preview outcome status values.
const (
	PreviewStatusResolved      = "resolved"
	PreviewStatusClarification = "clarification"
	PreviewStatusFeedback      = "feedback"
)

// ClarificationResponse is the clarification as returned to the caller:
// the question plus the opaque id needed to resume it. The apply
// instruction stays server-side.
type ClarificationResponse struct {
	ClarificationID string                `json:"clarificationId"`
	Title           string                `json:"title"`
	Options         []ClarificationOption `json:"options"`
	Input           *ClarificationInput   `json:"input,omitempty"`
}

// CommitTaskView is the wire form of one persistence-ready commit task.
type CommitTaskView struct {
	Scope string `json:"scope"`
	Items any    `json:"items"`
}

// PreviewResponse is the result of a preview or resolve call. Exactly one
// of Clarification, Feedback, or Tasks is meaningful, selected by Status.
type PreviewResponse struct {
	Status        string                 `json:"status"`
	Feedback      string                 `json:"feedback,omitempty"`
	Clarification *ClarificationResponse `json:"clarification,omitempty"`
	Tasks         []CommitTaskView       `json:"tasks,omitempty"`
	TopologyStale bool                   `json:"topologyStale,omitempty"`
}
