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
// This file contains the clarification wire types: the disambiguation
// question returned to the assistant when a reference is ambiguous, and the
// apply instruction that records where the chosen answer must be spliced
// back into the original action payload.
package datatypes

// =============================================================================
// Clarification Request Types
// =============================================================================

// ClarificationOption is one selectable candidate in a clarification.
// ID is the value spliced into the payload when the option is chosen.
type ClarificationOption struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Details string `json:"details,omitempty"`
}

// ClarificationInput describes an optional free-text input the UI may show
// alongside the options (e.g. "or type the exact id").
type ClarificationInput struct {
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Hint        string `json:"hint,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// ClarificationRequest is the disambiguation question produced when a
// reference matches more than one entity and the caller opted into
// clarification. It is returned to the caller together with the id of the
// stored record; it is never stored verbatim itself.
type ClarificationRequest struct {
	Title   string                `json:"title"`
	Options []ClarificationOption `json:"options"`
	Apply   ApplyInstruction      `json:"apply"`
	Input   *ClarificationInput   `json:"input,omitempty"`
}

// =============================================================================
// Apply Instructions
// =============================================================================

// ApplyMode selects how a chosen option is written into the payload.
type ApplyMode string

const (
	// ApplyModeTarget replaces the whole object found at the path with the
	// chosen option's id-bearing object.
	ApplyModeTarget ApplyMode = "target"

	// ApplyModeValue sets the leaf at the path to the chosen option's id.
	ApplyModeValue ApplyMode = "value"
)

// ApplyInstruction records where inside the original action payload a
// clarified value belongs. Path segments are object keys (string) or array
// indices (number); compound resolvers append the kind-specific id field
// name to the base path supplied by their caller.
type ApplyInstruction struct {
	Mode ApplyMode `json:"mode"`
	Path []any     `json:"path"`
}

// ChildPath returns a copy of the instruction's path with one more segment
// appended. The receiver is not modified.
func (i ApplyInstruction) ChildPath(segment any) []any {
	child := make([]any, 0, len(i.Path)+1)
	child = append(child, i.Path...)
	return append(child, segment)
}
