// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolve turns loosely specified entity references into concrete
// topology entities.
//
// Every resolver follows the same precedence, first success wins:
//
//  1. Internal id — exact match; a miss is a hard NotFound, never
//     reinterpreted as a name.
//  2. Kind-specific stable id (uniqueOpId, siteId, stopId, routeId).
//  3. Normalized exact name match (case-insensitive, whitespace-collapsed).
//
// A name matching more than one entity is Ambiguous: with a clarification
// capability the resolver returns a ClarificationRequest whose apply path
// is the caller's base path plus the kind-specific id field; without one it
// returns feedback enumerating every candidate.
//
// Recoverable conditions (not found, ambiguous, missing fields) are data,
// never errors: they are expected outcomes of fuzzy matching and are
// rendered as conversational feedback by the caller.
package resolve

import (
	"fmt"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// =============================================================================
// Resolution Outcome
// =============================================================================

// Status tags the variant of an Outcome.
type Status int

const (
	// StatusFound means exactly one entity matched; Entity is set.
	StatusFound Status = iota

	// StatusNotFound means no entity matched (or the reference carried no
	// identifying fields); Feedback is set.
	StatusNotFound

	// StatusAmbiguous means several entities matched. Clarification is set
	// when the caller supplied a clarification capability, otherwise
	// Feedback enumerates the candidates.
	StatusAmbiguous
)

// Outcome is the result of resolving one reference. Exactly one variant is
// populated, selected by Status.
type Outcome[E any] struct {
	Status        Status
	Entity        E
	Feedback      string
	Clarification *datatypes.ClarificationRequest
}

// Found wraps a uniquely resolved entity.
func Found[E any](entity E) Outcome[E] {
	return Outcome[E]{Status: StatusFound, Entity: entity}
}

// NotFound builds a NotFound outcome with formatted feedback.
func NotFound[E any](format string, args ...any) Outcome[E] {
	return Outcome[E]{Status: StatusNotFound, Feedback: fmt.Sprintf(format, args...)}
}

// AmbiguousFeedback builds an Ambiguous outcome carrying feedback only.
func AmbiguousFeedback[E any](feedback string) Outcome[E] {
	return Outcome[E]{Status: StatusAmbiguous, Feedback: feedback}
}

// AmbiguousClarification builds an Ambiguous outcome carrying a
// clarification request.
func AmbiguousClarification[E any](req *datatypes.ClarificationRequest) Outcome[E] {
	return Outcome[E]{Status: StatusAmbiguous, Clarification: req}
}

// mapOutcome converts an Outcome over one entity type into an Outcome over
// another, preserving the variant.
func mapOutcome[A, B any](o Outcome[A], f func(A) B) Outcome[B] {
	out := Outcome[B]{
		Status:        o.Status,
		Feedback:      o.Feedback,
		Clarification: o.Clarification,
	}
	if o.Status == StatusFound {
		out.Entity = f(o.Entity)
	}
	return out
}

// =============================================================================
// Clarification Capability
// =============================================================================

// Clarify is the clarification capability a caller passes when it is
// willing to pause and ask the user. BasePath locates the reference being
// resolved inside the original action payload; resolvers append the
// kind-specific id field name to it.
type Clarify struct {
	BasePath []any
	Input    *datatypes.ClarificationInput
}
