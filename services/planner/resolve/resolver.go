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
	"fmt"
	"strings"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// =============================================================================
// Kind Specs
// =============================================================================

// kindSpec parameterizes the shared resolution algorithm for one entity
// kind.
type kindSpec[E any] struct {
	// kind is the human-readable kind name used in feedback.
	kind string

	// idField is the payload field the kind's stable id lives in; it is
	// appended to the clarification base path.
	idField string

	// entityID extracts the value written into the payload when a
	// clarification option for this entity is chosen.
	entityID func(E) string

	// name extracts the display name matched against reference names.
	name func(E) string

	// details extracts the secondary description shown per option.
	details func(E) string
}

// =============================================================================
// Matching Primitives
// =============================================================================

// normalizeName lowercases a name and collapses runs of whitespace, so
// "Hauptbahnhof  Nord" and "hauptbahnhof nord" compare equal.
func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// findByID returns the first entity whose id (per get) equals id exactly.
func findByID[E any](items []E, id string, get func(E) string) (E, bool) {
	for _, item := range items {
		if get(item) == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// matchByName returns every entity whose normalized name equals the
// normalized reference name, in collection (snapshot) order.
func matchByName[E any](items []E, name string, get func(E) string) []E {
	want := normalizeName(name)
	var matches []E
	for _, item := range items {
		if normalizeName(get(item)) == want {
			matches = append(matches, item)
		}
	}
	return matches
}

// =============================================================================
// Shared Resolution Steps
// =============================================================================

// resolveByName applies the name-matching step of the precedence policy.
func resolveByName[E any](spec kindSpec[E], items []E, name string, clarify *Clarify) Outcome[E] {
	matches := matchByName(items, name, spec.name)
	switch len(matches) {
	case 0:
		return NotFound[E]("no %s named %q", spec.kind, name)
	case 1:
		return Found(matches[0])
	}
	return ambiguous(spec, matches, name, clarify)
}

// ambiguous renders a multi-match as a clarification request when the
// caller opted in, or as feedback enumerating every candidate otherwise.
func ambiguous[E any](spec kindSpec[E], matches []E, name string, clarify *Clarify) Outcome[E] {
	if clarify == nil {
		descs := make([]string, len(matches))
		for i, m := range matches {
			descs[i] = candidateLabel(spec, m)
		}
		return AmbiguousFeedback[E](fmt.Sprintf(
			"%s %q is ambiguous, matches: %s. Please specify which one you mean.",
			spec.kind, name, strings.Join(descs, "; ")))
	}

	options := make([]datatypes.ClarificationOption, len(matches))
	for i, m := range matches {
		options[i] = datatypes.ClarificationOption{
			ID:      spec.entityID(m),
			Label:   spec.name(m),
			Details: spec.details(m),
		}
	}
	apply := datatypes.ApplyInstruction{
		Mode: datatypes.ApplyModeValue,
		Path: clarify.BasePath,
	}
	apply.Path = apply.ChildPath(spec.idField)
	return AmbiguousClarification[E](&datatypes.ClarificationRequest{
		Title:   fmt.Sprintf("Which %s do you mean by %q?", spec.kind, name),
		Options: options,
		Apply:   apply,
		Input:   clarify.Input,
	})
}

// candidateLabel renders one candidate for ambiguity feedback, e.g.
// "Hauptbahnhof (OP1, STATION)".
func candidateLabel[E any](spec kindSpec[E], entity E) string {
	if d := spec.details(entity); d != "" {
		return fmt.Sprintf("%s (%s, %s)", spec.name(entity), spec.entityID(entity), d)
	}
	return fmt.Sprintf("%s (%s)", spec.name(entity), spec.entityID(entity))
}
