// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package committask turns a fully resolved mutation scope list into
// persistence-ready task descriptors. Persistence itself is the job of an
// external write-side collaborator that consumes Task values.
package committask

import (
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// =============================================================================
// Scopes
// =============================================================================

// Scope names one topology collection affected by a mutation.
type Scope string

const (
	ScopeOperationalPoints Scope = "operational-points"
	ScopeSectionsOfLine    Scope = "sections-of-line"
	ScopePersonnelSites    Scope = "personnel-sites"
	ScopeReplacementStops  Scope = "replacement-stops"
	ScopeReplacementRoutes Scope = "replacement-routes"
	ScopeReplacementEdges  Scope = "replacement-edges"
	ScopeOpStopLinks       Scope = "op-stop-links"
	ScopeTransferEdges     Scope = "transfer-edges"
)

// =============================================================================
// Tasks
// =============================================================================

// Task is one persistence-ready unit of work: the scope it affects and a
// deep copy of that scope's current in-memory item list.
type Task struct {
	Scope Scope `json:"scope"`
	Items any   `json:"items"`
}

// Build produces one task per distinct scope, in first-appearance order.
// Duplicate scopes collapse to one task; an unknown scope yields a task
// with an empty item list so callers can safely request a superset.
func Build(scopes []Scope, state *topology.State) []Task {
	seen := make(map[Scope]bool, len(scopes))
	tasks := make([]Task, 0, len(scopes))
	for _, scope := range scopes {
		if seen[scope] {
			continue
		}
		seen[scope] = true
		tasks = append(tasks, Task{Scope: scope, Items: itemsFor(scope, state)})
	}
	return tasks
}

// itemsFor copies the item list for a scope. The entity structs are plain
// value types, so copying the slice is a deep copy.
func itemsFor(scope Scope, state *topology.State) any {
	switch scope {
	case ScopeOperationalPoints:
		return copySlice(state.OperationalPoints)
	case ScopeSectionsOfLine:
		return copySlice(state.SectionsOfLine)
	case ScopePersonnelSites:
		return copySlice(state.PersonnelSites)
	case ScopeReplacementStops:
		return copySlice(state.ReplacementStops)
	case ScopeReplacementRoutes:
		return copySlice(state.ReplacementRoutes)
	case ScopeReplacementEdges:
		return copySlice(state.ReplacementEdges)
	case ScopeOpStopLinks:
		return copySlice(state.OpStopLinks)
	case ScopeTransferEdges:
		return copySlice(state.TransferEdges)
	}
	return []any{}
}

func copySlice[E any](items []E) []E {
	out := make([]E, len(items))
	copy(out, items)
	return out
}
