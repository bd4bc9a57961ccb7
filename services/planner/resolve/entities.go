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
	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// =============================================================================
// Kind Specs
// =============================================================================

var opSpec = kindSpec[datatypes.OperationalPoint]{
	kind:     "operational point",
	idField:  "uniqueOpId",
	entityID: func(e datatypes.OperationalPoint) string { return e.UniqueOpID },
	name:     func(e datatypes.OperationalPoint) string { return e.Name },
	details:  func(e datatypes.OperationalPoint) string { return e.OpType },
}

var siteSpec = kindSpec[datatypes.PersonnelSite]{
	kind:     "personnel site",
	idField:  "siteId",
	entityID: func(e datatypes.PersonnelSite) string { return e.SiteID },
	name:     func(e datatypes.PersonnelSite) string { return e.Name },
	details:  func(e datatypes.PersonnelSite) string { return e.SiteType },
}

var stopSpec = kindSpec[datatypes.ReplacementStop]{
	kind:     "replacement stop",
	idField:  "stopId",
	entityID: func(e datatypes.ReplacementStop) string { return e.StopID },
	name:     func(e datatypes.ReplacementStop) string { return e.Name },
	details:  func(e datatypes.ReplacementStop) string { return "" },
}

var routeSpec = kindSpec[datatypes.ReplacementRoute]{
	kind:     "replacement route",
	idField:  "routeId",
	entityID: func(e datatypes.ReplacementRoute) string { return e.RouteID },
	name:     func(e datatypes.ReplacementRoute) string { return e.Name },
	details:  func(e datatypes.ReplacementRoute) string { return e.Code },
}

var solSpec = kindSpec[datatypes.SectionOfLine]{
	kind:     "section of line",
	idField:  "id",
	entityID: func(e datatypes.SectionOfLine) string { return e.ID },
	name:     func(e datatypes.SectionOfLine) string { return e.ID },
	details:  func(e datatypes.SectionOfLine) string { return e.LineNationalID },
}

var edgeSpec = kindSpec[datatypes.ReplacementEdge]{
	kind:     "replacement edge",
	idField:  "id",
	entityID: func(e datatypes.ReplacementEdge) string { return e.ID },
	name:     func(e datatypes.ReplacementEdge) string { return e.ID },
	details:  func(e datatypes.ReplacementEdge) string { return "" },
}

// =============================================================================
// Single-Entity Resolvers
// =============================================================================

// OperationalPoint resolves a reference to an operational point.
func OperationalPoint(state *topology.State, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.OperationalPoint] {
	items := state.OperationalPoints
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.OperationalPoint) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.OperationalPoint]("no operational point with id %q", ref.ID)
	}
	if ref.UniqueOpID != "" {
		if e, ok := findByID(items, ref.UniqueOpID, func(e datatypes.OperationalPoint) string { return e.UniqueOpID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.OperationalPoint]("no operational point with uniqueOpId %q", ref.UniqueOpID)
	}
	if ref.Name == "" {
		return NotFound[datatypes.OperationalPoint]("operational point reference needs an id, uniqueOpId, or name")
	}
	return resolveByName(opSpec, items, ref.Name, clarify)
}

// PersonnelSite resolves a reference to a personnel site.
func PersonnelSite(state *topology.State, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.PersonnelSite] {
	items := state.PersonnelSites
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.PersonnelSite) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.PersonnelSite]("no personnel site with id %q", ref.ID)
	}
	if ref.SiteID != "" {
		if e, ok := findByID(items, ref.SiteID, func(e datatypes.PersonnelSite) string { return e.SiteID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.PersonnelSite]("no personnel site with siteId %q", ref.SiteID)
	}
	if ref.Name == "" {
		return NotFound[datatypes.PersonnelSite]("personnel site reference needs an id, siteId, or name")
	}
	return resolveByName(siteSpec, items, ref.Name, clarify)
}

// ReplacementStop resolves a reference to a replacement-transport stop.
func ReplacementStop(state *topology.State, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.ReplacementStop] {
	items := state.ReplacementStops
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.ReplacementStop) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.ReplacementStop]("no replacement stop with id %q", ref.ID)
	}
	if ref.StopID != "" {
		if e, ok := findByID(items, ref.StopID, func(e datatypes.ReplacementStop) string { return e.StopID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.ReplacementStop]("no replacement stop with stopId %q", ref.StopID)
	}
	if ref.Name == "" {
		return NotFound[datatypes.ReplacementStop]("replacement stop reference needs an id, stopId, or name")
	}
	return resolveByName(stopSpec, items, ref.Name, clarify)
}

// ReplacementRoute resolves a reference to a replacement-transport route.
func ReplacementRoute(state *topology.State, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.ReplacementRoute] {
	items := state.ReplacementRoutes
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.ReplacementRoute) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.ReplacementRoute]("no replacement route with id %q", ref.ID)
	}
	if ref.RouteID != "" {
		if e, ok := findByID(items, ref.RouteID, func(e datatypes.ReplacementRoute) string { return e.RouteID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.ReplacementRoute]("no replacement route with routeId %q", ref.RouteID)
	}
	if ref.Name == "" {
		return NotFound[datatypes.ReplacementRoute]("replacement route reference needs an id, routeId, or name")
	}
	return resolveByName(routeSpec, items, ref.Name, clarify)
}

// =============================================================================
// Composite Resolvers
// =============================================================================

// SectionOfLine resolves a section-of-line reference: by internal id, or by
// the (opStartId, opEndId) endpoint tuple, optionally narrowed by
// lineNationalId.
func SectionOfLine(state *topology.State, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.SectionOfLine] {
	items := state.SectionsOfLine
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.SectionOfLine) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.SectionOfLine]("no section of line with id %q", ref.ID)
	}
	if ref.OpStartID == "" || ref.OpEndID == "" {
		return NotFound[datatypes.SectionOfLine]("section of line reference needs an id or both opStartId and opEndId")
	}

	var matches []datatypes.SectionOfLine
	for _, sol := range items {
		if sol.OpStartID != ref.OpStartID || sol.OpEndID != ref.OpEndID {
			continue
		}
		if ref.LineNationalID != "" && sol.LineNationalID != ref.LineNationalID {
			continue
		}
		matches = append(matches, sol)
	}
	switch len(matches) {
	case 0:
		return NotFound[datatypes.SectionOfLine]("no section of line between %q and %q", ref.OpStartID, ref.OpEndID)
	case 1:
		return Found(matches[0])
	}
	return ambiguous(solSpec, matches, ref.OpStartID+"–"+ref.OpEndID, clarify)
}

// ReplacementEdge resolves a reference to one leg of an already resolved
// replacement route: by internal id, or by sequence number within the route.
func ReplacementEdge(state *topology.State, route datatypes.ReplacementRoute, ref datatypes.EntityRef, clarify *Clarify) Outcome[datatypes.ReplacementEdge] {
	items := state.ReplacementEdges
	if ref.ID != "" {
		if e, ok := findByID(items, ref.ID, func(e datatypes.ReplacementEdge) string { return e.ID }); ok {
			return Found(e)
		}
		return NotFound[datatypes.ReplacementEdge]("no replacement edge with id %q", ref.ID)
	}
	if ref.Seq == nil {
		return NotFound[datatypes.ReplacementEdge]("replacement edge reference needs an id or a seq within route %q", route.Name)
	}

	var matches []datatypes.ReplacementEdge
	for _, edge := range items {
		if edge.RouteID == route.RouteID && edge.Seq == *ref.Seq {
			matches = append(matches, edge)
		}
	}
	switch len(matches) {
	case 0:
		return NotFound[datatypes.ReplacementEdge]("route %q has no edge with seq %d", route.Name, *ref.Seq)
	case 1:
		return Found(matches[0])
	}
	return ambiguous(edgeSpec, matches, route.Name, clarify)
}

// OpStopLink resolves the link between an already resolved operational
// point and replacement stop.
func OpStopLink(state *topology.State, op datatypes.OperationalPoint, stop datatypes.ReplacementStop) Outcome[datatypes.OpStopLink] {
	var matches []datatypes.OpStopLink
	for _, link := range state.OpStopLinks {
		if link.OpID == op.ID && link.StopID == stop.ID {
			matches = append(matches, link)
		}
	}
	switch len(matches) {
	case 0:
		return NotFound[datatypes.OpStopLink]("%q is not linked to stop %q", op.Name, stop.Name)
	case 1:
		return Found(matches[0])
	}
	// Duplicate links should not exist; treat the first one as canonical.
	return Found(matches[0])
}
