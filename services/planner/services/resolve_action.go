// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import (
	"fmt"

	"github.com/AleutianAI/RailOpsLocal/services/planner/committask"
	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/resolve"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// =============================================================================
// Action Resolution
// =============================================================================

// resolution is the aggregate result of resolving every reference in one
// action. Exactly one of clarification, feedback, or scopes is meaningful.
type resolution struct {
	scopes        []committask.Scope
	clarification *datatypes.ClarificationRequest
	feedback      string
}

func resolved(scopes ...committask.Scope) resolution {
	return resolution{scopes: scopes}
}

func asFeedback(text string) resolution {
	return resolution{feedback: text}
}

// fromOutcome converts a non-Found outcome into a resolution. Callers
// handle the Found case themselves.
func fromOutcome[E any](out resolve.Outcome[E]) resolution {
	if out.Clarification != nil {
		return resolution{clarification: out.Clarification}
	}
	return asFeedback(out.Feedback)
}

// resolveAction resolves every reference the action carries, in payload
// order, stopping at the first reference that does not resolve cleanly.
// Given the same topology state and action it is deterministic: candidate
// sets come back in snapshot order. When allowClarify is false, ambiguous
// references land as feedback instead of a clarification request.
func resolveAction(state *topology.State, action *datatypes.PlanningAction, allowClarify bool) resolution {
	isUpsert := upsertTypes[action.Type]

	// clarifyAt names the payload field the chosen id gets written under.
	clarifyAt := func(field string) *resolve.Clarify {
		if !allowClarify {
			return nil
		}
		return &resolve.Clarify{BasePath: []any{field}}
	}

	switch action.Type {
	case datatypes.ActionUpsertOperationalPoint, datatypes.ActionDeleteOperationalPoint:
		out := resolve.OperationalPoint(state, *action.Target, clarifyAt("target"))
		return target(out, *action.Target, isUpsert, committask.ScopeOperationalPoints)

	case datatypes.ActionDeleteSectionOfLine:
		out := resolve.SectionOfLine(state, *action.Target, clarifyAt("target"))
		return target(out, *action.Target, false, committask.ScopeSectionsOfLine)

	case datatypes.ActionUpsertPersonnelSite, datatypes.ActionDeletePersonnelSite:
		out := resolve.PersonnelSite(state, *action.Target, clarifyAt("target"))
		return target(out, *action.Target, isUpsert, committask.ScopePersonnelSites)

	case datatypes.ActionUpsertReplacementStop, datatypes.ActionDeleteReplacementStop:
		out := resolve.ReplacementStop(state, *action.Target, clarifyAt("target"))
		return target(out, *action.Target, isUpsert, committask.ScopeReplacementStops)

	case datatypes.ActionUpsertReplacementRoute, datatypes.ActionDeleteReplacementRoute:
		out := resolve.ReplacementRoute(state, *action.Target, clarifyAt("target"))
		return target(out, *action.Target, isUpsert, committask.ScopeReplacementRoutes)

	case datatypes.ActionUpsertReplacementEdge:
		routeOut := resolve.ReplacementRoute(state, *action.Route, clarifyAt("route"))
		if routeOut.Status != resolve.StatusFound {
			return fromOutcome(routeOut)
		}
		if out := resolve.ReplacementStop(state, *action.FromStop, clarifyAt("fromStop")); out.Status != resolve.StatusFound {
			return fromOutcome(out)
		}
		if out := resolve.ReplacementStop(state, *action.ToStop, clarifyAt("toStop")); out.Status != resolve.StatusFound {
			return fromOutcome(out)
		}
		return resolved(committask.ScopeReplacementEdges)

	case datatypes.ActionDeleteReplacementEdge:
		routeOut := resolve.ReplacementRoute(state, *action.Route, clarifyAt("route"))
		if routeOut.Status != resolve.StatusFound {
			return fromOutcome(routeOut)
		}
		out := resolve.ReplacementEdge(state, routeOut.Entity, *action.Target, clarifyAt("target"))
		if out.Status != resolve.StatusFound {
			return fromOutcome(out)
		}
		return resolved(committask.ScopeReplacementEdges)

	case datatypes.ActionLinkOpStop, datatypes.ActionUnlinkOpStop:
		opOut := resolve.OperationalPoint(state, *action.Op, clarifyAt("op"))
		if opOut.Status != resolve.StatusFound {
			return fromOutcome(opOut)
		}
		stopOut := resolve.ReplacementStop(state, *action.Stop, clarifyAt("stop"))
		if stopOut.Status != resolve.StatusFound {
			return fromOutcome(stopOut)
		}
		if action.Type == datatypes.ActionUnlinkOpStop {
			if out := resolve.OpStopLink(state, opOut.Entity, stopOut.Entity); out.Status != resolve.StatusFound {
				return fromOutcome(out)
			}
		}
		return resolved(committask.ScopeOpStopLinks)

	case datatypes.ActionUpsertTransferEdge, datatypes.ActionDeleteTransferEdge:
		fromOut := resolve.TransferNode(state, *action.From, clarifyAt("from"))
		if fromOut.Status != resolve.StatusFound {
			return fromOutcome(fromOut)
		}
		toOut := resolve.TransferNode(state, *action.To, clarifyAt("to"))
		if toOut.Status != resolve.StatusFound {
			return fromOutcome(toOut)
		}
		if fromOut.Entity.Equal(toOut.Entity) {
			return asFeedback("a transfer edge needs two different endpoints")
		}
		if action.Type == datatypes.ActionDeleteTransferEdge {
			if out := resolve.TransferEdgeByNodes(state, fromOut.Entity, toOut.Entity); out.Status != resolve.StatusFound {
				return fromOutcome(out)
			}
		}
		return resolved(committask.ScopeTransferEdges)
	}

	return asFeedback(fmt.Sprintf("unsupported action type %q", action.Type))
}

// upsertTypes marks the action types whose target may name a new entity.
var upsertTypes = map[datatypes.ActionType]bool{
	datatypes.ActionUpsertOperationalPoint: true,
	datatypes.ActionUpsertPersonnelSite:    true,
	datatypes.ActionUpsertReplacementStop:  true,
	datatypes.ActionUpsertReplacementRoute: true,
}

// target converts a single-target outcome into a resolution. For upsert
// actions a name-only reference that matched nothing is a new entity, not
// an error; a reference carrying any id field must always resolve.
func target[E any](out resolve.Outcome[E], ref datatypes.EntityRef, allowNew bool, scope committask.Scope) resolution {
	switch out.Status {
	case resolve.StatusFound:
		return resolved(scope)
	case resolve.StatusNotFound:
		if allowNew && ref.Name != "" && !ref.HasID() {
			return resolved(scope)
		}
		return asFeedback(out.Feedback)
	default:
		return fromOutcome(out)
	}
}
