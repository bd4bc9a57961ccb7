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
// Transfer Node Resolution
// =============================================================================

// TransferNode resolves one endpoint of a transfer edge. The node reference
// is a tagged union: Kind selects the entity collection, then resolution
// delegates to the kind's resolver.
//
// When the delegated resolution is ambiguous and a clarification capability
// was supplied, the clarification's apply path is the capability's base
// path with the kind-specific id field appended (uniqueOpId, siteId, or
// stopId), so the answer can be spliced into the node in place without
// re-specifying the surrounding edge.
func TransferNode(state *topology.State, ref datatypes.TransferNodeRef, clarify *Clarify) Outcome[datatypes.TransferNode] {
	switch ref.Kind {
	case datatypes.TransferNodeOperationalPoint:
		out := OperationalPoint(state, datatypes.EntityRef{
			UniqueOpID: ref.UniqueOpID,
			Name:       ref.Name,
		}, clarify)
		return mapOutcome(out, func(e datatypes.OperationalPoint) datatypes.TransferNode {
			return datatypes.TransferNode{
				Kind:       datatypes.TransferNodeOperationalPoint,
				UniqueOpID: e.UniqueOpID,
			}
		})

	case datatypes.TransferNodePersonnelSite:
		out := PersonnelSite(state, datatypes.EntityRef{
			SiteID: ref.SiteID,
			Name:   ref.Name,
		}, clarify)
		return mapOutcome(out, func(e datatypes.PersonnelSite) datatypes.TransferNode {
			return datatypes.TransferNode{
				Kind:   datatypes.TransferNodePersonnelSite,
				SiteID: e.SiteID,
			}
		})

	case datatypes.TransferNodeReplacementStop:
		out := ReplacementStop(state, datatypes.EntityRef{
			StopID: ref.StopID,
			Name:   ref.Name,
		}, clarify)
		return mapOutcome(out, func(e datatypes.ReplacementStop) datatypes.TransferNode {
			return datatypes.TransferNode{
				Kind:   datatypes.TransferNodeReplacementStop,
				StopID: e.StopID,
			}
		})
	}
	return NotFound[datatypes.TransferNode]("unknown transfer node kind %q", ref.Kind)
}

// TransferEdgeByNodes finds the transfer edge connecting two resolved
// nodes, in either direction.
func TransferEdgeByNodes(state *topology.State, from, to datatypes.TransferNode) Outcome[datatypes.TransferEdge] {
	for _, edge := range state.TransferEdges {
		if edge.From.Equal(from) && edge.To.Equal(to) {
			return Found(edge)
		}
		if edge.From.Equal(to) && edge.To.Equal(from) {
			return Found(edge)
		}
	}
	return NotFound[datatypes.TransferEdge]("no transfer edge between %s %q and %s %q",
		from.Kind, from.NodeID(), to.Kind, to.NodeID())
}
