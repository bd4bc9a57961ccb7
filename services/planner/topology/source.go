// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package topology provides read access to the rail-operations planning
// topology: the snapshot source abstraction, the per-request state cache,
// and the file-backed source used in local deployments.
package topology

import (
	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// Source supplies the topology collections, one read method per entity
// kind. A source is assumed always available: a missing backend manifests
// as empty collections, never as an error.
//
// Implementations must return collections that are safe to retain for the
// duration of one request (the state cache copies them once per request
// context and never writes back).
type Source interface {
	ListOperationalPoints() []datatypes.OperationalPoint
	ListSectionsOfLine() []datatypes.SectionOfLine
	ListPersonnelSites() []datatypes.PersonnelSite
	ListReplacementStops() []datatypes.ReplacementStop
	ListReplacementRoutes() []datatypes.ReplacementRoute
	ListReplacementEdges() []datatypes.ReplacementEdge
	ListOpStopLinks() []datatypes.OpStopLink
	ListTransferEdges() []datatypes.TransferEdge
}
