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
// This file contains the rail-operations topology entities. Field names
// follow the ERA (EU Agency for Railways) vocabulary used by the topology
// import pipeline: operational points carry a uniqueOpId and an opType code,
// sections of line are identified by their two endpoint operational points
// and a national line id.
package datatypes

// =============================================================================
// Operational Point Types
// =============================================================================

// Operational point type codes from the ERA opType vocabulary.
const (
	OpTypeStation           = "STATION"
	OpTypeSmallStation      = "SMALL_STATION"
	OpTypePassengerTerminal = "PASSENGER_TERMINAL"
	OpTypeFreightTerminal   = "FREIGHT_TERMINAL"
	OpTypeDepotOrWorkshop   = "DEPOT_OR_WORKSHOP"
	OpTypeJunction          = "JUNCTION"
)

// OperationalPoint is a station, junction, terminal, or similar named
// location in the rail network.
//
// # Fields
//
//   - ID: Internal identifier, unique across the topology (e.g. "OP1").
//   - UniqueOpID: ERA uniqueOPID, the stable cross-system identifier
//     (e.g. "DE000BL"). Secondary lookup key during resolution.
//   - Name: Display name (e.g. "Hauptbahnhof"). Not unique.
//   - OpType: ERA opType code, see the OpType* constants.
type OperationalPoint struct {
	ID         string  `json:"id"`
	UniqueOpID string  `json:"uniqueOpId"`
	Name       string  `json:"name"`
	OpType     string  `json:"opType,omitempty"`
	Latitude   float64 `json:"latitude,omitempty"`
	Longitude  float64 `json:"longitude,omitempty"`
}

// SectionOfLine is a track section between two operational points.
//
// A section is identified either by its internal id or by the
// (opStartId, opEndId) endpoint tuple.
type SectionOfLine struct {
	ID             string  `json:"id"`
	LineNationalID string  `json:"lineNationalId,omitempty"`
	OpStartID      string  `json:"opStartId"`
	OpEndID        string  `json:"opEndId"`
	LengthKM       float64 `json:"lengthKm,omitempty"`
	SolNature      string  `json:"solNature,omitempty"`
	IMCode         string  `json:"imCode,omitempty"`
}

// PersonnelSite is a reporting point or crew facility (e.g. a Meldestelle)
// where replacement-transport personnel check in.
type PersonnelSite struct {
	ID       string `json:"id"`
	SiteID   string `json:"siteId"`
	Name     string `json:"name"`
	SiteType string `json:"siteType,omitempty"`
}

// =============================================================================
// Replacement Transport Types
// =============================================================================

// ReplacementStop is a bus stop used by rail replacement services.
type ReplacementStop struct {
	ID        string  `json:"id"`
	StopID    string  `json:"stopId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// ReplacementRoute is a rail replacement bus line (e.g. "SEV 3").
type ReplacementRoute struct {
	ID      string `json:"id"`
	RouteID string `json:"routeId"`
	Name    string `json:"name"`
	Code    string `json:"code,omitempty"`
}

// ReplacementEdge is one leg of a replacement route, identified by the
// (routeId, seq) tuple.
type ReplacementEdge struct {
	ID              string `json:"id"`
	RouteID         string `json:"routeId"`
	Seq             int    `json:"seq"`
	FromStopID      string `json:"fromStopId"`
	ToStopID        string `json:"toStopId"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// OpStopLink associates an operational point with a nearby replacement stop.
// Identified by its internal id or by the (opId, stopId) tuple.
type OpStopLink struct {
	ID          string `json:"id"`
	OpID        string `json:"opId"`
	StopID      string `json:"stopId"`
	WalkSeconds int    `json:"walkSeconds,omitempty"`
}

// =============================================================================
// Transfer Types
// =============================================================================

// TransferNodeKind discriminates the entity kind behind a transfer node.
type TransferNodeKind string

const (
	TransferNodeOperationalPoint TransferNodeKind = "OPERATIONAL_POINT"
	TransferNodePersonnelSite    TransferNodeKind = "PERSONNEL_SITE"
	TransferNodeReplacementStop  TransferNodeKind = "REPLACEMENT_STOP"
)

// TransferNode is one endpoint of a transfer edge: a tagged union over
// operational point, personnel site, and replacement stop. Exactly one of
// the id fields is populated, matching Kind.
type TransferNode struct {
	Kind       TransferNodeKind `json:"kind"`
	UniqueOpID string           `json:"uniqueOpId,omitempty"`
	SiteID     string           `json:"siteId,omitempty"`
	StopID     string           `json:"stopId,omitempty"`
}

// NodeID returns the kind-specific identifier of the node.
func (n TransferNode) NodeID() string {
	switch n.Kind {
	case TransferNodeOperationalPoint:
		return n.UniqueOpID
	case TransferNodePersonnelSite:
		return n.SiteID
	case TransferNodeReplacementStop:
		return n.StopID
	}
	return ""
}

// Equal reports whether two resolved transfer nodes identify the same
// location. Nodes of different kinds are never equal.
func (n TransferNode) Equal(o TransferNode) bool {
	return n.Kind == o.Kind && n.NodeID() == o.NodeID()
}

// TransferEdge is a walking connection between two transfer nodes.
type TransferEdge struct {
	ID              string       `json:"id"`
	From            TransferNode `json:"from"`
	To              TransferNode `json:"to"`
	DurationSeconds int          `json:"durationSeconds,omitempty"`
}
