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
// This file contains the planning action payloads sent by the assistant
// layer. An action names one mutation on the topology and references its
// target entities loosely: by internal id, by a stable domain id, or just
// by display name. The resolve package turns those references into concrete
// entities.
package datatypes

import (
	"fmt"
)

// =============================================================================
// Entity References
// =============================================================================

// EntityRef is a loosely specified reference to a topology entity. The
// assistant fills in whatever identifying fields it extracted from the
// conversation; resolution precedence is fixed (internal id, then the
// kind-specific stable id, then normalized name).
//
// Which fields are meaningful depends on the entity kind the reference is
// interpreted against. Unused fields are ignored.
type EntityRef struct {
	ID             string `json:"id,omitempty"`
	UniqueOpID     string `json:"uniqueOpId,omitempty"`
	SiteID         string `json:"siteId,omitempty"`
	StopID         string `json:"stopId,omitempty"`
	RouteID        string `json:"routeId,omitempty"`
	LineNationalID string `json:"lineNationalId,omitempty"`
	OpStartID      string `json:"opStartId,omitempty"`
	OpEndID        string `json:"opEndId,omitempty"`
	Seq            *int   `json:"seq,omitempty"`
	Name           string `json:"name,omitempty"`
}

// HasID reports whether the reference carries any id field, as opposed to
// only a display name. A reference with an id must resolve; it is never
// treated as naming a new entity.
func (r EntityRef) HasID() bool {
	return r.ID != "" || r.UniqueOpID != "" || r.SiteID != "" || r.StopID != "" ||
		r.RouteID != "" || r.LineNationalID != "" || r.OpStartID != "" ||
		r.OpEndID != "" || r.Seq != nil
}

// IsZero reports whether the reference carries no identifying field at all.
func (r EntityRef) IsZero() bool {
	return r.Name == "" && !r.HasID()
}

// TransferNodeRef is a loosely specified reference to one endpoint of a
// transfer edge. Kind selects the entity collection; the matching id field
// or the name identifies the entity within it.
type TransferNodeRef struct {
	Kind       TransferNodeKind `json:"kind"`
	UniqueOpID string           `json:"uniqueOpId,omitempty"`
	SiteID     string           `json:"siteId,omitempty"`
	StopID     string           `json:"stopId,omitempty"`
	Name       string           `json:"name,omitempty"`
}

// =============================================================================
// Planning Actions
// =============================================================================

// ActionType names one topology mutation.
type ActionType string

const (
	ActionUpsertOperationalPoint ActionType = "UPSERT_OPERATIONAL_POINT"
	ActionDeleteOperationalPoint ActionType = "DELETE_OPERATIONAL_POINT"
	ActionDeleteSectionOfLine    ActionType = "DELETE_SECTION_OF_LINE"
	ActionUpsertPersonnelSite    ActionType = "UPSERT_PERSONNEL_SITE"
	ActionDeletePersonnelSite    ActionType = "DELETE_PERSONNEL_SITE"
	ActionUpsertReplacementStop  ActionType = "UPSERT_REPLACEMENT_STOP"
	ActionDeleteReplacementStop  ActionType = "DELETE_REPLACEMENT_STOP"
	ActionUpsertReplacementRoute ActionType = "UPSERT_REPLACEMENT_ROUTE"
	ActionDeleteReplacementRoute ActionType = "DELETE_REPLACEMENT_ROUTE"
	ActionUpsertReplacementEdge  ActionType = "UPSERT_REPLACEMENT_EDGE"
	ActionDeleteReplacementEdge  ActionType = "DELETE_REPLACEMENT_EDGE"
	ActionLinkOpStop             ActionType = "LINK_OP_STOP"
	ActionUnlinkOpStop           ActionType = "UNLINK_OP_STOP"
	ActionUpsertTransferEdge     ActionType = "UPSERT_TRANSFER_EDGE"
	ActionDeleteTransferEdge     ActionType = "DELETE_TRANSFER_EDGE"
)

// PlanningAction is one topology mutation with loosely specified entity
// references. Which reference fields are required depends on Type:
//
//   - UPSERT_*/DELETE_* single-entity actions use Target.
//   - UPSERT_REPLACEMENT_EDGE and DELETE_REPLACEMENT_EDGE use Route plus
//     the Seq inside Target (or FromStop/ToStop for upsert).
//   - LINK_OP_STOP and UNLINK_OP_STOP use Op and Stop.
//   - UPSERT_TRANSFER_EDGE and DELETE_TRANSFER_EDGE use From and To.
//
// Set carries the fields to write for upsert actions and is passed through
// to the commit layer untouched.
type PlanningAction struct {
	Type     ActionType       `json:"type" validate:"required"`
	Target   *EntityRef       `json:"target,omitempty"`
	Route    *EntityRef       `json:"route,omitempty"`
	Op       *EntityRef       `json:"op,omitempty"`
	Stop     *EntityRef       `json:"stop,omitempty"`
	FromStop *EntityRef       `json:"fromStop,omitempty"`
	ToStop   *EntityRef       `json:"toStop,omitempty"`
	From     *TransferNodeRef `json:"from,omitempty"`
	To       *TransferNodeRef `json:"to,omitempty"`
	Set      map[string]any   `json:"set,omitempty"`
}

// requiredRefs maps each action type to the reference fields it must carry.
var requiredRefs = map[ActionType][]string{
	ActionUpsertOperationalPoint: {"target"},
	ActionDeleteOperationalPoint: {"target"},
	ActionDeleteSectionOfLine:    {"target"},
	ActionUpsertPersonnelSite:    {"target"},
	ActionDeletePersonnelSite:    {"target"},
	ActionUpsertReplacementStop:  {"target"},
	ActionDeleteReplacementStop:  {"target"},
	ActionUpsertReplacementRoute: {"target"},
	ActionDeleteReplacementRoute: {"target"},
	ActionUpsertReplacementEdge:  {"route", "fromStop", "toStop"},
	ActionDeleteReplacementEdge:  {"route", "target"},
	ActionLinkOpStop:             {"op", "stop"},
	ActionUnlinkOpStop:           {"op", "stop"},
	ActionUpsertTransferEdge:     {"from", "to"},
	ActionDeleteTransferEdge:     {"from", "to"},
}

// Validate checks that the action type is known and that the references the
// type requires are present. Reference *content* is not checked here; an
// empty or unresolvable reference surfaces later as resolution feedback,
// not as a validation error.
func (a *PlanningAction) Validate() error {
	required, ok := requiredRefs[a.Type]
	if !ok {
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	for _, field := range required {
		if !a.hasRef(field) {
			return fmt.Errorf("action %s requires field %q", a.Type, field)
		}
	}
	return nil
}

func (a *PlanningAction) hasRef(field string) bool {
	switch field {
	case "target":
		return a.Target != nil
	case "route":
		return a.Route != nil
	case "op":
		return a.Op != nil
	case "stop":
		return a.Stop != nil
	case "fromStop":
		return a.FromStop != nil
	case "toStop":
		return a.ToStop != nil
	case "from":
		return a.From != nil
	case "to":
		return a.To != nil
	}
	return false
}
