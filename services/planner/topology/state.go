// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package topology

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// =============================================================================
// Topology State
// =============================================================================

// State holds snapshot copies of every topology collection. A State is
// built once per action-processing context, reused for every reference
// inside that request, and discarded with it. It is never written to.
//
// State itself implements Source, so a snapshot stored with a pending
// clarification can be replayed as the source for re-resolution.
type State struct {
	OperationalPoints []datatypes.OperationalPoint `json:"operationalPoints"`
	SectionsOfLine    []datatypes.SectionOfLine    `json:"sectionsOfLine"`
	PersonnelSites    []datatypes.PersonnelSite    `json:"personnelSites"`
	ReplacementStops  []datatypes.ReplacementStop  `json:"replacementStops"`
	ReplacementRoutes []datatypes.ReplacementRoute `json:"replacementRoutes"`
	ReplacementEdges  []datatypes.ReplacementEdge  `json:"replacementEdges"`
	OpStopLinks       []datatypes.OpStopLink       `json:"opStopLinks"`
	TransferEdges     []datatypes.TransferEdge     `json:"transferEdges"`
}

var _ Source = (*State)(nil)

func (s *State) ListOperationalPoints() []datatypes.OperationalPoint { return s.OperationalPoints }
func (s *State) ListSectionsOfLine() []datatypes.SectionOfLine       { return s.SectionsOfLine }
func (s *State) ListPersonnelSites() []datatypes.PersonnelSite       { return s.PersonnelSites }
func (s *State) ListReplacementStops() []datatypes.ReplacementStop   { return s.ReplacementStops }
func (s *State) ListReplacementRoutes() []datatypes.ReplacementRoute { return s.ReplacementRoutes }
func (s *State) ListReplacementEdges() []datatypes.ReplacementEdge   { return s.ReplacementEdges }
func (s *State) ListOpStopLinks() []datatypes.OpStopLink             { return s.OpStopLinks }
func (s *State) ListTransferEdges() []datatypes.TransferEdge         { return s.TransferEdges }

// Hash returns a fingerprint of the snapshot, used to detect staleness
// when a clarification is resumed against a topology that has since been
// re-imported.
func (s *State) Hash() string {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	// Encoding a struct cannot fail; ignore the error.
	_ = enc.Encode(s)
	return fmt.Sprintf("%016x", h.Sum64())
}

// =============================================================================
// Per-Request Context
// =============================================================================

// Context is the action-processing context: it owns the lazily built State
// for one request. A Context is never shared across concurrent requests,
// so it needs no synchronization.
type Context struct {
	source Source
	state  *State
}

// NewContext creates an action-processing context backed by the given source.
func NewContext(source Source) *Context {
	return &Context{source: source}
}

// Ensure returns the topology state for this context, pulling every
// collection from the source exactly once. Subsequent calls return the
// same *State.
func (c *Context) Ensure() *State {
	if c.state != nil {
		return c.state
	}
	c.state = &State{
		OperationalPoints: c.source.ListOperationalPoints(),
		SectionsOfLine:    c.source.ListSectionsOfLine(),
		PersonnelSites:    c.source.ListPersonnelSites(),
		ReplacementStops:  c.source.ListReplacementStops(),
		ReplacementRoutes: c.source.ListReplacementRoutes(),
		ReplacementEdges:  c.source.ListReplacementEdges(),
		OpStopLinks:       c.source.ListOpStopLinks(),
		TransferEdges:     c.source.ListTransferEdges(),
	}
	return c.state
}
