// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package clarify stores pending disambiguations across the stateless
// request/response cycle.
//
// A clarification is created when resolution is ambiguous and the caller
// opted into asking the user; it holds everything needed to resume the
// original mutation later: the original payload, the topology snapshot it
// was resolved against, and the apply instruction for splicing the chosen
// answer back in. Records are ownership-bound on first use and expire by
// TTL.
package clarify

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// ErrOwnership is returned when a caller supplies a clientId or role that
// differs from the one a clarification is bound to. This is misuse, not an
// expected branch, so it is an error rather than feedback.
var ErrOwnership = errors.New("clarification belongs to a different client")

// =============================================================================
// Ownership Binding
// =============================================================================

// BoundValue is a two-phase owner field: unbound until the first call
// supplies a non-empty value, then fixed. Modeled as an explicit state
// rather than a nullable string so the invariant is visible in the type.
type BoundValue struct {
	Set   bool   `json:"set"`
	Value string `json:"value,omitempty"`
}

// Assert checks a caller-supplied value against the binding. An empty
// supplied value performs no check. An unbound field adopts the supplied
// value (bound reports true so the store can refresh updatedAt). A bound
// field that differs from the supplied value is an ownership violation.
func (b *BoundValue) Assert(supplied string) (bound bool, err error) {
	if supplied == "" {
		return false, nil
	}
	if !b.Set {
		b.Set = true
		b.Value = supplied
		return true, nil
	}
	if b.Value != supplied {
		return false, ErrOwnership
	}
	return false, nil
}

// =============================================================================
// Stored Record
// =============================================================================

// Record is a pending clarification as held by the store.
type Record struct {
	// ID is the opaque, caller-independent identifier. Unique and
	// immutable once created.
	ID string `json:"id"`

	// ClientID and Role are bound on first use; see BoundValue.
	ClientID BoundValue `json:"clientId"`
	Role     BoundValue `json:"role"`

	// Payload is the original mutation payload in generic decoded form, so
	// the chosen answer can be patched in and resolution replayed.
	Payload map[string]any `json:"payload"`

	// Snapshot is the topology snapshot at creation time, replayed as the
	// source for consistent re-resolution.
	Snapshot *topology.State `json:"snapshot"`

	// BaseHash fingerprints the snapshot to detect staleness at resume time.
	BaseHash string `json:"baseHash"`

	// Apply records where the chosen option's id must be spliced in.
	Apply datatypes.ApplyInstruction `json:"apply"`

	// Title, Options, and Input mirror what was shown to the user.
	Title   string                          `json:"title"`
	Options []datatypes.ClarificationOption `json:"options"`
	Input   *datatypes.ClarificationInput   `json:"input,omitempty"`

	// CreatedAt and UpdatedAt are epoch millis. Expiry is measured from
	// UpdatedAt, which ownership binding refreshes.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// Option returns the option with the given id, if present.
func (r *Record) Option(optionID string) (datatypes.ClarificationOption, bool) {
	for _, opt := range r.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return datatypes.ClarificationOption{}, false
}

// clone returns a copy safe to hand outside the store lock. The payload
// tree is deep-copied because resolve patches it in place; the snapshot
// is shared, it is immutable once stored.
func (r *Record) clone() (*Record, error) {
	cp := *r
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("clone clarification payload: %w", err)
		}
		cp.Payload = nil
		if err := json.Unmarshal(raw, &cp.Payload); err != nil {
			return nil, fmt.Errorf("clone clarification payload: %w", err)
		}
	}
	cp.Options = append([]datatypes.ClarificationOption(nil), r.Options...)
	return &cp, nil
}

// assertOwnership applies both owner checks and reports whether either
// binding changed.
func (r *Record) assertOwnership(clientID, role string) (bound bool, err error) {
	clientBound, err := r.ClientID.Assert(clientID)
	if err != nil {
		return false, fmt.Errorf("clientId: %w", err)
	}
	roleBound, err := r.Role.Assert(role)
	if err != nil {
		return false, fmt.Errorf("role: %w", err)
	}
	return clientBound || roleBound, nil
}
