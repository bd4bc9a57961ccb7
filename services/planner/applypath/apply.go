// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package applypath splices a clarified value back into the original action
// payload.
//
// Payloads are generic decoded JSON trees (map[string]any and []any, as
// produced by encoding/json). Paths mix object keys (string) and array
// indices (number). Missing intermediate containers are never created: the
// path was recorded when the original reference was first seen, so it is
// expected to exist in the stored payload, and a miss is a contract
// violation, not something to repair.
package applypath

import (
	"fmt"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// Apply writes chosen into payload per the instruction. Mode "value" sets
// the leaf at the path to chosen; mode "target" replaces the whole value
// found at the path with chosen. Sibling fields and unrelated array
// entries are left untouched.
//
// The payload is modified in place. For mode "target" the path must be
// non-empty (replacing the root would replace the payload itself).
func Apply(payload map[string]any, ins datatypes.ApplyInstruction, chosen any) error {
	if len(ins.Path) == 0 {
		return fmt.Errorf("apply path is empty")
	}

	// Walk to the parent of the terminal segment.
	var current any = payload
	for i, seg := range ins.Path[:len(ins.Path)-1] {
		next, err := step(current, seg)
		if err != nil {
			return fmt.Errorf("apply path segment %d (%v): %w", i, seg, err)
		}
		current = next
	}

	last := ins.Path[len(ins.Path)-1]
	switch ins.Mode {
	case datatypes.ApplyModeValue, datatypes.ApplyModeTarget:
		return set(current, last, chosen)
	default:
		return fmt.Errorf("unknown apply mode %q", ins.Mode)
	}
}

// step descends one path segment into a container.
func step(current any, seg any) (any, error) {
	switch container := current.(type) {
	case map[string]any:
		key, ok := seg.(string)
		if !ok {
			return nil, fmt.Errorf("object requires a string key, got %T", seg)
		}
		child, ok := container[key]
		if !ok {
			return nil, fmt.Errorf("key %q not present", key)
		}
		return child, nil

	case []any:
		idx, ok := toIndex(seg)
		if !ok {
			return nil, fmt.Errorf("array requires a numeric index, got %T", seg)
		}
		if idx < 0 || idx >= len(container) {
			return nil, fmt.Errorf("index %d out of range (len %d)", idx, len(container))
		}
		return container[idx], nil
	}
	return nil, fmt.Errorf("cannot descend into %T", current)
}

// set writes value at the terminal segment of a container.
func set(current any, seg any, value any) error {
	switch container := current.(type) {
	case map[string]any:
		key, ok := seg.(string)
		if !ok {
			return fmt.Errorf("object requires a string key, got %T", seg)
		}
		container[key] = value
		return nil

	case []any:
		idx, ok := toIndex(seg)
		if !ok {
			return fmt.Errorf("array requires a numeric index, got %T", seg)
		}
		if idx < 0 || idx >= len(container) {
			return fmt.Errorf("index %d out of range (len %d)", idx, len(container))
		}
		container[idx] = value
		return nil
	}
	return fmt.Errorf("cannot assign into %T", current)
}

// toIndex accepts the numeric types a path segment can arrive as: int when
// built in process, float64 after a JSON round trip through the store.
func toIndex(seg any) (int, bool) {
	switch n := seg.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
