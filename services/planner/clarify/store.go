// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package clarify

import (
	"sync"
	"time"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store holds pending clarifications. Implementations must be safe for
// concurrent use: two in-flight requests can race on the same id (for
// example simultaneous resolve attempts from two tabs).
//
// Get returns (nil, nil) for an absent or expired id — expiry is
// deliberately indistinguishable from absence. Ownership violations are
// the only error case (ErrOwnership).
type Store interface {
	// Create purges expired records, stores the record by id, and returns
	// it unchanged.
	Create(rec *Record) (*Record, error)

	// Get purges expired records, then looks up id. A present record has
	// ownership asserted against clientID and role (empty values skip the
	// check; an unbound field adopts the supplied value and refreshes
	// updatedAt). The returned record is the caller's own copy; mutating
	// it, the payload tree included, must not affect the stored record.
	Get(id, clientID, role string) (*Record, error)

	// Delete removes a record unconditionally. Deleting an absent id is
	// not an error.
	Delete(id string) error

	// Close releases any backing resources.
	Close() error
}

// =============================================================================
// In-Memory Store
// =============================================================================

// MemoryStore is the default Store: a mutex-guarded map with a full expiry
// sweep on every Create and Get. The sweep trades a small linear cost per
// call for zero background-task management. A non-positive TTL disables
// expiry entirely.
//
// Records cross the store boundary by copy in both directions, so two
// concurrent resolve attempts on the same id each patch their own payload
// tree instead of racing on a shared map.
type MemoryStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	recs map[string]*Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an in-memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		recs: make(map[string]*Record),
	}
}

// Create implements Store.
func (s *MemoryStore) Create(rec *Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	now := s.now().UnixMilli()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt == 0 {
		rec.UpdatedAt = now
	}
	stored, err := rec.clone()
	if err != nil {
		return nil, err
	}
	s.recs[rec.ID] = stored
	return rec, nil
}

// Get implements Store.
func (s *MemoryStore) Get(id, clientID, role string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	rec, ok := s.recs[id]
	if !ok {
		return nil, nil
	}
	bound, err := rec.assertOwnership(clientID, role)
	if err != nil {
		return nil, err
	}
	if bound {
		rec.UpdatedAt = s.now().UnixMilli()
	}
	return rec.clone()
}

// Delete implements Store.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

// Close implements Store. The memory store has nothing to release.
func (s *MemoryStore) Close() error { return nil }

// sweepLocked removes every record past its TTL. Caller holds the lock.
func (s *MemoryStore) sweepLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	for id, rec := range s.recs {
		if rec.UpdatedAt < cutoff {
			delete(s.recs, id)
		}
	}
}
