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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// =============================================================================
// BadgerDB-Backed Store
// =============================================================================

// keyPrefix namespaces clarification records inside the database.
var keyPrefix = []byte("clarify/")

// BadgerStore is a Store backed by an embedded BadgerDB, for deployments
// where pending clarifications must survive a service restart. Semantics
// are identical to MemoryStore: full sweep on Create/Get, lazy ownership
// binding via read-modify-write transactions, non-positive TTL disables
// expiry.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
	now func() time.Time
}

var _ Store = (*BadgerStore)(nil)

// badgerLogger adapts slog to BadgerDB's Logger interface.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	slog.Error(fmt.Sprintf(format, args...))
}
func (badgerLogger) Warningf(format string, args ...interface{}) {
	slog.Warn(fmt.Sprintf(format, args...))
}
func (badgerLogger) Infof(format string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(format, args...))
}
func (badgerLogger) Debugf(format string, args ...interface{}) {
	slog.Debug(fmt.Sprintf(format, args...))
}

// NewBadgerStore opens (or creates) a BadgerDB at path. An empty path
// opens an in-memory database, which is useful for tests.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open clarification store at %q: %w", path, err)
	}
	return &BadgerStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Create implements Store.
func (s *BadgerStore) Create(rec *Record) (*Record, error) {
	now := s.now().UnixMilli()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt == 0 {
		rec.UpdatedAt = now
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.sweep(txn); err != nil {
			return err
		}
		return s.put(txn, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("create clarification %s: %w", rec.ID, err)
	}
	return rec, nil
}

// Get implements Store.
func (s *BadgerStore) Get(id, clientID, role string) (*Record, error) {
	var rec *Record
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := s.sweep(txn); err != nil {
			return err
		}
		found, err := s.read(txn, id)
		if err != nil || found == nil {
			return err
		}
		bound, err := found.assertOwnership(clientID, role)
		if err != nil {
			return err
		}
		if bound {
			found.UpdatedAt = s.now().UnixMilli()
			if err := s.put(txn, found); err != nil {
				return err
			}
		}
		rec = found
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOwnership) {
			return nil, err
		}
		return nil, fmt.Errorf("get clarification %s: %w", id, err)
	}
	return rec, nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(id))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete clarification %s: %w", id, err)
	}
	return nil
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) key(id string) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

func (s *BadgerStore) put(txn *badger.Txn, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return txn.Set(s.key(rec.ID), raw)
}

func (s *BadgerStore) read(txn *badger.Txn, id string) (*Record, error) {
	item, err := txn.Get(s.key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := &Record{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// sweep deletes every record past its TTL, mirroring the memory store's
// linear sweep. Record counts are small (pending user questions), so a
// full scan per call is acceptable here too.
func (s *BadgerStore) sweep(txn *badger.Txn) error {
	if s.ttl <= 0 {
		return nil
	}
	cutoff := s.now().Add(-s.ttl).UnixMilli()

	it := txn.NewIterator(badger.IteratorOptions{Prefix: keyPrefix, PrefetchValues: true})
	defer it.Close()

	var expired [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		rec := &Record{}
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
		if err != nil {
			return err
		}
		if rec.UpdatedAt < cutoff {
			expired = append(expired, item.KeyCopy(nil))
		}
	}
	for _, key := range expired {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
