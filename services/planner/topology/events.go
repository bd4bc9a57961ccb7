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
	"sync"
	"time"
)

// =============================================================================
// Import Events
// =============================================================================

// ImportEvent is one progress report from the topology import pipeline
// (started, replaced collections, finished, failed).
type ImportEvent struct {
	Status     string   `json:"status"`
	Kinds      []string `json:"kinds,omitempty"`
	Message    string   `json:"message,omitempty"`
	Source     string   `json:"source,omitempty"`
	ReceivedAt int64    `json:"receivedAt"`
}

// defaultImportLogSize bounds the import event ring.
const defaultImportLogSize = 64

// ImportLog keeps the most recent import events in a fixed-size ring.
// Safe for concurrent use.
type ImportLog struct {
	mu     sync.Mutex
	events []ImportEvent
	size   int
	now    func() time.Time
}

// NewImportLog creates an import log holding up to size events. A size of
// zero or less uses the default.
func NewImportLog(size int) *ImportLog {
	if size <= 0 {
		size = defaultImportLogSize
	}
	return &ImportLog{size: size, now: time.Now}
}

// Record stamps and stores an event, evicting the oldest when full.
func (l *ImportLog) Record(event ImportEvent) ImportEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.ReceivedAt = l.now().UnixMilli()
	l.events = append(l.events, event)
	if len(l.events) > l.size {
		l.events = l.events[len(l.events)-l.size:]
	}
	return event
}

// Recent returns the stored events, newest first.
func (l *ImportLog) Recent() []ImportEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]ImportEvent, len(l.events))
	for i, e := range l.events {
		out[len(l.events)-1-i] = e
	}
	return out
}
