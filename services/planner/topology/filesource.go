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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
)

// =============================================================================
// File-Backed Snapshot Source
// =============================================================================

// FileSource serves topology collections from a JSON export file, the same
// format the topology import tooling produces. The file is read once at
// startup and re-read whenever the watcher sees it change, so dropping a
// new export next to a running service takes effect without a restart.
//
// All List methods return the collections of the most recently loaded
// snapshot. Concurrent readers are safe; reload swaps the snapshot pointer
// under a write lock.
type FileSource struct {
	path string

	mu    sync.RWMutex
	state *State
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a file-backed source and performs the initial load.
// A missing file is not an error: the source starts with an empty snapshot
// and picks the file up when it appears.
func NewFileSource(path string) (*FileSource, error) {
	fs := &FileSource{path: path, state: &State{}}
	if err := fs.Reload(); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("topology file not present yet, starting empty", "path", path)
			return fs, nil
		}
		return nil, err
	}
	return fs, nil
}

// Reload re-reads the topology file and swaps in the new snapshot.
func (f *FileSource) Reload() error {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return err
	}
	state := &State{}
	if err := json.Unmarshal(raw, state); err != nil {
		return fmt.Errorf("parse topology file %s: %w", f.path, err)
	}

	f.mu.Lock()
	f.state = state
	f.mu.Unlock()

	slog.Info("topology snapshot loaded",
		"path", f.path,
		"operationalPoints", len(state.OperationalPoints),
		"sectionsOfLine", len(state.SectionsOfLine),
		"replacementStops", len(state.ReplacementStops),
		"hash", state.Hash())
	return nil
}

// Watch blocks, reloading the snapshot on every write or create event for
// the topology file, until the context is cancelled. The parent directory
// is watched rather than the file itself so atomic rename-into-place
// writes are picked up.
func (f *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create topology watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch topology directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if err := f.Reload(); err != nil {
				slog.Error("topology reload failed", "path", f.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("topology watcher error", "error", err)
		}
	}
}

// Snapshot returns the current snapshot.
func (f *FileSource) Snapshot() *State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

func (f *FileSource) ListOperationalPoints() []datatypes.OperationalPoint {
	return f.Snapshot().OperationalPoints
}

func (f *FileSource) ListSectionsOfLine() []datatypes.SectionOfLine {
	return f.Snapshot().SectionsOfLine
}

func (f *FileSource) ListPersonnelSites() []datatypes.PersonnelSite {
	return f.Snapshot().PersonnelSites
}

func (f *FileSource) ListReplacementStops() []datatypes.ReplacementStop {
	return f.Snapshot().ReplacementStops
}

func (f *FileSource) ListReplacementRoutes() []datatypes.ReplacementRoute {
	return f.Snapshot().ReplacementRoutes
}

func (f *FileSource) ListReplacementEdges() []datatypes.ReplacementEdge {
	return f.Snapshot().ReplacementEdges
}

func (f *FileSource) ListOpStopLinks() []datatypes.OpStopLink {
	return f.Snapshot().OpStopLinks
}

func (f *FileSource) ListTransferEdges() []datatypes.TransferEdge {
	return f.Snapshot().TransferEdges
}
