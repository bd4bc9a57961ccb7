// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services provides business logic services for the planner.
//
// ActionService orchestrates the two halves of the clarification protocol:
// Preview resolves every reference in a fresh action and either emits
// commit tasks, feedback, or a stored clarification; Resolve resumes a
// stored clarification with the user's chosen option, patches the original
// payload, and replays resolution against the stored snapshot.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/RailOpsLocal/services/planner/applypath"
	"github.com/AleutianAI/RailOpsLocal/services/planner/clarify"
	"github.com/AleutianAI/RailOpsLocal/services/planner/committask"
	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/observability"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// actionTracer is the OpenTelemetry tracer for ActionService operations.
var actionTracer = otel.Tracer("railops.planner.services.actions")

// ErrInvalidAction wraps request decoding and validation failures; the
// handler maps it to a 400 response.
var ErrInvalidAction = errors.New("invalid action")

// ErrClarificationNotFound is returned when a resolve call names a
// clarification that is absent or expired. Expiry is indistinguishable
// from absence; the caller reports a retryable not-found either way.
var ErrClarificationNotFound = errors.New("clarification not found or expired")

// =============================================================================
// Action Service
// =============================================================================

// ActionService resolves planning actions against the topology and manages
// pending clarifications.
type ActionService struct {
	store   clarify.Store
	source  topology.Source
	metrics *observability.Metrics
}

// NewActionService creates an ActionService. metrics may be nil.
func NewActionService(store clarify.Store, source topology.Source, metrics *observability.Metrics) *ActionService {
	return &ActionService{store: store, source: source, metrics: metrics}
}

// Preview resolves every entity reference in the request's action.
//
// Outcomes map to the response status: "resolved" with commit tasks when
// everything resolved, "clarification" when a reference was ambiguous and a
// pending clarification was stored, "feedback" for recoverable resolution
// failures (unknown name, missing fields). Only invalid payloads and store
// failures are errors.
func (s *ActionService) Preview(ctx context.Context, req *datatypes.PreviewRequest, clientID, role string) (*datatypes.PreviewResponse, error) {
	ctx, span := actionTracer.Start(ctx, "ActionService.Preview")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveActionDuration("preview", time.Since(start).Seconds()) }()

	action, payload, err := decodeAction(req.Action)
	if err != nil {
		s.metrics.RecordAction("preview", "error")
		return nil, err
	}
	span.SetAttributes(attribute.String("action.type", string(action.Type)))

	state := topology.NewContext(s.source).Ensure()
	res := resolveAction(state, action, req.WantsClarification())
	resp, err := s.finish(ctx, "preview", state, payload, res, clientID, role)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Resolve resumes a pending clarification with the user's chosen option.
//
// The stored record is ownership-checked, the chosen option's id is
// spliced into the stored payload via the apply instruction, and
// resolution is replayed against the stored snapshot. A different
// reference in the same action can come back ambiguous; in that case the
// old record is replaced by a chained one and the caller gets a fresh
// clarification.
func (s *ActionService) Resolve(ctx context.Context, req *datatypes.ResolveRequest, clientID, role string) (*datatypes.PreviewResponse, error) {
	ctx, span := actionTracer.Start(ctx, "ActionService.Resolve")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveActionDuration("resolve", time.Since(start).Seconds()) }()

	rec, err := s.store.Get(req.ClarificationID, clientID, role)
	if err != nil {
		if errors.Is(err, clarify.ErrOwnership) {
			s.metrics.RecordClarification("ownership_rejected")
		}
		s.metrics.RecordAction("resolve", "error")
		return nil, err
	}
	if rec == nil {
		s.metrics.RecordClarification("missing")
		s.metrics.RecordAction("resolve", "error")
		return nil, ErrClarificationNotFound
	}

	option, ok := rec.Option(req.ChosenOptionID)
	if !ok {
		s.metrics.RecordAction("resolve", "feedback")
		return &datatypes.PreviewResponse{
			Status: datatypes.PreviewStatusFeedback,
			Feedback: fmt.Sprintf("%q is not one of the offered options for this clarification",
				req.ChosenOptionID),
		}, nil
	}

	if err := applypath.Apply(rec.Payload, rec.Apply, option.ID); err != nil {
		s.metrics.RecordAction("resolve", "error")
		return nil, fmt.Errorf("apply chosen option to stored payload: %w", err)
	}

	patched, err := json.Marshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("re-encode patched payload: %w", err)
	}
	action, payload, err := decodeAction(patched)
	if err != nil {
		return nil, err
	}

	// Re-resolution runs against the snapshot the clarification was created
	// from, so the candidate set the user chose from is still the one in
	// effect. Staleness against the live topology is reported, not fatal.
	state := topology.NewContext(rec.Snapshot).Ensure()
	res := resolveAction(state, action, true)

	live := topology.NewContext(s.source).Ensure()
	stale := rec.BaseHash != "" && live.Hash() != rec.BaseHash
	if stale {
		slog.Warn("topology changed while clarification was pending",
			"clarificationId", rec.ID, "baseHash", rec.BaseHash, "liveHash", live.Hash())
	}

	if res.clarification != nil {
		// Another reference needs disambiguating: chain a fresh record and
		// retire this one.
		chained, err := s.createRecord(payload, rec.Snapshot, rec.BaseHash, res.clarification, clientID, role)
		if err != nil {
			return nil, err
		}
		chained.ClientID = rec.ClientID
		chained.Role = rec.Role
		if _, err := s.store.Create(chained); err != nil {
			return nil, fmt.Errorf("store chained clarification: %w", err)
		}
		if err := s.store.Delete(rec.ID); err != nil {
			return nil, fmt.Errorf("retire clarification %s: %w", rec.ID, err)
		}
		s.metrics.RecordClarification("chained")
		s.metrics.RecordAction("resolve", "clarification")
		return &datatypes.PreviewResponse{
			Status:        datatypes.PreviewStatusClarification,
			Clarification: clarificationView(chained),
			TopologyStale: stale,
		}, nil
	}

	// Terminal outcome either way: the clarification is spent.
	if err := s.store.Delete(rec.ID); err != nil {
		return nil, fmt.Errorf("retire clarification %s: %w", rec.ID, err)
	}
	s.metrics.RecordClarification("resolved")

	if res.feedback != "" {
		s.metrics.RecordAction("resolve", "feedback")
		return &datatypes.PreviewResponse{
			Status:        datatypes.PreviewStatusFeedback,
			Feedback:      res.feedback,
			TopologyStale: stale,
		}, nil
	}

	s.metrics.RecordAction("resolve", "resolved")
	return &datatypes.PreviewResponse{
		Status:        datatypes.PreviewStatusResolved,
		Tasks:         taskViews(committask.Build(res.scopes, live)),
		TopologyStale: stale,
	}, nil
}

// =============================================================================
// Shared Finishing Steps
// =============================================================================

// finish converts a resolution into the response, storing a clarification
// record when one is needed.
func (s *ActionService) finish(_ context.Context, operation string, state *topology.State,
	payload map[string]any, res resolution, clientID, role string) (*datatypes.PreviewResponse, error) {

	if res.clarification != nil {
		rec, err := s.createRecord(payload, state, state.Hash(), res.clarification, clientID, role)
		if err != nil {
			return nil, err
		}
		if _, err := s.store.Create(rec); err != nil {
			return nil, fmt.Errorf("store clarification: %w", err)
		}
		s.metrics.RecordClarification("created")
		s.metrics.RecordAction(operation, "clarification")
		slog.Info("clarification created",
			"clarificationId", rec.ID, "title", rec.Title, "options", len(rec.Options))
		return &datatypes.PreviewResponse{
			Status:        datatypes.PreviewStatusClarification,
			Clarification: clarificationView(rec),
		}, nil
	}

	if res.feedback != "" {
		s.metrics.RecordAction(operation, "feedback")
		return &datatypes.PreviewResponse{
			Status:   datatypes.PreviewStatusFeedback,
			Feedback: res.feedback,
		}, nil
	}

	s.metrics.RecordAction(operation, "resolved")
	return &datatypes.PreviewResponse{
		Status: datatypes.PreviewStatusResolved,
		Tasks:  taskViews(committask.Build(res.scopes, state)),
	}, nil
}

// createRecord assembles a stored clarification, binding whatever identity
// the creating call supplied.
func (s *ActionService) createRecord(payload map[string]any, snapshot *topology.State, baseHash string,
	req *datatypes.ClarificationRequest, clientID, role string) (*clarify.Record, error) {

	rec := &clarify.Record{
		ID:       uuid.NewString(),
		Payload:  payload,
		Snapshot: snapshot,
		BaseHash: baseHash,
		Apply:    req.Apply,
		Title:    req.Title,
		Options:  req.Options,
		Input:    req.Input,
	}
	if _, err := rec.ClientID.Assert(clientID); err != nil {
		return nil, err
	}
	if _, err := rec.Role.Assert(role); err != nil {
		return nil, err
	}
	return rec, nil
}

// decodeAction decodes the raw action into both its typed and generic
// forms. The typed form is validated; the generic form is what a
// clarification stores and later patches.
func decodeAction(raw json.RawMessage) (*datatypes.PlanningAction, map[string]any, error) {
	action := &datatypes.PlanningAction{}
	if err := json.Unmarshal(raw, action); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	if err := action.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAction, err)
	}
	return action, payload, nil
}

func clarificationView(rec *clarify.Record) *datatypes.ClarificationResponse {
	return &datatypes.ClarificationResponse{
		ClarificationID: rec.ID,
		Title:           rec.Title,
		Options:         rec.Options,
		Input:           rec.Input,
	}
}

func taskViews(tasks []committask.Task) []datatypes.CommitTaskView {
	views := make([]datatypes.CommitTaskView, len(tasks))
	for i, t := range tasks {
		views[i] = datatypes.CommitTaskView{Scope: string(t.Scope), Items: t.Items}
	}
	return views
}
