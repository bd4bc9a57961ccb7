// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// listHandler wraps one topology collection read into a JSON endpoint.
func listHandler[E any](list func() []E) gin.HandlerFunc {
	return func(c *gin.Context) {
		items := list()
		if items == nil {
			items = []E{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

// TopologyListHandlers returns the read-only listing endpoints for every
// topology collection, keyed by URL path segment.
func TopologyListHandlers(source topology.Source) map[string]gin.HandlerFunc {
	return map[string]gin.HandlerFunc{
		"operational-points": listHandler(source.ListOperationalPoints),
		"sections-of-line":   listHandler(source.ListSectionsOfLine),
		"personnel-sites":    listHandler(source.ListPersonnelSites),
		"replacement-stops":  listHandler(source.ListReplacementStops),
		"replacement-routes": listHandler(source.ListReplacementRoutes),
		"replacement-edges":  listHandler(source.ListReplacementEdges),
		"op-stop-links":      listHandler(source.ListOpStopLinks),
		"transfer-edges":     listHandler(source.ListTransferEdges),
	}
}

// importEventRequest mirrors the event payload the topology import
// pipeline posts between phases.
type importEventRequest struct {
	Status  string   `json:"status" binding:"required"`
	Kinds   []string `json:"kinds,omitempty"`
	Message string   `json:"message,omitempty"`
	Source  string   `json:"source,omitempty"`
}

// HandleImportEvent serves POST /v1/planning/topology/import/events.
// A completed event triggers a snapshot reload so the fingerprint used for
// clarification staleness reflects the freshly imported topology.
func HandleImportEvent(log *topology.ImportLog, reload func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req importEventRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		event := log.Record(topology.ImportEvent{
			Status:  req.Status,
			Kinds:   req.Kinds,
			Message: req.Message,
			Source:  req.Source,
		})
		if req.Status == "completed" && reload != nil {
			if err := reload(); err != nil {
				slog.Error("topology reload after import failed", "error", err)
			}
		}
		c.JSON(http.StatusOK, event)
	}
}

// HandleListImportEvents serves GET /v1/planning/topology/import/events.
func HandleListImportEvents(log *topology.ImportLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		events := log.Recent()
		c.JSON(http.StatusOK, gin.H{"items": events, "count": len(events)})
	}
}
