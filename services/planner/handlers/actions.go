// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides the HTTP handlers of the planner service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/RailOpsLocal/services/planner/clarify"
	"github.com/AleutianAI/RailOpsLocal/services/planner/datatypes"
	"github.com/AleutianAI/RailOpsLocal/services/planner/middleware"
	"github.com/AleutianAI/RailOpsLocal/services/planner/services"
)

// HandleActionPreview serves POST /v1/planning/actions/preview.
func HandleActionPreview(svc *services.ActionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.PreviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identity := middleware.GetIdentity(c)
		resp, err := svc.Preview(c.Request.Context(), &req, identity.ClientID, identity.Role)
		if err != nil {
			writeActionError(c, "preview", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleActionResolve serves POST /v1/planning/actions/resolve.
func HandleActionResolve(svc *services.ActionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ResolveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		identity := middleware.GetIdentity(c)
		resp, err := svc.Resolve(c.Request.Context(), &req, identity.ClientID, identity.Role)
		if err != nil {
			writeActionError(c, "resolve", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// writeActionError maps service errors onto HTTP responses. Ownership
// violations are access denials; a missing or expired clarification is a
// retryable not-found; everything else is internal.
func writeActionError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, clarify.ErrOwnership):
		c.JSON(http.StatusForbidden, gin.H{"error": "this clarification belongs to a different client"})
	case errors.Is(err, services.ErrClarificationNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "clarification not found or expired, please retry your request",
		})
	default:
		slog.Error("action processing failed", "operation", operation, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "action processing failed"})
	}
}
