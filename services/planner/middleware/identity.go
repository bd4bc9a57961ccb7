// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the planner service.
//
// The identity middleware extracts the caller-supplied client id and role
// headers and stores them in the Gin context for downstream handlers.
// These values are not authenticated: the service only checks them for
// consistency when a clarification is resumed, as a safeguard against one
// browser tab accidentally answering another tab's question.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Header names for the caller-supplied identity.
const (
	HeaderClientID = "X-Aleutian-Client-Id"
	HeaderRole     = "X-Aleutian-Role"
)

// identityKey is the context key for storing the Identity.
const identityKey = "railops_client_identity"

// Identity is the caller-supplied client identity. Either field may be
// empty; empty fields skip ownership checks entirely.
type Identity struct {
	ClientID string
	Role     string
}

// IdentityMiddleware extracts the identity headers into the Gin context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, Identity{
			ClientID: strings.TrimSpace(c.GetHeader(HeaderClientID)),
			Role:     strings.TrimSpace(c.GetHeader(HeaderRole)),
		})
		c.Next()
	}
}

// GetIdentity retrieves the identity stored by IdentityMiddleware. Returns
// a zero Identity when the middleware did not run.
func GetIdentity(c *gin.Context) Identity {
	if v, exists := c.Get(identityKey); exists {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
