// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/RailOpsLocal/services/planner/handlers"
	"github.com/AleutianAI/RailOpsLocal/services/planner/middleware"
	"github.com/AleutianAI/RailOpsLocal/services/planner/services"
	"github.com/AleutianAI/RailOpsLocal/services/planner/topology"
)

// SetupRoutes registers every planner endpoint on the router. reload may be
// nil when the topology source has no reloadable backing file.
func SetupRoutes(router *gin.Engine, svc *services.ActionService,
	source topology.Source, importLog *topology.ImportLog, reload func() error) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.IdentityMiddleware())
	{
		planning := v1.Group("/planning")
		{
			actions := planning.Group("/actions")
			{
				actions.POST("/preview", handlers.HandleActionPreview(svc))
				actions.POST("/resolve", handlers.HandleActionResolve(svc))
			}

			topo := planning.Group("/topology")
			{
				for path, handler := range handlers.TopologyListHandlers(source) {
					topo.GET("/"+path, handler)
				}
				topo.POST("/import/events", handlers.HandleImportEvent(importLog, reload))
				topo.GET("/import/events", handlers.HandleListImportEvents(importLog))
			}
		}
	}
}
