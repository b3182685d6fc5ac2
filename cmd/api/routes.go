package main

import (
	"shophub/internal/auth"
	"shophub/internal/docs"
	"shophub/internal/httpapi"
	"shophub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, devRoutes bool) {
	// public
	r.GET("/", httpapi.Root)
	r.GET("/api/health", httpapi.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api-docs/*any", docs.Handler())

	// NOTE: token issuance without credentials; never mounted in production.
	if devRoutes {
		r.POST("/api/auth/token", h.IssueToken)
	}

	// protected API group
	api := r.Group("/api")
	api.Use(auth.RequireAccessToken(h.Auth))
	{
		api.GET("/me", httpapi.Me)

		// ADMIN routes
		admin := api.Group("/admin")
		admin.Use(rbac.RequireAnyRole(rbac.RoleAdmin))
		{
			admin.GET("/users/:id/activity", h.UserActivity)
		}
	}

	r.NoRoute(httpapi.NotFound)
}
