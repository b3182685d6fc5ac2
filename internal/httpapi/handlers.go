package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shophub/internal/activity"
	"shophub/internal/auth"
	"shophub/internal/rbac"
	"shophub/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Activity *activity.Service
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": msg})
}

// --- System ---

func Root(c *gin.Context) {
	c.String(http.StatusOK, "ShopHub API is running")
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}

func NotFound(c *gin.Context) {
	fail(c, http.StatusNotFound, "Route not found")
}

// Recovery turns a handler panic into the generic 500 body.
// The panic value is exposed only when detail is true.
func Recovery(detail bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		body := gin.H{"success": false, "message": "Something went wrong!"}
		if detail {
			body["error"] = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// --- Auth ---

type tokenRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// IssueToken issues a JWT token pair for an arbitrary user.
//
// NOTE: development helper only; it is mounted outside production and checks no credentials.
func (h Handlers) IssueToken(c *gin.Context) {
	if h.Auth == nil {
		fail(c, http.StatusInternalServerError, "auth not configured")
		return
	}
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || !rbac.IsKnownRole(req.Role) {
		fail(c, http.StatusBadRequest, "user_id and a valid role are required")
		return
	}
	pair, err := h.Auth.IssuePair(time.Now(), req.UserID, req.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, "token issuance failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"user_id": uid, "role": role})
}

// --- Admin ---

// UserActivity lists the recent activity of the user in :id, newest first.
func (h Handlers) UserActivity(c *gin.Context) {
	if h.Activity == nil {
		fail(c, http.StatusInternalServerError, "activity not configured")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	userID := c.Param("id")
	logs, err := h.Activity.ListByActor(c.Request.Context(), userID, limit)
	if err != nil {
		logger.FromGin(c).Error("activity list failed", "user_id", userID, "err", err)
		fail(c, http.StatusInternalServerError, "Failed to fetch activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": activity.Views(logs)})
}
