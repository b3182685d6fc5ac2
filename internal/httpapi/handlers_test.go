package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shophub/internal/activity"
	"shophub/internal/auth"
	"shophub/internal/config"
	"shophub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router *gin.Engine
	auth   *auth.Manager
	repo   *activity.MemoryRepo
}

func newFixture(t *testing.T, detail bool) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := auth.NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	require.NoError(t, err)
	repo := activity.NewMemoryRepo()
	h := Handlers{Auth: m, Activity: activity.NewService(repo)}

	r := gin.New()
	r.Use(Recovery(detail))
	r.GET("/", Root)
	r.GET("/api/health", Health)
	r.POST("/api/auth/token", h.IssueToken)
	r.GET("/api/boom", func(c *gin.Context) { panic("kaboom") })
	api := r.Group("/api", auth.RequireAccessToken(m))
	api.GET("/me", Me)
	api.GET("/admin/users/:id/activity", rbac.RequireAnyRole(rbac.RoleAdmin), h.UserActivity)
	r.NoRoute(NotFound)

	return fixture{router: r, auth: m, repo: repo}
}

func (f fixture) bearer(t *testing.T, userID, role string) string {
	t.Helper()
	pair, err := f.auth.IssuePair(time.Now(), userID, role)
	require.NoError(t, err)
	return "Bearer " + pair.AccessToken
}

func (f fixture) do(method, target, body, authz string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func seed(t *testing.T, repo *activity.MemoryRepo, actor string, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		require.NoError(t, repo.Insert(context.Background(), activity.Record{
			ID:         actor + "-" + string(rune('a'+i)),
			ActorID:    actor,
			Action:     "GET /api/products",
			Method:     http.MethodGet,
			Path:       "/api/products",
			StatusCode: http.StatusOK,
			Metadata:   activity.Metadata{DurationMs: int64(i)},
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

type listResponse struct {
	Success bool            `json:"success"`
	Logs    []activity.View `json:"logs"`
}

func TestUserActivity_AdminSeesNewestFirst(t *testing.T) {
	f := newFixture(t, false)
	seed(t, f.repo, "u1", 5)
	seed(t, f.repo, "u2", 2)

	w := f.do(http.MethodGet, "/api/admin/users/u1/activity?limit=3", "", f.bearer(t, "root", rbac.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Logs, 3)
	assert.Equal(t, "u1-e", resp.Logs[0].ID)
	assert.Equal(t, "u1-c", resp.Logs[2].ID)
	assert.True(t, resp.Logs[0].CreatedAt.After(resp.Logs[1].CreatedAt))
}

func TestUserActivity_DefaultLimitAndEmpty(t *testing.T) {
	f := newFixture(t, false)
	seed(t, f.repo, "u1", 2)

	w := f.do(http.MethodGet, "/api/admin/users/nobody/activity", "", f.bearer(t, "root", rbac.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"logs":[]}`, w.Body.String())
}

func TestUserActivity_RejectsBadLimit(t *testing.T) {
	f := newFixture(t, false)
	w := f.do(http.MethodGet, "/api/admin/users/u1/activity?limit=abc", "", f.bearer(t, "root", rbac.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserActivity_NonAdminForbidden(t *testing.T) {
	f := newFixture(t, false)
	seed(t, f.repo, "u1", 1)

	w := f.do(http.MethodGet, "/api/admin/users/u1/activity", "", f.bearer(t, "u1", rbac.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodGet, "/api/admin/users/u1/activity", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSystemRoutes(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","message":"Server is running"}`, w.Body.String())

	w = f.do(http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	w = f.do(http.MethodGet, "/api/missing", "", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, w.Body.String())
}

func TestRecovery_DetailOnlyWhenEnabled(t *testing.T) {
	w := newFixture(t, false).do(http.MethodGet, "/api/boom", "", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong!"}`, w.Body.String())

	w = newFixture(t, true).do(http.MethodGet, "/api/boom", "", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Something went wrong!","error":"kaboom"}`, w.Body.String())
}

func TestIssueTokenAndMe(t *testing.T) {
	f := newFixture(t, false)

	w := f.do(http.MethodPost, "/api/auth/token", `{"user_id":"u9","role":"seller"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var pair struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)

	w = f.do(http.MethodGet, "/api/me", "", "Bearer "+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u9","role":"seller"}`, w.Body.String())

	w = f.do(http.MethodPost, "/api/auth/token", `{"user_id":"u9","role":"root"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
