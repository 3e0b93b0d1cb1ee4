package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clubhub/internal/cache"
	"clubhub/internal/config"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testEnv struct {
	t      *testing.T
	db     *gorm.DB
	mr     *miniredis.Miniredis
	server *Server
	app    *fiber.App
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	cfg := &config.Config{
		JWTSecret:    testSecret,
		FeatureFlags: flags,
		UploadDir:    t.TempDir(),
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testEnv{t: t, db: db, mr: mr, server: s, app: s.NewApp()}
}

func (e *testEnv) token(u *models.User) string {
	e.t.Helper()
	tok, err := middleware.GenerateToken(testSecret, u.ID, time.Hour)
	require.NoError(e.t, err)
	return tok
}

// do sends a JSON request and decodes a JSON object response. body may be nil.
func (e *testEnv) do(method, path, token string, body any) (int, map[string]any) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(strings.TrimSpace(string(raw)), "{") {
		require.NoError(e.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (e *testEnv) raw(req *http.Request) (*http.Response, []byte) {
	e.t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp, raw
}

func noticeMessage(body map[string]any) string {
	notice, _ := body["notice"].(map[string]any)
	msg, _ := notice["message"].(string)
	return msg
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t, "")

	status, body := env.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "up", body["status"])

	status, body = env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "healthy", checks["redis"])

	env.mr.Close()
	status, body = env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, "")
	env.do(http.MethodGet, "/health/live", "", nil)

	resp, raw := env.raw(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "go_goroutines")
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	env := newTestEnv(t, "")
	resp, _ := env.raw(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
}

func TestNewServerWithDeps_RequiresDB(t *testing.T) {
	_, err := NewServerWithDeps(&config.Config{}, nil, nil)
	assert.Error(t, err)
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{models.NewAccessDeniedError("no"), http.StatusForbidden},
		{models.NewConflictError("taken"), http.StatusConflict},
		{models.NewInternalError(io.EOF), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, mapServiceError(tt.err), tt.err.Error())
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "user ID", humanizeParam("userId"))
	assert.Equal(t, "club post ID", humanizeParam("clubPostId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}
