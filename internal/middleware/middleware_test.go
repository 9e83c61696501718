package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"civiguard-backend-go/internal/auth"
	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type userMap map[string]*models.User

func (m userMap) GetByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user with ID '%s' not found: %w", id, db.ErrNotFound)
}

// failingUsers simulates an unreachable user store.
type failingUsers struct{}

func (failingUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, errors.New("firestore: connection refused")
}

var (
	tokens = auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	users  = userMap{
		"u1": {ID: "u1", Name: "Asha", Role: models.RoleCitizen},
		"a1": {ID: "a1", Name: "Admin", Role: models.RoleAdmin},
	}
)

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := tokens.Issue(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		if user, ok := CurrentUser(c); ok {
			c.String(http.StatusOK, user.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyToken(t *testing.T) {
	m := NewAuthMiddleware(tokens, users, zap.NewNop())
	r := newRouter(m.VerifyToken())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized, body: `{"error":"Unauthorized"}`},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, body: `{"error":"Unauthorized"}`},
		{name: "garbage token", header: "Bearer nope", status: http.StatusUnauthorized, body: `{"error":"Unauthorized"}`},
		{name: "unknown user", header: bearer(t, "ghost"), status: http.StatusUnauthorized, body: `{"error":"Unauthorized"}`},
		{name: "valid", header: bearer(t, "u1"), status: http.StatusOK, body: "u1"},
		{name: "lowercase scheme", header: "bearer " + bearer(t, "a1")[len("Bearer "):], status: http.StatusOK, body: "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.body, w.Body.String())
		})
	}
}

func TestOptionalToken(t *testing.T) {
	m := NewAuthMiddleware(tokens, users, zap.NewNop())
	r := newRouter(m.OptionalToken())

	assert.Equal(t, "anonymous", do(r, "").Body.String())
	assert.Equal(t, "anonymous", do(r, "Bearer expired-or-bad").Body.String())
	assert.Equal(t, "u1", do(r, bearer(t, "u1")).Body.String())
}

func TestUserStoreFailureIsNotUnauthorized(t *testing.T) {
	obsCore, logs := observer.New(zapcore.ErrorLevel)
	m := NewAuthMiddleware(tokens, failingUsers{}, zap.New(obsCore))

	for name, handler := range map[string]gin.HandlerFunc{"required": m.VerifyToken(), "optional": m.OptionalToken()} {
		t.Run(name, func(t *testing.T) {
			w := do(newRouter(handler), bearer(t, "u1"))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"An unexpected internal server error occurred."}`, w.Body.String())
		})
	}
	assert.Equal(t, 2, logs.Len())

	// invalid credentials still short-circuit before the store is consulted
	r := newRouter(m.VerifyToken())
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer nope").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Token abc").Code)
}

func TestMissingUserFromServiceIsUnauthorized(t *testing.T) {
	lookup := userLookupFunc(func(context.Context, string) (*models.User, error) {
		return nil, fmt.Errorf("%w: user with ID 'gone'", core.ErrUserNotFound)
	})
	m := NewAuthMiddleware(tokens, lookup, zap.NewNop())

	assert.Equal(t, http.StatusUnauthorized, do(newRouter(m.VerifyToken()), bearer(t, "gone")).Code)
	assert.Equal(t, "anonymous", do(newRouter(m.OptionalToken()), bearer(t, "gone")).Body.String())
}

type userLookupFunc func(ctx context.Context, id string) (*models.User, error)

func (f userLookupFunc) GetByID(ctx context.Context, id string) (*models.User, error) {
	return f(ctx, id)
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(tokens, users, zap.NewNop())
	r := newRouter(m.VerifyToken(), RequireRole(models.RoleAdmin, models.RoleAuthority))

	assert.Equal(t, http.StatusForbidden, do(r, bearer(t, "u1")).Code)
	assert.Equal(t, http.StatusOK, do(r, bearer(t, "a1")).Code)

	unguarded := newRouter(RequireRole(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, do(unguarded, "").Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	obsCore, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryMiddleware(zap.New(obsCore)))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := do(r, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

func TestRequestLogger(t *testing.T) {
	obsCore, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(obsCore)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok?code=secret&state=xyz&page=2", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	query := entries[0].ContextMap()["query"]
	assert.Equal(t, "code=REDACTED&page=2&state=REDACTED", query)
}

func TestClientInfo(t *testing.T) {
	var got core.ClientInfo
	r := gin.New()
	r.Use(ClientInfo())
	r.GET("/", func(c *gin.Context) {
		got, _ = core.ClientInfoFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", "civiguard-web/1.0")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, core.ClientInfo{IPAddress: "203.0.113.7", UserAgent: "civiguard-web/1.0"}, got)
}
