package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/auth"
	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/db"
	"civiguard-backend-go/internal/models"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "userID"
)

// ErrorResponse mirrors api.ErrorResponse; it is redeclared here to avoid an import cycle.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLookup loads the user named by a verified token.
type UserLookup interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware authenticates requests carrying a self-issued bearer token.
type AuthMiddleware struct {
	tokens TokenParser
	users  UserLookup
	logger *zap.Logger
}

func NewAuthMiddleware(tokens TokenParser, users UserLookup, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

var (
	errNoToken      = errors.New("no bearer token")
	errHeaderFormat = errors.New("authorization header format must be 'Bearer {token}'")
)

// isCredentialError reports whether err means the caller is not authenticated,
// as opposed to the user store failing.
func isCredentialError(err error) bool {
	return errors.Is(err, errNoToken) ||
		errors.Is(err, errHeaderFormat) ||
		errors.Is(err, auth.ErrInvalidToken) ||
		errors.Is(err, core.ErrUserNotFound) ||
		errors.Is(err, db.ErrNotFound)
}

// authenticate resolves the request's bearer token to a user.
func (m *AuthMiddleware) authenticate(c *gin.Context) (*models.User, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errNoToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errHeaderFormat
	}

	claims, err := m.tokens.Parse(parts[1])
	if err != nil {
		return nil, err
	}
	user, err := m.users.GetByID(c.Request.Context(), claims.UserID())
	if err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyToken rejects the request with a bare 401 unless the bearer token is
// valid and names an existing user. A failing user store answers 500. The
// cause is only logged.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.authenticate(c)
		if err != nil {
			if !isCredentialError(err) {
				m.logger.Error("User lookup failed during authentication", zap.String("path", c.Request.URL.Path), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
				return
			}
			m.logger.Debug("Rejected request token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// OptionalToken attaches the user when a valid token is present and lets
// anonymous or invalid requests through unauthenticated. A failing user store
// answers 500 like VerifyToken.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := m.authenticate(c)
		switch {
		case err == nil:
			setUser(c, user)
		case !isCredentialError(err):
			m.logger.Error("User lookup failed during authentication", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
			return
		}
		c.Next()
	}
}

// RequireRole must run after VerifyToken.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Forbidden"})
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(ContextUserKey, user)
	c.Set(ContextUserIDKey, user.ID)
}

// CurrentUser returns the authenticated user, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
