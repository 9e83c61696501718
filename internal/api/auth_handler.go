package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/auth"
	"civiguard-backend-go/internal/core"
)

// OAuthProvider is the authorization-code flow of the identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleProfile, error)
}

// TokenIssuer signs session tokens for internal user IDs.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// AuthHandler handles the Google sign-in handshake and session introspection.
type AuthHandler struct {
	provider    OAuthProvider
	states      auth.StateStore
	tokens      TokenIssuer
	userService core.UserService
	frontendURL string
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	provider OAuthProvider,
	states auth.StateStore,
	tokens TokenIssuer,
	us core.UserService,
	frontendURL string,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider:    provider,
		states:      states,
		tokens:      tokens,
		userService: us,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// GoogleLogin handles GET /api/auth/google by redirecting to the consent screen.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := h.states.Issue(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to issue OAuth state", zap.Error(err))
		h.redirectFailure(c)
		return
	}
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GoogleCallback handles GET /api/auth/google/callback. Every outcome is a
// redirect to the frontend, carrying either the session token or an error flag.
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	ctx := c.Request.Context()

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Info("Google sign-in was not completed", zap.String("error", providerErr))
		h.redirectFailure(c)
		return
	}
	if err := h.states.Consume(ctx, c.Query("state")); err != nil {
		h.logger.Warn("Rejected OAuth callback state", zap.Error(err))
		h.redirectFailure(c)
		return
	}
	code := c.Query("code")
	if code == "" {
		h.logger.Warn("OAuth callback without code")
		h.redirectFailure(c)
		return
	}

	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("Google code exchange failed", zap.Error(err))
		h.redirectFailure(c)
		return
	}

	user, created, err := h.userService.GetOrCreate(ctx, core.GoogleIdentity{
		Subject: profile.Subject,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		h.logger.Error("Failed to resolve user for Google identity", zap.Error(err))
		h.redirectFailure(c)
		return
	}

	token, _, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("Failed to issue session token", zap.String("user_id", user.ID), zap.Error(err))
		h.redirectFailure(c)
		return
	}

	h.logger.Info("User signed in", zap.String("user_id", user.ID), zap.Bool("created", created))
	c.Redirect(http.StatusFound, h.frontendURL+"/auth/callback?token="+url.QueryEscape(token))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MeResponse{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
		Avatar: user.Avatar,
	})
}

func (h *AuthHandler) redirectFailure(c *gin.Context) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error=auth_failed")
}
