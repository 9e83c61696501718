package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/config"
	"civiguard-backend-go/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClientHandler serves the SPA bundle, its bootstrap config and the health check.
type ClientHandler struct {
	appConfig *config.Config
	store     Pinger
	logger    *zap.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(appConfig *config.Config, store Pinger, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{appConfig: appConfig, store: store, logger: logger}
}

// ClientConfig handles GET /api/client-config
func (h *ClientHandler) ClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ClientConfigResponse{
		DefaultLocation: h.appConfig.DefaultLocation(),
		MapBounds:       h.appConfig.MapBounds,
		Categories:      models.Categories,
		Priorities:      models.Priorities,
		Statuses:        models.Statuses,
		LoginURL:        "/api/auth/google",
		AIEnabled:       h.appConfig.AIProvider != config.AIProviderNone,
		PublicByDefault: h.appConfig.PublicByDefault,
	})
}

// Health handles GET /health
func (h *ClientHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "message": "Store is unreachable."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "CiviGuard backend is healthy."})
}

// NoRoute answers unmatched requests. API paths get a JSON 404; other GETs
// are served from the SPA bundle, falling back to index.html so client-side
// routes resolve.
func (h *ClientHandler) NoRoute(c *gin.Context) {
	path := c.Request.URL.Path
	if h.appConfig.StaticDir == "" || isAPIPath(path) || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found"})
		return
	}

	root := h.appConfig.StaticDir
	file := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+path)))
	if info, err := os.Stat(file); err == nil && !info.IsDir() {
		c.File(file)
		return
	}

	index := filepath.Join(root, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not Found"})
		return
	}
	c.File(index)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/") || path == "/health"
}
