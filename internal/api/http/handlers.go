// Package http contains the gin handlers of the storage API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/userstore/internal/api/middleware"
	"github.com/GriffinCanCode/userstore/internal/domain/storage"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/userstore/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/userstore/internal/shared/paths"
)

// SessionCookie is the name of the browser session cookie.
const SessionCookie = "pga4_session"

// Handlers serves the HTTP API.
type Handlers struct {
	resolver   *storage.Resolver
	urls       paths.URLResolver
	metrics    *monitoring.Metrics
	logger     *logging.Logger
	serverMode bool
}

// NewHandlers creates the handler set.
func NewHandlers(resolver *storage.Resolver, urls paths.URLResolver, metrics *monitoring.Metrics, logger *logging.Logger, serverMode bool) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		resolver:   resolver,
		urls:       urls,
		metrics:    metrics,
		logger:     logger,
		serverMode: serverMode,
	}
}

// Health reports liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BrowserIndex is the landing route of the UI. It issues the session cookie,
// scoped to the application's mount point.
func (h *Handlers) BrowserIndex(c *gin.Context) {
	cookiePath, err := paths.CookiePath(h.urls)
	if err != nil {
		h.logger.Error("Failed to resolve cookie path", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve cookie path"})
		return
	}

	if _, err := c.Cookie(SessionCookie); err != nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, uuid.NewString(), 0, cookiePath, "", c.Request.TLS != nil, true)
	}

	u, _ := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"cookie_path":    cookiePath,
		"server_mode":    h.serverMode,
		"username":       u.Username,
		"shared_storage": h.resolver.SharedNames(),
	})
}
