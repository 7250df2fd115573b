package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/identity"
	"github.com/Domenick1991/tutorbooking/internal/metrics"
)

type Handlers struct {
	Catalog  *CatalogHandler
	Sessions *SessionHandler
	Portal   *PortalHandler
	Admin    *AdminHandler
	Auth     *AuthHandler
}

// NewRouter wires every route. Identity and metrics may be nil in tests.
func NewRouter(h Handlers, ident *identity.Service, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	if m != nil {
		r.Use(m.Middleware())
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	h.Catalog.Register(v1)
	h.Sessions.Register(v1.Group("/sessions"))
	h.Auth.Register(v1.Group("/auth"))

	if ident == nil {
		return r
	}
	authed := v1.Group("", ident.Middleware())
	h.Auth.RegisterAuthenticated(authed.Group("/auth"))
	h.Portal.Register(authed.Group("/portal", identity.Require(identity.CanManageSlots)))
	h.Admin.Register(authed.Group("/admin", identity.Require(identity.CanAdminister)))
	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", c.Writer.Status()),
			)
			return
		}
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}
