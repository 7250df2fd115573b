package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/identity"
)

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.Token, error)
	SignOut(ctx context.Context, raw string) error
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(auth Authenticator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/sign-in", h.signIn)
	router.POST("/sign-out", h.signOut)
}

// RegisterAuthenticated adds routes that run behind the identity middleware.
func (h *AuthHandler) RegisterAuthenticated(router *gin.RouterGroup) {
	router.GET("/me", h.me)
}

func (h *AuthHandler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	token, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) signOut(c *gin.Context) {
	raw, ok := identity.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
		return
	}
	if err := h.auth.SignOut(c.Request.Context(), raw); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) me(c *gin.Context) {
	p, ok := identity.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, p)
}
