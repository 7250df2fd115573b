package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/selection"
	"github.com/Domenick1991/tutorbooking/internal/session"
)

var errSubmitLocked = errors.New("api: this session is already being submitted")

// SubmitLocker serialises submissions of one session across replicas.
// cache.RedisCache satisfies it.
type SubmitLocker interface {
	AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, sessionID string) error
}

type SessionHandler struct {
	sessions  *session.Manager
	catalog   Catalog
	committer selection.Committer
	locker    SubmitLocker
	lockTTL   time.Duration
	logger    *zap.Logger
}

func NewSessionHandler(
	sessions *session.Manager,
	cat Catalog,
	committer selection.Committer,
	locker SubmitLocker,
	lockTTL time.Duration,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		catalog:   cat,
		committer: committer,
		locker:    locker,
		lockTTL:   lockTTL,
		logger:    logger,
	}
}

func (h *SessionHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.delete)
	router.PUT("/:id/mode", h.setMode)
	router.POST("/:id/select", h.selectSlot)
	router.PUT("/:id/package", h.configurePackage)
	router.POST("/:id/toggle", h.toggle)
	router.POST("/:id/continue", h.continueToConfirm)
	router.POST("/:id/back", h.back)
	router.POST("/:id/reset", h.reset)
	router.POST("/:id/submit", h.submit)
}

type sessionResponse struct {
	ID   string         `json:"id"`
	View selection.View `json:"selection"`
}

type modeRequest struct {
	Mode domain.BookingMode `json:"mode" binding:"required"`
}

type slotRequest struct {
	SlotID string `json:"slot_id" binding:"required"`
}

type packageRequest struct {
	Hours        *int                 `json:"hours"`
	TutorID      *string              `json:"tutor_id"`
	DeliveryMode *domain.DeliveryMode `json:"delivery_mode"`
}

type toggleResponse struct {
	Selected bool           `json:"selected"`
	View     selection.View `json:"selection"`
}

type submitResponse struct {
	Booking *domain.Booking `json:"booking"`
	View    selection.View  `json:"selection"`
}

func (h *SessionHandler) create(c *gin.Context) {
	id, m := h.sessions.Create()
	c.JSON(http.StatusCreated, sessionResponse{ID: id, View: m.View()})
}

func (h *SessionHandler) machine(c *gin.Context) (*selection.Machine, bool) {
	m, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return m, true
}

func (h *SessionHandler) get(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) delete(c *gin.Context) {
	h.sessions.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) setMode(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := m.SetMode(req.Mode); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) lookupSlot(c *gin.Context) (domain.Slot, bool) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return domain.Slot{}, false
	}
	slot, ok := h.catalog.Slot(req.SlotID)
	if !ok {
		respondError(c, h.logger, fmt.Errorf("slot %s: %w", req.SlotID, domain.ErrNotFound))
		return domain.Slot{}, false
	}
	return slot, true
}

func (h *SessionHandler) selectSlot(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	slot, ok := h.lookupSlot(c)
	if !ok {
		return
	}
	if err := m.SelectSlot(slot); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) configurePackage(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := m.ConfigurePackage(selection.PackageConfig{
		Hours:        req.Hours,
		TutorID:      req.TutorID,
		DeliveryMode: req.DeliveryMode,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) toggle(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	slot, ok := h.lookupSlot(c)
	if !ok {
		return
	}
	selected, err := m.Toggle(slot)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toggleResponse{Selected: selected, View: m.View()})
}

func (h *SessionHandler) continueToConfirm(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	if err := m.Continue(); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) back(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	m.Back()
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) reset(c *gin.Context) {
	m, ok := h.machine(c)
	if !ok {
		return
	}
	m.Reset()
	c.JSON(http.StatusOK, sessionResponse{ID: c.Param("id"), View: m.View()})
}

func (h *SessionHandler) submit(c *gin.Context) {
	id := c.Param("id")
	m, ok := h.machine(c)
	if !ok {
		return
	}
	var contact selection.Contact
	if err := c.ShouldBindJSON(&contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// no lock round-trip for a selection that cannot be submitted yet
	if m.State() != selection.StateReady {
		respondError(c, h.logger, selection.ErrNotReady)
		return
	}

	ctx := c.Request.Context()
	if h.locker != nil {
		acquired, err := h.locker.AcquireSubmitLock(ctx, id, h.lockTTL)
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("acquire submit lock: %w", err))
			return
		}
		if !acquired {
			respondError(c, h.logger, errSubmitLocked)
			return
		}
		defer func() {
			if err := h.locker.ReleaseSubmitLock(context.WithoutCancel(ctx), id); err != nil {
				h.logger.Warn("release submit lock failed", zap.String("session_id", id), zap.Error(err))
			}
		}()
	}

	booking, err := m.Submit(ctx, contact, h.committer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, submitResponse{Booking: booking, View: m.View()})
}
