package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
	"github.com/Domenick1991/tutorbooking/internal/service/schedule"
)

// PortalHandler serves the tutor portal: tutor profiles and slot publishing.
type PortalHandler struct {
	schedule schedule.UseCase
	logger   *zap.Logger
}

func NewPortalHandler(svc schedule.UseCase, logger *zap.Logger) *PortalHandler {
	return &PortalHandler{schedule: svc, logger: logger}
}

func (h *PortalHandler) Register(router *gin.RouterGroup) {
	router.POST("/tutors", h.createTutor)
	router.GET("/slots", h.listSlots)
	router.POST("/slots", h.createSlot)
	router.DELETE("/slots/:id", h.deleteSlot)
}

func (h *PortalHandler) createTutor(c *gin.Context) {
	var req schedule.CreateTutorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tutor, err := h.schedule.CreateTutor(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tutor)
}

func (h *PortalHandler) listSlots(c *gin.Context) {
	filter := repository.SlotFilter{
		TutorID:      c.Query("tutor_id"),
		DeliveryMode: domain.DeliveryMode(c.Query("delivery_mode")),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := domain.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.Date = day
	}

	slots, err := h.schedule.ListSlots(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

func (h *PortalHandler) createSlot(c *gin.Context) {
	var req schedule.CreateSlotInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slot, err := h.schedule.CreateSlot(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

func (h *PortalHandler) deleteSlot(c *gin.Context) {
	if err := h.schedule.DeleteSlot(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
