package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/service/reservation"
	"github.com/Domenick1991/tutorbooking/internal/service/schedule"
)

type AdminHandler struct {
	catalog      Catalog
	reservations reservation.UseCase
	schedule     schedule.UseCase
	logger       *zap.Logger
}

func NewAdminHandler(cat Catalog, reservations reservation.UseCase, svc schedule.UseCase, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{catalog: cat, reservations: reservations, schedule: svc, logger: logger}
}

func (h *AdminHandler) Register(router *gin.RouterGroup) {
	router.GET("/bookings", h.bookings)
	router.GET("/bookings/:id", h.booking)
	router.DELETE("/bookings/:id", h.cancelBooking)
	router.DELETE("/tutors/:id", h.deleteTutor)
	router.POST("/reset", h.reset)
}

func (h *AdminHandler) bookings(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.BookingViews())
}

func (h *AdminHandler) booking(c *gin.Context) {
	id := c.Param("id")
	b, ok := h.catalog.Booking(id)
	if !ok {
		respondError(c, h.logger, fmt.Errorf("booking %s: %w", id, domain.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *AdminHandler) cancelBooking(c *gin.Context) {
	if err := h.reservations.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) deleteTutor(c *gin.Context) {
	if err := h.schedule.DeleteTutor(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) reset(c *gin.Context) {
	if err := h.schedule.ResetAll(c.Request.Context()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
