package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/catalog"
	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/pricing"
)

// Catalog is the read side the handlers need. *catalog.Catalog satisfies it.
type Catalog interface {
	Available(f catalog.Filter) []domain.Slot
	PackageEligible(tutorID string, mode domain.DeliveryMode) []domain.Slot
	Slot(id string) (domain.Slot, bool)
	Tutor(id string) (domain.Tutor, bool)
	Tutors() []domain.Tutor
	Booking(id string) (domain.Booking, bool)
	BookingViews() []catalog.BookingView
}

type CatalogHandler struct {
	catalog Catalog
	pricing *pricing.Calculator
	logger  *zap.Logger
}

func NewCatalogHandler(cat Catalog, calc *pricing.Calculator, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, pricing: calc, logger: logger}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/tutors", h.tutors)
	router.GET("/prices", h.prices)
	router.GET("/quote", h.quote)
	router.GET("/slots", h.slots)
	router.GET("/slots/package-eligible", h.packageEligible)
}

func (h *CatalogHandler) tutors(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Tutors())
}

func (h *CatalogHandler) prices(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricing.Table())
}

func (h *CatalogHandler) quote(c *gin.Context) {
	hours := 1
	if raw := c.Query("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
			return
		}
		hours = n
	}

	q := h.pricing.Compute(pricing.Request{
		Mode:         domain.BookingMode(c.Query("mode")),
		DeliveryMode: domain.DeliveryMode(c.Query("delivery_mode")),
		Hours:        hours,
	})
	c.JSON(http.StatusOK, q)
}

func (h *CatalogHandler) slots(c *gin.Context) {
	f := catalog.Filter{
		TutorID:      c.Query("tutor_id"),
		DeliveryMode: domain.DeliveryMode(c.Query("delivery_mode")),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := domain.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		f.Date = day
	}
	c.JSON(http.StatusOK, h.catalog.Available(f))
}

func (h *CatalogHandler) packageEligible(c *gin.Context) {
	slots := h.catalog.PackageEligible(c.Query("tutor_id"), domain.DeliveryMode(c.Query("delivery_mode")))
	c.JSON(http.StatusOK, slots)
}
