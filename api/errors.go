package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/identity"
	"github.com/Domenick1991/tutorbooking/internal/selection"
	"github.com/Domenick1991/tutorbooking/internal/service/reservation"
	"github.com/Domenick1991/tutorbooking/internal/session"
)

var errStatus = []struct {
	err    error
	status int
}{
	{domain.ErrSlotConflict, http.StatusConflict},
	{selection.ErrSubmitInFlight, http.StatusConflict},
	{errSubmitLocked, http.StatusConflict},

	{domain.ErrNotFound, http.StatusNotFound},
	{session.ErrNotFound, http.StatusNotFound},

	{domain.ErrMissingField, http.StatusBadRequest},
	{domain.ErrInvalidDate, http.StatusBadRequest},
	{domain.ErrInvalidSlotTime, http.StatusBadRequest},
	{domain.ErrInvalidMode, http.StatusBadRequest},
	{selection.ErrInvalidPackageSize, http.StatusBadRequest},
	{selection.ErrWrongMode, http.StatusBadRequest},

	{selection.ErrNoSlotSelected, http.StatusUnprocessableEntity},
	{selection.ErrNoTutorOrMode, http.StatusUnprocessableEntity},
	{selection.ErrWrongSlotCount, http.StatusUnprocessableEntity},
	{selection.ErrSlotNotEligible, http.StatusUnprocessableEntity},
	{selection.ErrSlotUnavailable, http.StatusUnprocessableEntity},
	{selection.ErrNotReady, http.StatusUnprocessableEntity},
	{selection.ErrMissingContact, http.StatusUnprocessableEntity},
	{reservation.ErrInvalidReservation, http.StatusUnprocessableEntity},

	{identity.ErrInvalidCredentials, http.StatusUnauthorized},
	{identity.ErrUnauthenticated, http.StatusUnauthorized},
}

func statusFor(err error) int {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// respondError writes err with its mapped status. Unmapped errors are logged and
// reported without detail.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
