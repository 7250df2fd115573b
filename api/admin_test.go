package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/catalog"
	"github.com/Domenick1991/tutorbooking/internal/domain"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) Commit(ctx context.Context, req domain.ReservationRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockReservationUseCase) Cancel(ctx context.Context, bookingID string) error {
	return m.Called(ctx, bookingID).Error(0)
}

func TestAdminHandler_cancelBooking(t *testing.T) {
	mockReservations := &MockReservationUseCase{}
	handler := NewAdminHandler(catalog.New(), mockReservations, &MockScheduleUseCase{}, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}
	c.Request = httptest.NewRequest("DELETE", "/admin/bookings/b1", nil)

	mockReservations.On("Cancel", c.Request.Context(), "b1").Return(nil)

	handler.cancelBooking(c)
	c.Writer.WriteHeaderNow() // flush status as gin's engine does after the handler returns

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockReservations.AssertExpectations(t)
}

func TestAdminHandler_reset_failure(t *testing.T) {
	mockSchedule := &MockScheduleUseCase{}
	handler := NewAdminHandler(catalog.New(), &MockReservationUseCase{}, mockSchedule, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/admin/reset", nil)

	mockSchedule.On("ResetAll", c.Request.Context()).Return(errors.New("connection refused"))

	handler.reset(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	mockSchedule.AssertExpectations(t)
}

func TestAdminHandler_bookings(t *testing.T) {
	cat := catalog.New()
	cat.ApplyTutors([]domain.Tutor{{ID: "t1", Name: "Valentina"}})
	cat.ApplyBookings([]domain.Booking{{ID: "b1", TutorID: "t1", Mode: domain.BookingModeIndividual, Hours: 1}})
	handler := NewAdminHandler(cat, &MockReservationUseCase{}, &MockScheduleUseCase{}, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/admin/bookings", nil)

	handler.bookings(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"b1"`)
	assert.Contains(t, w.Body.String(), `"name":"Valentina"`)
}
