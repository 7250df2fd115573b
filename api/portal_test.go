package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
	"github.com/Domenick1991/tutorbooking/internal/service/schedule"
)

type MockScheduleUseCase struct {
	mock.Mock
}

func (m *MockScheduleUseCase) CreateTutor(ctx context.Context, input schedule.CreateTutorInput) (*domain.Tutor, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Tutor), args.Error(1)
}

func (m *MockScheduleUseCase) DeleteTutor(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleUseCase) CreateSlot(ctx context.Context, input schedule.CreateSlotInput) (*domain.Slot, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockScheduleUseCase) DeleteSlot(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockScheduleUseCase) ListSlots(ctx context.Context, filter repository.SlotFilter) ([]domain.Slot, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockScheduleUseCase) ResetAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestPortalHandler_createTutor(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewPortalHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := schedule.CreateTutorInput{Name: "Valentina"}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/portal/tutors", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateTutor", c.Request.Context(), input).
		Return(&domain.Tutor{ID: "t1", Name: "Valentina", Photo: domain.DefaultTutorPhoto}, nil)

	handler.createTutor(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var tutor domain.Tutor
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &tutor))
	assert.Equal(t, "t1", tutor.ID)
	mockService.AssertExpectations(t)
}

func TestPortalHandler_createSlot_invalidTime(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewPortalHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	input := schedule.CreateSlotInput{TutorID: "t1", Date: "2024-03-01", Start: "10:00", End: "09:00", DeliveryMode: domain.DeliveryVirtual}
	body, _ := json.Marshal(input)
	c.Request = httptest.NewRequest("POST", "/portal/slots", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateSlot", c.Request.Context(), input).Return(nil, domain.ErrInvalidSlotTime)

	handler.createSlot(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertExpectations(t)
}

func TestPortalHandler_deleteSlot(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", domain.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockScheduleUseCase{}
			handler := NewPortalHandler(mockService, zap.NewNop())

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: "s1"}}
			c.Request = httptest.NewRequest("DELETE", "/portal/slots/s1", nil)

			mockService.On("DeleteSlot", c.Request.Context(), "s1").Return(tt.err)

			handler.deleteSlot(c)
			c.Writer.WriteHeaderNow() // flush status as gin's engine does after the handler returns

			assert.Equal(t, tt.status, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestPortalHandler_listSlots(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewPortalHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/portal/slots?tutor_id=t1&date=2024-03-01&delivery_mode=virtual", nil)

	day, _ := domain.ParseDate("2024-03-01")
	filter := repository.SlotFilter{TutorID: "t1", Date: day, DeliveryMode: domain.DeliveryVirtual}
	mockService.On("ListSlots", c.Request.Context(), filter).Return([]domain.Slot{{ID: "s1"}}, nil)

	handler.listSlots(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var slots []domain.Slot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	assert.Len(t, slots, 1)
	mockService.AssertExpectations(t)
}

func TestPortalHandler_listSlots_badDate(t *testing.T) {
	mockService := &MockScheduleUseCase{}
	handler := NewPortalHandler(mockService, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/portal/slots?date=yesterday", nil)

	handler.listSlots(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "ListSlots", mock.Anything, mock.Anything)
}
