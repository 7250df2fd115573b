package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/catalog"
	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/pricing"
	"github.com/Domenick1991/tutorbooking/internal/session"
)

type MockSubmitLocker struct {
	mock.Mock
}

func (m *MockSubmitLocker) AcquireSubmitLock(ctx context.Context, sessionID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, sessionID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmitLocker) ReleaseSubmitLock(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func readySession(t *testing.T) (*session.Manager, *catalog.Catalog, string) {
	t.Helper()
	day, err := domain.ParseDate("2024-03-01")
	require.NoError(t, err)
	slot := domain.Slot{ID: "s1", TutorID: "t1", Date: day, Start: "09:00", End: "10:00", DeliveryMode: domain.DeliveryInPerson}

	cat := catalog.New()
	cat.ApplySlots([]domain.Slot{slot})

	sessions := session.NewManager(pricing.NewCalculator(pricing.DefaultTable), time.Hour)
	id, m := sessions.Create()
	require.NoError(t, m.SelectSlot(slot))
	return sessions, cat, id
}

func submitContext(t *testing.T, id string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id}}
	body, _ := json.Marshal(testContact)
	c.Request = httptest.NewRequest("POST", "/sessions/"+id+"/submit", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestSessionHandler_submit_locked(t *testing.T) {
	sessions, cat, id := readySession(t)
	committer := &MockReservationUseCase{}
	locker := &MockSubmitLocker{}
	handler := NewSessionHandler(sessions, cat, committer, locker, 30*time.Second, zap.NewNop())

	c, w := submitContext(t, id)
	locker.On("AcquireSubmitLock", mock.Anything, id, 30*time.Second).Return(false, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	committer.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything)
	locker.AssertNotCalled(t, "ReleaseSubmitLock", mock.Anything, mock.Anything)
}

func TestSessionHandler_submit_releasesLock(t *testing.T) {
	sessions, cat, id := readySession(t)
	committer := &MockReservationUseCase{}
	locker := &MockSubmitLocker{}
	handler := NewSessionHandler(sessions, cat, committer, locker, 30*time.Second, zap.NewNop())

	c, w := submitContext(t, id)
	locker.On("AcquireSubmitLock", mock.Anything, id, 30*time.Second).Return(true, nil)
	locker.On("ReleaseSubmitLock", mock.Anything, id).Return(nil)
	committer.On("Commit", mock.Anything, mock.MatchedBy(func(req domain.ReservationRequest) bool {
		return req.Mode == domain.BookingModeIndividual && len(req.SlotIDs) == 1 && req.SlotIDs[0] == "s1"
	})).Return(&domain.Booking{ID: "b1", SlotIDs: []string{"s1"}}, nil)

	handler.submit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	committer.AssertExpectations(t)
	locker.AssertExpectations(t)
}

func TestSessionHandler_toggle_individualMode(t *testing.T) {
	sessions, cat, id := readySession(t)
	handler := NewSessionHandler(sessions, cat, &MockReservationUseCase{}, nil, 0, zap.NewNop())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: id}}
	body, _ := json.Marshal(slotRequest{SlotID: "s1"})
	c.Request = httptest.NewRequest("POST", "/sessions/"+id+"/toggle", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.toggle(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
