package feed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	return m.Called(ctx, slot).Error(0)
}

func (m *MockSlotRepository) List(ctx context.Context, filter repository.SlotFilter) ([]domain.Slot, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockSlotCache struct {
	mock.Mock
}

func (m *MockSlotCache) GetSlots(ctx context.Context) ([]domain.Slot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotCache) SetSlots(ctx context.Context, slots []domain.Slot) error {
	return m.Called(ctx, slots).Error(0)
}

func (m *MockSlotCache) InvalidateSlots(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestRepositoryLoader_SlotsCacheHit(t *testing.T) {
	repo := new(MockSlotRepository)
	cache := new(MockSlotCache)
	cached := []domain.Slot{{ID: "s1"}}
	cache.On("GetSlots", mock.Anything).Return(cached, nil)

	l := NewRepositoryLoader(nil, repo, nil, cache, zap.NewNop())
	slots, err := l.Slots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, slots)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestRepositoryLoader_SlotsCacheMiss(t *testing.T) {
	repo := new(MockSlotRepository)
	cache := new(MockSlotCache)
	fromDB := []domain.Slot{{ID: "s1"}, {ID: "s2"}}
	cache.On("GetSlots", mock.Anything).Return(nil, nil)
	repo.On("List", mock.Anything, repository.SlotFilter{}).Return(fromDB, nil)
	cache.On("SetSlots", mock.Anything, fromDB).Return(nil)

	l := NewRepositoryLoader(nil, repo, nil, cache, zap.NewNop())
	slots, err := l.Slots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fromDB, slots)
	cache.AssertExpectations(t)
}

func TestRepositoryLoader_CacheErrorsAreNotFatal(t *testing.T) {
	repo := new(MockSlotRepository)
	cache := new(MockSlotCache)
	fromDB := []domain.Slot{{ID: "s1"}}
	cache.On("GetSlots", mock.Anything).Return(nil, errors.New("redis down"))
	repo.On("List", mock.Anything, repository.SlotFilter{}).Return(fromDB, nil)
	cache.On("SetSlots", mock.Anything, fromDB).Return(errors.New("redis down"))

	l := NewRepositoryLoader(nil, repo, nil, cache, zap.NewNop())
	slots, err := l.Slots(context.Background())

	require.NoError(t, err)
	assert.Equal(t, fromDB, slots)
}

func TestRepositoryLoader_Invalidate(t *testing.T) {
	cache := new(MockSlotCache)
	cache.On("InvalidateSlots", mock.Anything).Return(nil).Once()

	l := NewRepositoryLoader(nil, nil, nil, cache, zap.NewNop())
	require.NoError(t, l.Invalidate(context.Background(), domain.KindTutors))
	require.NoError(t, l.Invalidate(context.Background(), domain.KindBookings, domain.KindSlots))

	cache.AssertExpectations(t)

	noCache := NewRepositoryLoader(nil, nil, nil, nil, zap.NewNop())
	assert.NoError(t, noCache.Invalidate(context.Background(), domain.KindSlots))
}
