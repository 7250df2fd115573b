package feed

import (
	"context"

	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

// Loader reads complete record sets from the store.
type Loader interface {
	Tutors(ctx context.Context) ([]domain.Tutor, error)
	Slots(ctx context.Context) ([]domain.Slot, error)
	Bookings(ctx context.Context) ([]domain.Booking, error)
	// Invalidate drops any cached copy of the given kinds.
	Invalidate(ctx context.Context, kinds ...domain.RecordKind) error
}

type SlotCache interface {
	GetSlots(ctx context.Context) ([]domain.Slot, error)
	SetSlots(ctx context.Context, slots []domain.Slot) error
	InvalidateSlots(ctx context.Context) error
}

// RepositoryLoader reads from Postgres and keeps the slot snapshot in a cache.
// The cache is optional.
type RepositoryLoader struct {
	tutors   repository.TutorRepository
	slots    repository.SlotRepository
	bookings repository.BookingRepository
	cache    SlotCache
	logger   *zap.Logger
}

func NewRepositoryLoader(
	tutors repository.TutorRepository,
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	cache SlotCache,
	logger *zap.Logger,
) *RepositoryLoader {
	return &RepositoryLoader{tutors: tutors, slots: slots, bookings: bookings, cache: cache, logger: logger}
}

func (l *RepositoryLoader) Tutors(ctx context.Context) ([]domain.Tutor, error) {
	return l.tutors.List(ctx)
}

func (l *RepositoryLoader) Slots(ctx context.Context) ([]domain.Slot, error) {
	if l.cache != nil {
		cached, err := l.cache.GetSlots(ctx)
		if err != nil {
			l.logger.Warn("slot cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	slots, err := l.slots.List(ctx, repository.SlotFilter{})
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if err := l.cache.SetSlots(ctx, slots); err != nil {
			l.logger.Warn("slot cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}

func (l *RepositoryLoader) Bookings(ctx context.Context) ([]domain.Booking, error) {
	return l.bookings.List(ctx)
}

func (l *RepositoryLoader) Invalidate(ctx context.Context, kinds ...domain.RecordKind) error {
	if l.cache == nil {
		return nil
	}
	for _, k := range kinds {
		if k == domain.KindSlots {
			return l.cache.InvalidateSlots(ctx)
		}
	}
	return nil
}

var _ Loader = (*RepositoryLoader)(nil)
