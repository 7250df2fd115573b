package schedule

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

type UseCase interface {
	CreateTutor(ctx context.Context, input CreateTutorInput) (*domain.Tutor, error)
	DeleteTutor(ctx context.Context, id string) error
	CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	ListSlots(ctx context.Context, filter repository.SlotFilter) ([]domain.Slot, error)
	ResetAll(ctx context.Context) error
}

type Notifier interface {
	Notify(ctx context.Context, kinds ...domain.RecordKind)
}

type CreateTutorInput struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

type CreateSlotInput struct {
	TutorID      string              `json:"tutor_id"`
	Date         string              `json:"date"`
	Start        string              `json:"start"`
	End          string              `json:"end"`
	DeliveryMode domain.DeliveryMode `json:"delivery_mode"`
}

type ScheduleService struct {
	tutors   repository.TutorRepository
	slots    repository.SlotRepository
	reset    repository.ResetRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewScheduleService(
	tutors repository.TutorRepository,
	slots repository.SlotRepository,
	reset repository.ResetRepository,
	notifier Notifier,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{tutors: tutors, slots: slots, reset: reset, notifier: notifier, logger: logger}
}

// CreateTutor stores a tutor. An empty photo or bio gets the house default.
func (s *ScheduleService) CreateTutor(ctx context.Context, input CreateTutorInput) (*domain.Tutor, error) {
	tutor := &domain.Tutor{
		Name:  strings.TrimSpace(input.Name),
		Photo: strings.TrimSpace(input.Photo),
		Bio:   strings.TrimSpace(input.Bio),
	}
	if tutor.Name == "" {
		return nil, fmt.Errorf("%w: name", domain.ErrMissingField)
	}
	if tutor.Photo == "" {
		tutor.Photo = domain.DefaultTutorPhoto
	}
	if tutor.Bio == "" {
		tutor.Bio = domain.DefaultTutorBio
	}

	if err := s.tutors.Create(ctx, tutor); err != nil {
		return nil, fmt.Errorf("create tutor: %w", err)
	}
	s.logger.Info("tutor created", zap.String("tutor_id", tutor.ID))
	s.notifier.Notify(ctx, domain.KindTutors)
	return tutor, nil
}

// DeleteTutor removes the tutor only. Their slots and bookings keep the id.
func (s *ScheduleService) DeleteTutor(ctx context.Context, id string) error {
	if err := s.tutors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete tutor %s: %w", id, err)
	}
	s.notifier.Notify(ctx, domain.KindTutors)
	return nil
}

func (s *ScheduleService) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error) {
	slot, err := buildSlot(input)
	if err != nil {
		return nil, err
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	s.logger.Info("slot created",
		zap.String("slot_id", slot.ID),
		zap.String("tutor_id", slot.TutorID),
		zap.String("date", slot.DateKey()),
		zap.String("start", slot.Start),
	)
	s.notifier.Notify(ctx, domain.KindSlots)
	return slot, nil
}

func buildSlot(input CreateSlotInput) (*domain.Slot, error) {
	tutorID := strings.TrimSpace(input.TutorID)
	if tutorID == "" {
		return nil, fmt.Errorf("%w: tutor", domain.ErrMissingField)
	}
	if strings.TrimSpace(input.Date) == "" || strings.TrimSpace(input.Start) == "" || strings.TrimSpace(input.End) == "" {
		return nil, fmt.Errorf("%w: date, start and end", domain.ErrMissingField)
	}
	if !input.DeliveryMode.Valid() {
		return nil, fmt.Errorf("%w: delivery mode %q", domain.ErrInvalidMode, input.DeliveryMode)
	}

	day, err := domain.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}
	start, err := domain.NormalizeClock(input.Start)
	if err != nil {
		return nil, err
	}
	end, err := domain.NormalizeClock(input.End)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, fmt.Errorf("%w: end %s is not after start %s", domain.ErrInvalidSlotTime, end, start)
	}

	return &domain.Slot{
		TutorID:      tutorID,
		Date:         day,
		Start:        start,
		End:          end,
		DeliveryMode: input.DeliveryMode,
	}, nil
}

// DeleteSlot removes a slot even when it is booked; the booking keeps the dangling id.
func (s *ScheduleService) DeleteSlot(ctx context.Context, id string) error {
	if err := s.slots.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete slot %s: %w", id, err)
	}
	s.notifier.Notify(ctx, domain.KindSlots)
	return nil
}

func (s *ScheduleService) ListSlots(ctx context.Context, filter repository.SlotFilter) ([]domain.Slot, error) {
	return s.slots.List(ctx, filter)
}

func (s *ScheduleService) ResetAll(ctx context.Context) error {
	if err := s.reset.ResetAll(ctx); err != nil {
		return fmt.Errorf("reset all: %w", err)
	}
	s.logger.Warn("all tutors, slots and bookings deleted")
	s.notifier.Notify(ctx, domain.AllKinds...)
	return nil
}

var _ UseCase = (*ScheduleService)(nil)
