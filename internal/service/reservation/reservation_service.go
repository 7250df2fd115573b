package reservation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/kafka"
	"github.com/Domenick1991/tutorbooking/internal/metrics"
	"github.com/Domenick1991/tutorbooking/internal/pricing"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

var ErrInvalidReservation = errors.New("reservation: invalid reservation")

type UseCase interface {
	Commit(ctx context.Context, req domain.ReservationRequest) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value any, maxRetries int) error
}

// publishRetries bounds the attempts to hand a booking event to the email worker.
const publishRetries = 3

// Notifier announces store changes to every catalog.
type Notifier interface {
	Notify(ctx context.Context, kinds ...domain.RecordKind)
}

// Directory resolves ids to the records last seen by the catalog.
type Directory interface {
	Slot(id string) (domain.Slot, bool)
	Tutor(id string) (domain.Tutor, bool)
}

type ReservationService struct {
	bookings    repository.BookingRepository
	notifier    Notifier
	directory   Directory
	pricing     *pricing.Calculator
	producer    Producer
	eventsTopic string
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*ReservationService)

func WithEvents(producer Producer, topic string) Option {
	return func(s *ReservationService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReservationService) { s.metrics = m }
}

func WithDirectory(d Directory) Option {
	return func(s *ReservationService) { s.directory = d }
}

func WithPricing(calc *pricing.Calculator) Option {
	return func(s *ReservationService) { s.pricing = calc }
}

func NewReservationService(
	bookings repository.BookingRepository,
	notifier Notifier,
	logger *zap.Logger,
	opts ...Option,
) *ReservationService {
	s := &ReservationService{
		bookings: bookings,
		notifier: notifier,
		pricing:  pricing.NewCalculator(pricing.DefaultTable),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit books every slot of req and records the booking in one atomic write.
// If any slot was taken in the meantime nothing changes and the error wraps
// domain.ErrSlotConflict.
func (s *ReservationService) Commit(ctx context.Context, req domain.ReservationRequest) (*domain.Booking, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		SlotIDs:       slices.Clone(req.SlotIDs),
		TutorID:       req.TutorID,
		DeliveryMode:  req.DeliveryMode,
		Hours:         req.Hours,
		Mode:          req.Mode,
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianEmail: strings.TrimSpace(req.GuardianEmail),
		StudentName:   strings.TrimSpace(req.StudentName),
		Notes:         strings.TrimSpace(req.Notes),
	}
	if booking.Mode == domain.BookingModeIndividual {
		booking.Hours = 1
	}
	// resolved before the commit flips the slots in the catalog
	slots := s.resolveSlots(booking.SlotIDs)

	if err := s.bookings.CommitReservation(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			s.count(func(m *metrics.Metrics) { m.Conflicts.Inc() })
			s.logger.Info("reservation conflict", zap.Strings("slot_ids", booking.SlotIDs))
			// the local view was stale; make it catch up
			s.notifier.Notify(ctx, domain.KindSlots)
		}
		return nil, fmt.Errorf("commit reservation: %w", err)
	}

	s.count(func(m *metrics.Metrics) { m.Commits.Inc() })
	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("mode", string(booking.Mode)),
		zap.Int("slots", len(booking.SlotIDs)),
	)

	s.publish(ctx, kafka.EventBookingCreated, booking, slots)
	s.notifier.Notify(ctx, domain.KindSlots, domain.KindBookings)
	return booking, nil
}

// Cancel reopens the booking's slots and deletes it. Cancelling a booking that no
// longer exists is not an error.
func (s *ReservationService) Cancel(ctx context.Context, bookingID string) error {
	booking, err := s.bookings.CancelReservation(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("cancel reservation %s: %w", bookingID, err)
	}
	if booking == nil {
		s.logger.Debug("cancel of missing booking ignored", zap.String("booking_id", bookingID))
		return nil
	}

	s.count(func(m *metrics.Metrics) { m.Cancels.Inc() })
	s.logger.Info("booking cancelled", zap.String("booking_id", booking.ID))

	s.publish(ctx, kafka.EventBookingCancelled, booking, s.resolveSlots(booking.SlotIDs))
	s.notifier.Notify(ctx, domain.KindSlots, domain.KindBookings)
	return nil
}

func validate(req domain.ReservationRequest) error {
	if !req.Mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, req.Mode)
	}
	if !req.DeliveryMode.Valid() {
		return fmt.Errorf("%w: delivery mode %q", domain.ErrInvalidMode, req.DeliveryMode)
	}
	if strings.TrimSpace(req.TutorID) == "" {
		return fmt.Errorf("%w: tutor", domain.ErrMissingField)
	}
	if strings.TrimSpace(req.GuardianName) == "" || strings.TrimSpace(req.GuardianEmail) == "" || strings.TrimSpace(req.StudentName) == "" {
		return fmt.Errorf("%w: guardian contact", domain.ErrMissingField)
	}

	want := 1
	if req.Mode == domain.BookingModePackage {
		if !domain.ValidPackageSize(req.Hours) {
			return fmt.Errorf("%w: package of %d hours", ErrInvalidReservation, req.Hours)
		}
		want = req.Hours
	}
	if len(req.SlotIDs) != want {
		return fmt.Errorf("%w: %d slots for %d hours", ErrInvalidReservation, len(req.SlotIDs), want)
	}
	seen := make(map[string]struct{}, len(req.SlotIDs))
	for _, id := range req.SlotIDs {
		if id == "" {
			return fmt.Errorf("%w: empty slot id", ErrInvalidReservation)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: slot %s chosen twice", ErrInvalidReservation, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *ReservationService) resolveSlots(ids []string) []domain.Slot {
	if s.directory == nil {
		return nil
	}
	slots := make([]domain.Slot, 0, len(ids))
	for _, id := range ids {
		if slot, ok := s.directory.Slot(id); ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking, slots []domain.Slot) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}

	event := kafka.NewBookingEvent(eventType, booking, slots, s.now().UTC())
	if s.directory != nil {
		if tutor, ok := s.directory.Tutor(booking.TutorID); ok {
			event.TutorName = tutor.Name
		}
	}
	quote := s.pricing.Compute(pricing.Request{
		Mode:         booking.Mode,
		DeliveryMode: booking.DeliveryMode,
		Hours:        booking.Hours,
	})
	if quote.HasAmount() {
		event.Amount = quote.Amount
	}

	if err := s.producer.PublishWithRetry(ctx, s.eventsTopic, booking.ID, event, publishRetries); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID),
			zap.Error(err),
		)
	}
}

func (s *ReservationService) count(fn func(*metrics.Metrics)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

var _ UseCase = (*ReservationService)(nil)
