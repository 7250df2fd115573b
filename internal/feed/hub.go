// Package feed delivers full record sets to subscribers whenever the store changes.
package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/kafka"
	"github.com/Domenick1991/tutorbooking/internal/metrics"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, kafkago.Message) error) error
}

type subscribers[T any] struct {
	fns map[int]func([]T)
}

func (s *subscribers[T]) add(id int, fn func([]T)) {
	if s.fns == nil {
		s.fns = make(map[int]func([]T))
	}
	s.fns[id] = fn
}

func (s *subscribers[T]) snapshot() []func([]T) {
	out := make([]func([]T), 0, len(s.fns))
	for _, fn := range s.fns {
		out = append(out, fn)
	}
	return out
}

// Hub fans record sets out to subscribers. Writers call Notify after a change; with a
// Kafka publisher every replica hears about it through Run, otherwise the change is
// reloaded in-process.
type Hub struct {
	loader    Loader
	publisher Publisher
	topic     string
	logger    *zap.Logger
	metrics   *metrics.Metrics

	mu       sync.Mutex
	nextID   int
	tutors   subscribers[domain.Tutor]
	slots    subscribers[domain.Slot]
	bookings subscribers[domain.Booking]
}

type Option func(*Hub)

// WithPublisher routes change notifications through Kafka.
func WithPublisher(p Publisher, topic string) Option {
	return func(h *Hub) {
		h.publisher = p
		h.topic = topic
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

func NewHub(loader Loader, logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{loader: loader, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) SubscribeTutors(fn func([]domain.Tutor)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.id()
	h.tutors.add(id, fn)
	return func() { h.unsubscribe(id) }
}

func (h *Hub) SubscribeSlots(fn func([]domain.Slot)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.id()
	h.slots.add(id, fn)
	return func() { h.unsubscribe(id) }
}

func (h *Hub) SubscribeBookings(fn func([]domain.Booking)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.id()
	h.bookings.add(id, fn)
	return func() { h.unsubscribe(id) }
}

// Sink receives every record set. catalog.Catalog satisfies it.
type Sink interface {
	ApplyTutors([]domain.Tutor)
	ApplySlots([]domain.Slot)
	ApplyBookings([]domain.Booking)
}

// Attach subscribes sink to all three record sets and returns one unsubscribe func.
func (h *Hub) Attach(sink Sink) func() {
	unsubs := []func(){
		h.SubscribeTutors(sink.ApplyTutors),
		h.SubscribeSlots(sink.ApplySlots),
		h.SubscribeBookings(sink.ApplyBookings),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (h *Hub) id() int {
	h.nextID++
	return h.nextID
}

func (h *Hub) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tutors.fns, id)
	delete(h.slots.fns, id)
	delete(h.bookings.fns, id)
}

// Refresh reloads the given kinds (all kinds when none are given) and delivers them.
// A failing kind does not stop the others; the errors are joined.
func (h *Hub) Refresh(ctx context.Context, kinds ...domain.RecordKind) error {
	if len(kinds) == 0 {
		kinds = domain.AllKinds
	}

	var errs []error
	for _, kind := range dedupe(kinds) {
		err := h.refreshKind(ctx, kind)
		h.observe(kind, err)
		if err != nil {
			h.logger.Error("feed refresh failed", zap.String("kind", string(kind)), zap.Error(err))
			errs = append(errs, fmt.Errorf("refresh %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (h *Hub) refreshKind(ctx context.Context, kind domain.RecordKind) error {
	switch kind {
	case domain.KindTutors:
		items, err := h.loader.Tutors(ctx)
		if err != nil {
			return err
		}
		h.mu.Lock()
		fns := h.tutors.snapshot()
		h.mu.Unlock()
		for _, fn := range fns {
			fn(items)
		}
	case domain.KindSlots:
		items, err := h.loader.Slots(ctx)
		if err != nil {
			return err
		}
		h.mu.Lock()
		fns := h.slots.snapshot()
		h.mu.Unlock()
		for _, fn := range fns {
			fn(items)
		}
	case domain.KindBookings:
		items, err := h.loader.Bookings(ctx)
		if err != nil {
			return err
		}
		h.mu.Lock()
		fns := h.bookings.snapshot()
		h.mu.Unlock()
		for _, fn := range fns {
			fn(items)
		}
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	return nil
}

// Notify announces that kinds changed in the store. Cached copies are dropped first.
// If the announcement cannot be published the change is reloaded locally.
func (h *Hub) Notify(ctx context.Context, kinds ...domain.RecordKind) {
	if err := h.loader.Invalidate(ctx, kinds...); err != nil {
		h.logger.Warn("cache invalidation failed", zap.Error(err))
	}

	if h.publisher != nil {
		ev := kafka.ChangeEvent{Kinds: kinds, At: time.Now().UTC()}
		err := h.publisher.Publish(ctx, h.topic, "changes", ev)
		if err == nil {
			return
		}
		h.logger.Warn("change event publish failed, refreshing locally", zap.Error(err))
	}

	_ = h.Refresh(ctx, kinds...)
}

// Run turns change events from consumer into refreshes until ctx is done.
func (h *Hub) Run(ctx context.Context, consumer Consumer) error {
	return consumer.Consume(ctx, h.HandleMessage)
}

func (h *Hub) HandleMessage(ctx context.Context, msg kafkago.Message) error {
	ev, err := kafka.DecodeChangeEvent(msg.Value)
	if err != nil {
		h.logger.Warn("skipping malformed change event", zap.Error(err), zap.Int64("offset", msg.Offset))
		return nil
	}
	// refresh errors are logged in Refresh and must not stop the consumer
	_ = h.Refresh(ctx, ev.Kinds...)
	return nil
}

func (h *Hub) observe(kind domain.RecordKind, err error) {
	if h.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	h.metrics.FeedRefresh.WithLabelValues(string(kind), result).Inc()
}

func dedupe(kinds []domain.RecordKind) []domain.RecordKind {
	out := make([]domain.RecordKind, 0, len(kinds))
	for _, k := range kinds {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	return out
}
