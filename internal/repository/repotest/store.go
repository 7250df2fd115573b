// Package repotest provides an in-memory store with the same semantics as the
// Postgres repositories, for tests.
package repotest

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/repository"
)

type Store struct {
	mu       sync.Mutex
	tutors   map[string]domain.Tutor
	slots    map[string]domain.Slot
	bookings map[string]domain.Booking
	accounts map[string]domain.Account
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		tutors:   make(map[string]domain.Tutor),
		slots:    make(map[string]domain.Slot),
		bookings: make(map[string]domain.Booking),
		accounts: make(map[string]domain.Account),
		now:      time.Now,
	}
}

func (s *Store) Tutors() repository.TutorRepository     { return tutorRepo{s} }
func (s *Store) Slots() repository.SlotRepository       { return slotRepo{s} }
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }
func (s *Store) Reset() repository.ResetRepository      { return resetRepo{s} }
func (s *Store) Accounts() repository.AccountRepository { return accountRepo{s} }

type tutorRepo struct{ s *Store }

func (r tutorRepo) Create(_ context.Context, t *domain.Tutor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	r.s.tutors[t.ID] = *t
	return nil
}

func (r tutorRepo) List(context.Context) ([]domain.Tutor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Tutor, 0, len(r.s.tutors))
	for _, t := range r.s.tutors {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Tutor) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r tutorRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tutors[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.tutors, id)
	return nil
}

type slotRepo struct{ s *Store }

func (r slotRepo) Create(_ context.Context, slot *domain.Slot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.Booked = false
	slot.CreatedAt = r.s.now()
	r.s.slots[slot.ID] = *slot
	return nil
}

func (r slotRepo) List(_ context.Context, f repository.SlotFilter) ([]domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Slot, 0, len(r.s.slots))
	for _, sl := range r.s.slots {
		if f.TutorID != "" && sl.TutorID != f.TutorID {
			continue
		}
		if !f.Date.IsZero() && !sl.OnDay(f.Date) {
			continue
		}
		if f.DeliveryMode != "" && sl.DeliveryMode != f.DeliveryMode {
			continue
		}
		if f.OnlyOpen && sl.Booked {
			continue
		}
		out = append(out, sl)
	}
	slices.SortFunc(out, func(a, b domain.Slot) int {
		if c := strings.Compare(a.SortKey(), b.SortKey()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r slotRepo) GetByID(_ context.Context, id string) (*domain.Slot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sl, ok := r.s.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sl, nil
}

func (r slotRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.slots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.slots, id)
	return nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) List(context.Context) ([]domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.Booking, 0, len(r.s.bookings))
	for _, b := range r.s.bookings {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r bookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (r bookingRepo) CommitReservation(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range b.SlotIDs {
		sl, ok := r.s.slots[id]
		if !ok || sl.Booked {
			return domain.ErrSlotConflict
		}
	}
	for _, id := range b.SlotIDs {
		sl := r.s.slots[id]
		sl.Booked = true
		r.s.slots[id] = sl
	}
	b.CreatedAt = r.s.now()
	stored := *b
	stored.SlotIDs = slices.Clone(b.SlotIDs)
	r.s.bookings[b.ID] = stored
	return nil
}

func (r bookingRepo) CancelReservation(_ context.Context, id string) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, nil
	}
	for _, sid := range b.SlotIDs {
		if sl, ok := r.s.slots[sid]; ok {
			sl.Booked = false
			r.s.slots[sid] = sl
		}
	}
	delete(r.s.bookings, id)
	return &b, nil
}

type resetRepo struct{ s *Store }

func (r resetRepo) ResetAll(context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	clear(r.s.tutors)
	clear(r.s.slots)
	clear(r.s.bookings)
	return nil
}

type accountRepo struct{ s *Store }

func (r accountRepo) Create(_ context.Context, a *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email := strings.ToLower(a.Email)
	if _, ok := r.s.accounts[email]; ok {
		return repository.ErrDuplicateEmail
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = r.s.now()
	stored := *a
	stored.Email = email
	r.s.accounts[email] = stored
	return nil
}

func (r accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}
