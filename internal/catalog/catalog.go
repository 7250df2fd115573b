// Package catalog keeps the live view of tutors, slots and bookings and derives
// the availability lists shown to guardians.
package catalog

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

type Filter struct {
	TutorID      string
	Date         time.Time // zero value disables the day filter
	DeliveryMode domain.DeliveryMode
}

// BookingView is a booking joined with its tutor and the slots that still exist.
type BookingView struct {
	Booking domain.Booking `json:"booking"`
	Tutor   *domain.Tutor  `json:"tutor,omitempty"`
	Slots   []domain.Slot  `json:"slots"`
}

// Catalog is the single coordinator of the three record feeds. It holds the last
// snapshot per kind and recomputes the derived open-slot list whenever slots change.
type Catalog struct {
	mu        sync.RWMutex
	tutors    []domain.Tutor
	slots     []domain.Slot
	bookings  []domain.Booking
	open      []domain.Slot
	slotIndex map[string]int

	listenersMu sync.Mutex
	listeners   map[int]func(domain.RecordKind)
	nextID      int
}

func New() *Catalog {
	return &Catalog{
		slotIndex: make(map[string]int),
		listeners: make(map[int]func(domain.RecordKind)),
	}
}

func (c *Catalog) ApplyTutors(tutors []domain.Tutor) {
	c.mu.Lock()
	c.tutors = slices.Clone(tutors)
	c.mu.Unlock()
	c.emit(domain.KindTutors)
}

func (c *Catalog) ApplySlots(slots []domain.Slot) {
	all := slices.Clone(slots)
	sortSlots(all)

	open := make([]domain.Slot, 0, len(all))
	index := make(map[string]int, len(all))
	for i, s := range all {
		index[s.ID] = i
		if !s.Booked {
			open = append(open, s)
		}
	}

	c.mu.Lock()
	c.slots = all
	c.open = open
	c.slotIndex = index
	c.mu.Unlock()
	c.emit(domain.KindSlots)
}

func (c *Catalog) ApplyBookings(bookings []domain.Booking) {
	c.mu.Lock()
	c.bookings = slices.Clone(bookings)
	c.mu.Unlock()
	c.emit(domain.KindBookings)
}

// Available returns the open slots matching every non-empty field of f, earliest first.
func (c *Catalog) Available(f Filter) []domain.Slot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Slot, 0, len(c.open))
	for _, s := range c.open {
		if f.TutorID != "" && s.TutorID != f.TutorID {
			continue
		}
		if !f.Date.IsZero() && !s.OnDay(f.Date) {
			continue
		}
		if f.DeliveryMode != "" && s.DeliveryMode != f.DeliveryMode {
			continue
		}
		out = append(out, s)
	}
	return out
}

// PackageEligible lists the open slots a package for this tutor and delivery mode may use.
// Both arguments are required; with either one empty the result is empty.
func (c *Catalog) PackageEligible(tutorID string, mode domain.DeliveryMode) []domain.Slot {
	if tutorID == "" || mode == "" {
		return []domain.Slot{}
	}
	return c.Available(Filter{TutorID: tutorID, DeliveryMode: mode})
}

func (c *Catalog) Slot(id string) (domain.Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.slotIndex[id]
	if !ok {
		return domain.Slot{}, false
	}
	return c.slots[i], true
}

func (c *Catalog) Tutor(id string) (domain.Tutor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tutors {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tutor{}, false
}

func (c *Catalog) Tutors() []domain.Tutor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tutors)
}

// Slots returns every slot, booked or not, in day/start order.
func (c *Catalog) Slots() []domain.Slot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.slots)
}

func (c *Catalog) Bookings() []domain.Booking {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.bookings)
}

func (c *Catalog) Booking(id string) (domain.Booking, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.bookings {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Booking{}, false
}

// BookingViews resolves every booking against the current snapshot. Slot ids that no
// longer exist are skipped.
func (c *Catalog) BookingViews() []BookingView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tutors := make(map[string]domain.Tutor, len(c.tutors))
	for _, t := range c.tutors {
		tutors[t.ID] = t
	}

	views := make([]BookingView, 0, len(c.bookings))
	for _, b := range c.bookings {
		view := BookingView{Booking: b, Slots: make([]domain.Slot, 0, len(b.SlotIDs))}
		if t, ok := tutors[b.TutorID]; ok {
			view.Tutor = &t
		}
		for _, id := range b.SlotIDs {
			if i, ok := c.slotIndex[id]; ok {
				view.Slots = append(view.Slots, c.slots[i])
			}
		}
		views = append(views, view)
	}
	return views
}

// OnChange registers fn to run after each snapshot update. The returned func removes it.
func (c *Catalog) OnChange(fn func(domain.RecordKind)) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Catalog) emit(kind domain.RecordKind) {
	c.listenersMu.Lock()
	fns := make([]func(domain.RecordKind), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn(kind)
	}
}

func sortSlots(slots []domain.Slot) {
	slices.SortStableFunc(slots, func(a, b domain.Slot) int {
		return strings.Compare(a.SortKey(), b.SortKey())
	})
}
