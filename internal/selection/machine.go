// Package selection tracks a guardian's in-progress choice of slots and decides when it
// may be turned into a booking.
package selection

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/Domenick1991/tutorbooking/internal/domain"
	"github.com/Domenick1991/tutorbooking/internal/pricing"
)

type State string

const (
	StateIdle     State = "idle"
	StateChoosing State = "choosing"
	StateReady    State = "ready"
)

const DefaultPackageSize = 4

type Contact struct {
	GuardianName  string `json:"guardian_name"`
	GuardianEmail string `json:"guardian_email"`
	StudentName   string `json:"student_name"`
	Notes         string `json:"notes"`
}

func (c Contact) trimmed() Contact {
	return Contact{
		GuardianName:  strings.TrimSpace(c.GuardianName),
		GuardianEmail: strings.TrimSpace(c.GuardianEmail),
		StudentName:   strings.TrimSpace(c.StudentName),
		Notes:         strings.TrimSpace(c.Notes),
	}
}

func (c Contact) validate() error {
	var missing []string
	if c.GuardianName == "" {
		missing = append(missing, "guardian name")
	}
	if c.GuardianEmail == "" {
		missing = append(missing, "guardian email")
	}
	if c.StudentName == "" {
		missing = append(missing, "student name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMissingContact, strings.Join(missing, ", "))
	}
	return nil
}

// Committer performs the atomic reservation for a finalized selection.
type Committer interface {
	Commit(ctx context.Context, req domain.ReservationRequest) (*domain.Booking, error)
}

// View is a read-only copy of the machine, safe to hand to the presentation layer.
type View struct {
	State        State               `json:"state"`
	Mode         domain.BookingMode  `json:"mode"`
	PackageSize  int                 `json:"package_size"`
	TutorID      string              `json:"tutor_id,omitempty"`
	DeliveryMode domain.DeliveryMode `json:"delivery_mode,omitempty"`
	SlotIDs      []string            `json:"slot_ids"`
	SingleSlot   *domain.Slot        `json:"single_slot,omitempty"`
	CanContinue  bool                `json:"can_continue"`
	Submitting   bool                `json:"submitting"`
	Quote        pricing.Quote       `json:"quote"`
}

type Machine struct {
	mu sync.Mutex

	state        State
	mode         domain.BookingMode
	packageSize  int
	tutorID      string
	deliveryMode domain.DeliveryMode
	chosen       []string
	single       *domain.Slot
	submitting   bool

	pricing *pricing.Calculator
}

func New(calc *pricing.Calculator) *Machine {
	if calc == nil {
		calc = pricing.NewCalculator(pricing.DefaultTable)
	}
	return &Machine{
		state:       StateIdle,
		mode:        domain.BookingModeIndividual,
		packageSize: DefaultPackageSize,
		chosen:      []string{},
		pricing:     calc,
	}
}

// SetMode switches between individual and package booking. Any chosen slots are dropped.
func (m *Machine) SetMode(mode domain.BookingMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInFlight
	}
	m.mode = mode
	m.clearSlots()
	m.tutorID = ""
	m.deliveryMode = ""
	m.state = StateChoosing
	return nil
}

// SelectSlot picks the one slot of an individual booking, replacing any earlier pick.
// The slot also fixes the tutor and delivery mode of the booking.
func (m *Machine) SelectSlot(slot domain.Slot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInFlight
	}
	if m.mode != domain.BookingModeIndividual {
		return ErrWrongMode
	}
	if slot.Booked {
		return ErrSlotUnavailable
	}

	picked := slot
	m.single = &picked
	m.chosen = []string{slot.ID}
	m.tutorID = slot.TutorID
	m.deliveryMode = slot.DeliveryMode
	m.state = StateReady
	return nil
}

// PackageConfig changes any of the package settings at once. Nil fields are kept;
// an empty tutor or delivery mode unsets it.
type PackageConfig struct {
	Hours        *int
	TutorID      *string
	DeliveryMode *domain.DeliveryMode
}

// ConfigurePackage validates every field of cfg before applying any of them, so a
// rejected change leaves the selection untouched.
func (m *Machine) ConfigurePackage(cfg PackageConfig) error {
	if cfg.Hours != nil && !domain.ValidPackageSize(*cfg.Hours) {
		return fmt.Errorf("%w: %d", ErrInvalidPackageSize, *cfg.Hours)
	}
	if cfg.DeliveryMode != nil && *cfg.DeliveryMode != "" && !cfg.DeliveryMode.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidMode, *cfg.DeliveryMode)
	}
	if cfg.Hours == nil && cfg.TutorID == nil && cfg.DeliveryMode == nil {
		return nil
	}
	return m.configurePackage(func() {
		if cfg.Hours != nil {
			m.packageSize = *cfg.Hours
		}
		if cfg.TutorID != nil {
			m.tutorID = strings.TrimSpace(*cfg.TutorID)
		}
		if cfg.DeliveryMode != nil {
			m.deliveryMode = *cfg.DeliveryMode
		}
	})
}

func (m *Machine) configurePackage(apply func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInFlight
	}
	if m.mode != domain.BookingModePackage {
		return ErrWrongMode
	}
	apply()
	m.clearSlots()
	m.state = StateChoosing
	return nil
}

// Toggle adds or removes a package slot. Adding to a full package is ignored.
// It reports whether the slot is in the package afterwards.
func (m *Machine) Toggle(slot domain.Slot) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return false, ErrSubmitInFlight
	}
	if m.mode != domain.BookingModePackage {
		return false, ErrWrongMode
	}

	if i := slices.Index(m.chosen, slot.ID); i >= 0 {
		m.chosen = slices.Delete(m.chosen, i, i+1)
		m.state = StateChoosing
		return false, nil
	}

	if m.tutorID == "" || m.deliveryMode == "" {
		return false, ErrNoTutorOrMode
	}
	if slot.Booked || slot.TutorID != m.tutorID || slot.DeliveryMode != m.deliveryMode {
		return false, ErrSlotNotEligible
	}
	if len(m.chosen) >= m.packageSize {
		return false, nil
	}
	m.chosen = append(m.chosen, slot.ID)
	m.state = StateChoosing
	return true, nil
}

// Continue moves a complete selection to the confirmation step.
func (m *Machine) Continue() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.submitting {
		return ErrSubmitInFlight
	}
	if err := m.checkComplete(); err != nil {
		return err
	}
	m.state = StateReady
	return nil
}

func (m *Machine) CanContinue() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkComplete() == nil
}

// Back leaves the confirmation step and keeps the selection.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateReady && !m.submitting {
		m.state = StateChoosing
	}
}

// Reset discards the selection. The booking mode and package size are kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Submit commits a ready selection with the guardian's contact data. On success the
// machine returns to idle; on failure it stays ready so the guardian can retry.
func (m *Machine) Submit(ctx context.Context, contact Contact, committer Committer) (*domain.Booking, error) {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if m.state != StateReady {
		m.mu.Unlock()
		return nil, ErrNotReady
	}
	contact = contact.trimmed()
	if err := contact.validate(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	req := m.request(contact)
	m.submitting = true
	m.mu.Unlock()

	booking, err := committer.Commit(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if err != nil {
		return nil, err
	}
	m.reset()
	return booking, nil
}

func (m *Machine) Quote() pricing.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quote()
}

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{
		State:        m.state,
		Mode:         m.mode,
		PackageSize:  m.packageSize,
		TutorID:      m.tutorID,
		DeliveryMode: m.deliveryMode,
		SlotIDs:      slices.Clone(m.chosen),
		CanContinue:  m.checkComplete() == nil,
		Submitting:   m.submitting,
		Quote:        m.quote(),
	}
	if m.single != nil {
		s := *m.single
		v.SingleSlot = &s
	}
	return v
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) checkComplete() error {
	if m.mode == domain.BookingModeIndividual {
		if m.single == nil {
			return ErrNoSlotSelected
		}
		return nil
	}
	if m.tutorID == "" || m.deliveryMode == "" {
		return ErrNoTutorOrMode
	}
	if len(m.chosen) != m.packageSize {
		return fmt.Errorf("%w: chose %d of %d", ErrWrongSlotCount, len(m.chosen), m.packageSize)
	}
	return nil
}

func (m *Machine) request(contact Contact) domain.ReservationRequest {
	req := domain.ReservationRequest{
		Mode:          m.mode,
		TutorID:       m.tutorID,
		DeliveryMode:  m.deliveryMode,
		Hours:         m.hours(),
		SlotIDs:       slices.Clone(m.chosen),
		GuardianName:  contact.GuardianName,
		GuardianEmail: contact.GuardianEmail,
		StudentName:   contact.StudentName,
		Notes:         contact.Notes,
	}
	if m.mode == domain.BookingModeIndividual && m.single != nil {
		req.TutorID = m.single.TutorID
		req.DeliveryMode = m.single.DeliveryMode
	}
	return req
}

func (m *Machine) hours() int {
	if m.mode == domain.BookingModeIndividual {
		return 1
	}
	return m.packageSize
}

func (m *Machine) quote() pricing.Quote {
	mode := m.deliveryMode
	if mode == "" && m.single != nil {
		mode = m.single.DeliveryMode
	}
	if mode == "" {
		mode = domain.DeliveryInPerson
	}
	return m.pricing.Compute(pricing.Request{Mode: m.mode, DeliveryMode: mode, Hours: m.hours()})
}

func (m *Machine) clearSlots() {
	m.chosen = []string{}
	m.single = nil
}

func (m *Machine) reset() {
	m.clearSlots()
	if m.mode == domain.BookingModeIndividual {
		m.tutorID = ""
		m.deliveryMode = ""
	}
	m.state = StateIdle
}
