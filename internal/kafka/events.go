package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
)

// ChangeEvent tells every replica which record sets must be re-read.
type ChangeEvent struct {
	Kinds []domain.RecordKind `json:"kinds"`
	At    time.Time           `json:"at"`
}

type SlotRef struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type BookingEvent struct {
	Type          string              `json:"type"`
	BookingID     string              `json:"booking_id"`
	TutorID       string              `json:"tutor_id"`
	TutorName     string              `json:"tutor_name,omitempty"`
	Mode          domain.BookingMode  `json:"mode"`
	DeliveryMode  domain.DeliveryMode `json:"delivery_mode"`
	Hours         int                 `json:"hours"`
	GuardianName  string              `json:"guardian_name"`
	GuardianEmail string              `json:"guardian_email"`
	StudentName   string              `json:"student_name"`
	Slots         []SlotRef           `json:"slots"`
	Amount        *int64              `json:"amount,omitempty"`
	At            time.Time           `json:"at"`
}

// NewBookingEvent describes b. Slots that no longer exist are left out.
func NewBookingEvent(eventType string, b *domain.Booking, slots []domain.Slot, at time.Time) BookingEvent {
	refs := make([]SlotRef, 0, len(slots))
	for _, s := range slots {
		refs = append(refs, SlotRef{ID: s.ID, Date: s.DateKey(), Start: s.Start, End: s.End})
	}
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID,
		TutorID:       b.TutorID,
		Mode:          b.Mode,
		DeliveryMode:  b.DeliveryMode,
		Hours:         b.Hours,
		GuardianName:  b.GuardianName,
		GuardianEmail: b.GuardianEmail,
		StudentName:   b.StudentName,
		Slots:         refs,
		At:            at,
	}
}

func DecodeChangeEvent(data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ChangeEvent{}, fmt.Errorf("decode change event: %w", err)
	}
	return ev, nil
}

func DecodeBookingEvent(data []byte) (BookingEvent, error) {
	var ev BookingEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return BookingEvent{}, fmt.Errorf("decode booking event: %w", err)
	}
	return ev, nil
}
