package domain

import (
	"fmt"
	"strings"
	"time"
)

type DeliveryMode string

const (
	DeliveryInPerson DeliveryMode = "in_person"
	DeliveryVirtual  DeliveryMode = "virtual"
)

func (m DeliveryMode) Valid() bool {
	return m == DeliveryInPerson || m == DeliveryVirtual
}

// DateLayout is the canonical, time-zone-naive encoding of a slot day.
const DateLayout = "2006-01-02"

const clockLayout = "15:04"

type Slot struct {
	ID           string       `json:"id"`
	TutorID      string       `json:"tutor_id"`
	Date         time.Time    `json:"date"`
	Start        string       `json:"start"`
	End          string       `json:"end"`
	DeliveryMode DeliveryMode `json:"delivery_mode"`
	Booked       bool         `json:"booked"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (s Slot) DateKey() string {
	return s.Date.Format(DateLayout)
}

// SortKey orders slots by day and then by start time.
func (s Slot) SortKey() string {
	return s.DateKey() + s.Start
}

func (s Slot) OnDay(day time.Time) bool {
	return s.DateKey() == day.Format(DateLayout)
}

// ParseDate reads a calendar day. Anything after the day part (an ISO timestamp) is ignored.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) > len(DateLayout) {
		value = value[:len(DateLayout)]
	}
	day, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return day, nil
}

// NormalizeClock pads a wall-clock time to HH:MM so that string order matches time order.
func NormalizeClock(value string) (string, error) {
	value = strings.TrimSpace(value)
	for len(value) < len(clockLayout) {
		value = "0" + value
	}
	if _, err := time.Parse(clockLayout, value); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlotTime, value)
	}
	return value, nil
}
