package domain

import "errors"

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrMissingField    = errors.New("domain: required field is missing")
	ErrInvalidDate     = errors.New("domain: invalid date")
	ErrInvalidSlotTime = errors.New("domain: invalid slot time")
	ErrInvalidMode     = errors.New("domain: invalid mode")

	// ErrSlotConflict is returned when a reservation targets a slot that is no longer open.
	ErrSlotConflict = errors.New("domain: slot is already booked")
)
