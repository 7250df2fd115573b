package selection

import "errors"

var (
	ErrNoSlotSelected     = errors.New("selection: no slot selected")
	ErrNoTutorOrMode      = errors.New("selection: tutor and delivery mode must be chosen")
	ErrWrongSlotCount     = errors.New("selection: wrong number of slots for the package")
	ErrInvalidPackageSize = errors.New("selection: invalid package size")
	ErrWrongMode          = errors.New("selection: action not allowed in the current booking mode")
	ErrSlotNotEligible    = errors.New("selection: slot is not eligible for this package")
	ErrSlotUnavailable    = errors.New("selection: slot is not available")
	ErrNotReady           = errors.New("selection: selection is not ready to confirm")
	ErrMissingContact     = errors.New("selection: guardian name, email and student name are required")
	ErrSubmitInFlight     = errors.New("selection: a submission is already in progress")
)
