package domain

import "time"

type BookingMode string

const (
	BookingModeIndividual BookingMode = "individual"
	BookingModePackage    BookingMode = "package"
)

func (m BookingMode) Valid() bool {
	return m == BookingModeIndividual || m == BookingModePackage
}

// PackageSizes lists the package sizes a guardian may pick, in hours.
var PackageSizes = []int{4, 8, 10}

func ValidPackageSize(hours int) bool {
	for _, size := range PackageSizes {
		if size == hours {
			return true
		}
	}
	return false
}

type Booking struct {
	ID            string       `json:"id"`
	SlotIDs       []string     `json:"slot_ids"`
	TutorID       string       `json:"tutor_id"`
	DeliveryMode  DeliveryMode `json:"delivery_mode"`
	Hours         int          `json:"hours"`
	Mode          BookingMode  `json:"mode"`
	GuardianName  string       `json:"guardian_name"`
	GuardianEmail string       `json:"guardian_email"`
	StudentName   string       `json:"student_name"`
	Notes         string       `json:"notes"`
	CreatedAt     time.Time    `json:"created_at"`
}

// ExpectedSlotCount is the number of slot ids a booking of this shape must carry.
func (b *Booking) ExpectedSlotCount() int {
	if b.Mode == BookingModeIndividual {
		return 1
	}
	return b.Hours
}

// ReservationRequest is a finalized selection plus the guardian's contact fields.
type ReservationRequest struct {
	Mode          BookingMode
	TutorID       string
	DeliveryMode  DeliveryMode
	Hours         int
	SlotIDs       []string
	GuardianName  string
	GuardianEmail string
	StudentName   string
	Notes         string
}
