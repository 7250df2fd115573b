package domain

// RecordKind names one of the three record sets kept by the store.
type RecordKind string

const (
	KindTutors   RecordKind = "tutors"
	KindSlots    RecordKind = "slots"
	KindBookings RecordKind = "bookings"
)

var AllKinds = []RecordKind{KindTutors, KindSlots, KindBookings}
