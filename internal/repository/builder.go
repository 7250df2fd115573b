package repository

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var ErrBuildQuery = errors.New("repository: build query")

var (
	tutorColumns   = []string{"id", "name", "photo", "bio"}
	slotColumns    = []string{"id", "tutor_id", "date", "start_time", "end_time", "delivery_mode", "booked", "created_at"}
	bookingColumns = []string{"id", "slot_ids", "tutor_id", "delivery_mode", "hours", "mode", "guardian_name", "guardian_email", "student_name", "notes", "created_at"}
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func scanSlot(row pgx.Row) (domain.Slot, error) {
	var s domain.Slot
	var mode string
	err := row.Scan(&s.ID, &s.TutorID, &s.Date, &s.Start, &s.End, &mode, &s.Booked, &s.CreatedAt)
	s.DeliveryMode = domain.DeliveryMode(mode)
	return s, err
}

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	var delivery, mode string
	err := row.Scan(&b.ID, &b.SlotIDs, &b.TutorID, &delivery, &b.Hours, &mode,
		&b.GuardianName, &b.GuardianEmail, &b.StudentName, &b.Notes, &b.CreatedAt)
	b.DeliveryMode = domain.DeliveryMode(delivery)
	b.Mode = domain.BookingMode(mode)
	return b, err
}
