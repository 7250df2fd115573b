package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

type BookingRepository interface {
	List(ctx context.Context) ([]domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// CommitReservation marks every slot of the booking as booked and stores the booking,
	// all in one transaction. If any slot is missing or already booked nothing is written
	// and domain.ErrSlotConflict is returned.
	CommitReservation(ctx context.Context, booking *domain.Booking) error
	// CancelReservation reopens the booking's slots that still exist and deletes it.
	// A missing booking returns (nil, nil).
	CancelReservation(ctx context.Context, id string) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).From("bookings").OrderBy("created_at DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query, args, err := psql.Select(bookingColumns...).From("bookings").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	b, err := scanBooking(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *PGBookingRepository) CommitReservation(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `UPDATE slots SET booked = true WHERE id = ANY($1) AND booked = false`, booking.SlotIDs)
	if err != nil {
		return err
	}
	if res.RowsAffected() != int64(len(booking.SlotIDs)) {
		return domain.ErrSlotConflict
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, slot_ids, tutor_id, delivery_mode, hours, mode, guardian_name, guardian_email, student_name, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		booking.ID, booking.SlotIDs, booking.TutorID, string(booking.DeliveryMode), booking.Hours, string(booking.Mode),
		booking.GuardianName, booking.GuardianEmail, booking.StudentName, booking.Notes).
		Scan(&booking.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) CancelReservation(ctx context.Context, id string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query, args, err := psql.Select(bookingColumns...).From("bookings").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	b, err := scanBooking(tx.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	// ids of slots deleted since the booking was made simply match nothing
	if _, err := tx.Exec(ctx, `UPDATE slots SET booked = false WHERE id = ANY($1)`, b.SlotIDs); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, b.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
