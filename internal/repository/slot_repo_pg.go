package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

// SlotFilter narrows a slot listing. Zero fields do not filter.
type SlotFilter struct {
	TutorID      string
	Date         time.Time
	DeliveryMode domain.DeliveryMode
	OnlyOpen     bool
}

type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) error
	List(ctx context.Context, filter SlotFilter) ([]domain.Slot, error)
	GetByID(ctx context.Context, id string) (*domain.Slot, error)
	Delete(ctx context.Context, id string) error
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

func (r *PGSlotRepository) Create(ctx context.Context, slot *domain.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	return r.db.QueryRow(ctx, `INSERT INTO slots (id, tutor_id, date, start_time, end_time, delivery_mode, booked)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING created_at`,
		slot.ID, slot.TutorID, slot.Date, slot.Start, slot.End, string(slot.DeliveryMode)).
		Scan(&slot.CreatedAt)
}

func (r *PGSlotRepository) List(ctx context.Context, filter SlotFilter) ([]domain.Slot, error) {
	query, args, err := slotListQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func slotListQuery(filter SlotFilter) (string, []any, error) {
	q := psql.Select(slotColumns...).From("slots")
	if filter.TutorID != "" {
		q = q.Where(sq.Eq{"tutor_id": filter.TutorID})
	}
	if !filter.Date.IsZero() {
		q = q.Where(sq.Eq{"date": filter.Date.Format(domain.DateLayout)})
	}
	if filter.DeliveryMode != "" {
		q = q.Where(sq.Eq{"delivery_mode": string(filter.DeliveryMode)})
	}
	if filter.OnlyOpen {
		q = q.Where(sq.Eq{"booked": false})
	}

	query, args, err := q.OrderBy("date", "start_time", "id").ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	return query, args, nil
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	query, args, err := psql.Select(slotColumns...).From("slots").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	s, err := scanSlot(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Delete removes a slot whether or not it is booked. Bookings keep the dangling id.
func (r *PGSlotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM slots WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ SlotRepository = (*PGSlotRepository)(nil)
