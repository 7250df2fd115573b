package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

type TutorRepository interface {
	Create(ctx context.Context, tutor *domain.Tutor) error
	List(ctx context.Context) ([]domain.Tutor, error)
	Delete(ctx context.Context, id string) error
}

type PGTutorRepository struct {
	db *pgxpool.Pool
}

func NewTutorRepository(db *pgxpool.Pool) TutorRepository {
	return &PGTutorRepository{db: db}
}

func (r *PGTutorRepository) Create(ctx context.Context, tutor *domain.Tutor) error {
	if tutor.ID == "" {
		tutor.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx, `INSERT INTO tutors (id, name, photo, bio) VALUES ($1, $2, $3, $4)`,
		tutor.ID, tutor.Name, tutor.Photo, tutor.Bio)
	return err
}

func (r *PGTutorRepository) List(ctx context.Context) ([]domain.Tutor, error) {
	query, args, err := psql.Select(tutorColumns...).From("tutors").OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tutors := make([]domain.Tutor, 0)
	for rows.Next() {
		var t domain.Tutor
		if err := rows.Scan(&t.ID, &t.Name, &t.Photo, &t.Bio); err != nil {
			return nil, err
		}
		tutors = append(tutors, t)
	}
	return tutors, rows.Err()
}

func (r *PGTutorRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("tutors").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ TutorRepository = (*PGTutorRepository)(nil)
