package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResetRepository interface {
	ResetAll(ctx context.Context) error
}

type PGResetRepository struct {
	db *pgxpool.Pool
}

func NewResetRepository(db *pgxpool.Pool) ResetRepository {
	return &PGResetRepository{db: db}
}

// ResetAll deletes every booking, slot and tutor in one batch. Accounts are kept.
func (r *PGResetRepository) ResetAll(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM bookings`)
	batch.Queue(`DELETE FROM slots`)
	batch.Queue(`DELETE FROM tutors`)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

var _ ResetRepository = (*PGResetRepository)(nil)
