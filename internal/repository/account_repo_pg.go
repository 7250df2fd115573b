package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/tutorbooking/internal/domain"
)

var ErrDuplicateEmail = errors.New("repository: email already registered")

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

type PGAccountRepository struct {
	db *pgxpool.Pool
}

func NewAccountRepository(db *pgxpool.Pool) AccountRepository {
	return &PGAccountRepository{db: db}
}

func (r *PGAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `INSERT INTO accounts (id, email, password_hash, role) VALUES ($1, lower($2), $3, $4) RETURNING created_at`,
		account.ID, account.Email, account.PasswordHash, string(account.Role)).Scan(&account.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PGAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var a domain.Account
	var role string
	err := r.db.QueryRow(ctx, `SELECT id, email, password_hash, role, created_at FROM accounts WHERE email = lower($1)`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	a.Role = domain.Role(role)
	return &a, nil
}

var _ AccountRepository = (*PGAccountRepository)(nil)
