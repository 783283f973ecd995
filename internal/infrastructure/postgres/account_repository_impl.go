package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/repository"
)

const uniqueViolation = "23505"

const accountColumns = `id, name, email, password_hash, is_pro, trial_start_date, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, a *entity.Account) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash, is_pro, trial_start_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, a.Name, a.Email, a.PasswordHash, a.IsPro, a.TrialStartDate)

	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entity.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *AccountRepository) Replace(ctx context.Context, a *entity.Account) error {
	// trial_start_date is write-once: a stale record never clears it.
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $1, email = $2, password_hash = $3, is_pro = $4,
			trial_start_date = COALESCE(trial_start_date, $5), updated_at = $6
		WHERE id = $7
	`, a.Name, a.Email, a.PasswordHash, a.IsPro, a.TrialStartDate, a.UpdatedAt, a.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return entity.ErrDuplicateEmail
	}
	// zero rows affected means the id is unknown, which is a no-op
	return err
}

// StartTrial is a compare-and-swap on trial_start_date IS NULL.
func (r *AccountRepository) StartTrial(ctx context.Context, id string, at time.Time) (*entity.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET is_pro = TRUE, trial_start_date = $1, updated_at = $1
		WHERE id = $2 AND trial_start_date IS NULL
		RETURNING `+accountColumns, at, id))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	// nothing updated: either the account is missing or the trial was used
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, entity.ErrTrialAlreadyUsed
}

func (r *AccountRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&n)
	return n, err
}

func (r *AccountRepository) getOne(ctx context.Context, sql string, arg any) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, sql, arg))
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsPro,
		&a.TrialStartDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
