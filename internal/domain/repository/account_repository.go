package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/morningforge/internal/domain/entity"
)

var ErrNotFound = errors.New("not found")

// AccountRepository is the credential store. Emails match exactly.
type AccountRepository interface {
	// Create inserts a new account, assigning ID and timestamps when empty.
	// Returns entity.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	// Replace overwrites the record with a.ID. Missing ids are a no-op. A stored
	// TrialStartDate is kept even when a carries none.
	Replace(ctx context.Context, a *entity.Account) error
	// StartTrial sets IsPro and TrialStartDate only if TrialStartDate is
	// still nil, returning entity.ErrTrialAlreadyUsed otherwise.
	StartTrial(ctx context.Context, id string, at time.Time) (*entity.Account, error)
	Count(ctx context.Context) (int, error)
}
