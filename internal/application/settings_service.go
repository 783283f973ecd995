package application

import (
	"context"

	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

const freeTheme = "classic"

type SettingsService struct {
	Buckets repo.BucketRepository
}

func NewSettingsService(buckets repo.BucketRepository) *SettingsService {
	return &SettingsService{Buckets: buckets}
}

// Get returns stored settings layered over the defaults. A Pro theme kept
// from an expired trial is reported as the free classic theme.
func (s *SettingsService) Get(ctx context.Context, a *entity.Account) (entity.Settings, error) {
	if a == nil || a.ID == "" {
		return entity.Settings{}, ErrNotAuthenticated
	}
	var stored entity.Settings
	if _, err := readBucket(ctx, s.Buckets, a.ID, keyspace.Settings, &stored); err != nil {
		return entity.Settings{}, err
	}
	return effective(stored.MergeOver(entity.DefaultSettings()), a), nil
}

// Update merges the set fields of in over the current settings and stores
// the result. Pro themes require entitlement.
func (s *SettingsService) Update(ctx context.Context, a *entity.Account, in entity.Settings) (entity.Settings, error) {
	if a == nil || a.ID == "" {
		return entity.Settings{}, ErrNotAuthenticated
	}
	if entitlement.IsPremiumTheme(in.PremiumTheme) && !a.IsPro {
		return entity.Settings{}, &LockedError{Features: []string{"theme:" + in.PremiumTheme}}
	}
	var saved entity.Settings
	err := updateBucket(ctx, s.Buckets, a.ID, keyspace.Settings, func(cur entity.Settings) (entity.Settings, error) {
		saved = in.MergeOver(cur.MergeOver(entity.DefaultSettings()))
		return saved, nil
	})
	if err != nil {
		return entity.Settings{}, err
	}
	return effective(saved, a), nil
}

// Reset stores the defaults.
func (s *SettingsService) Reset(ctx context.Context, accountID string) (entity.Settings, error) {
	if accountID == "" {
		return entity.Settings{}, ErrNotAuthenticated
	}
	def := entity.DefaultSettings()
	if err := writeBucket(ctx, s.Buckets, accountID, keyspace.Settings, def); err != nil {
		return entity.Settings{}, err
	}
	return def, nil
}

func effective(st entity.Settings, a *entity.Account) entity.Settings {
	if entitlement.IsPremiumTheme(st.PremiumTheme) && !a.IsPro {
		st.PremiumTheme = freeTheme
	}
	return st
}
