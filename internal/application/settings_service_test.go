package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
)

func boolp(b bool) *bool { return &b }

func TestSettings_DefaultsAndMerge(t *testing.T) {
	svc := application.NewSettingsService(newStores(t).buckets)
	ctx := context.Background()
	free := &entity.Account{ID: "acct"}

	got, err := svc.Get(ctx, free)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), got)

	got, err = svc.Update(ctx, free, entity.Settings{Theme: "dark", Notifications: entity.NotificationSettings{Email: boolp(true)}})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.True(t, *got.Notifications.Email)
	assert.True(t, *got.Notifications.Motivation)

	got, err = svc.Update(ctx, free, entity.Settings{FontSize: "lg"})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "lg", got.FontSize)

	got, err = svc.Reset(ctx, free.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultSettings(), got)
}

func TestSettings_ProThemeGate(t *testing.T) {
	svc := application.NewSettingsService(newStores(t).buckets)
	ctx := context.Background()
	pro := &entity.Account{ID: "acct", IsPro: true}
	free := &entity.Account{ID: "acct"}

	_, err := svc.Update(ctx, free, entity.Settings{PremiumTheme: "neon_focus"})
	assert.ErrorIs(t, err, application.ErrProRequired)

	got, err := svc.Update(ctx, pro, entity.Settings{PremiumTheme: "neon_focus"})
	require.NoError(t, err)
	assert.Equal(t, "neon_focus", got.PremiumTheme)

	// Entitlement lapsed: the stored theme is kept but not applied.
	got, err = svc.Get(ctx, free)
	require.NoError(t, err)
	assert.Equal(t, "classic", got.PremiumTheme)
}
