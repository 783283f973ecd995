package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
)

func TestMarkCompletedToday(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC))
	svc := application.NewStreakService(newStores(t).buckets, clock)
	ctx := context.Background()

	st, err := svc.Get(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.Streak{}, st)

	st, out, err := svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.StreakUpdated, out)
	assert.Equal(t, entity.Streak{CurrentStreak: 1, LastCompletedDate: "2025-01-10"}, st)

	clock.Advance(10 * time.Hour)
	st, out, err = svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.StreakAlreadyCompleted, out)
	assert.Equal(t, 1, st.CurrentStreak)

	clock.Set(time.Date(2025, 1, 11, 6, 0, 0, 0, time.UTC))
	st, out, err = svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.StreakUpdated, out)
	assert.Equal(t, entity.Streak{CurrentStreak: 2, LastCompletedDate: "2025-01-11"}, st)

	clock.Set(time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC))
	st, _, err = svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.Streak{CurrentStreak: 1, LastCompletedDate: "2025-01-14"}, st)

	got, err := svc.Get(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestMarkCompletedToday_AcrossMonthBoundary(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 2, 29, 23, 30, 0, 0, time.UTC))
	svc := application.NewStreakService(newStores(t).buckets, clock)
	ctx := context.Background()

	_, _, err := svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	st, out, err := svc.MarkCompletedToday(ctx, "acct")
	require.NoError(t, err)
	assert.Equal(t, entity.StreakUpdated, out)
	assert.Equal(t, entity.Streak{CurrentStreak: 2, LastCompletedDate: "2024-03-01"}, st)
}

func TestStreaksAreIsolated(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 10, 7, 0, 0, 0, time.UTC))
	svc := application.NewStreakService(newStores(t).buckets, clock)
	ctx := context.Background()

	_, _, err := svc.MarkCompletedToday(ctx, "a")
	require.NoError(t, err)
	st, err := svc.Get(ctx, "b")
	require.NoError(t, err)
	assert.Zero(t, st.CurrentStreak)
}
