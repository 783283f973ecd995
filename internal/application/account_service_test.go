package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/infrastructure/badgerdb"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

var t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newAccountService(t *testing.T, clock application.Clock) (*application.AccountService, stores, *recordingNotifier) {
	t.Helper()
	st := newStores(t)
	n := &recordingNotifier{}
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	svc := application.NewAccountService(st.accounts, st.sessions, entitlement.NewEvaluator(entitlement.DefaultTrialLength), jwt, clock, time.Hour, n, nil)
	return svc, st, n
}

func TestRegister_HashesPasswordAndStartsFree(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	a, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, "secret1", a.PasswordHash)
	assert.False(t, a.IsPro)
	assert.Nil(t, a.TrialStartDate)
	assert.Equal(t, t0, a.CreatedAt)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Other", "ana@x.com", "different")
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)
}

func TestFindByCredentials_Mismatch(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	_, err = svc.FindByCredentials(ctx, "ana@x.com", "wrong")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	_, err = svc.FindByCredentials(ctx, "nobody@x.com", "secret1")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestFindByCredentials_UnknownEmailStillHashes(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()
	_, err := svc.Register(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	var compared []string
	restore := application.SetDummyCompare(func(plain string) bool {
		compared = append(compared, plain)
		return false
	})
	t.Cleanup(restore)

	_, err = svc.FindByCredentials(ctx, "nobody@x.com", "guess1")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	assert.Equal(t, []string{"guess1"}, compared)

	_, err = svc.FindByCredentials(ctx, "ana@x.com", "wrong")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	assert.Len(t, compared, 1, "known emails compare against the stored hash")
}

func TestSignup_EstablishesSessionAndNotifies(t *testing.T) {
	svc, _, n := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.Tokens.AccessToken)
	assert.NotEmpty(t, sess.Tokens.RefreshToken)
	assert.Equal(t, []string{"ana@x.com"}, n.welcome)

	cur, err := svc.Current(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", cur.Email)
}

func TestSessionSnapshotHasNoPasswordHash(t *testing.T) {
	svc, st, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	snap, err := st.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Empty(t, snap.PasswordHash)
}

func TestLogout_ClearsSessionOnly(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, sess.ID))

	_, err = svc.Current(ctx, sess.ID)
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
	_, err = svc.ActivateTrial(ctx, sess.ID)
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
	_, err = svc.TogglePro(ctx, sess.ID)
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)

	again, err := svc.Login(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.Account.ID, again.Account.ID)
}

func TestActivateTrial_Once(t *testing.T) {
	svc, _, n := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()
	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	a, err := svc.ActivateTrial(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, a.IsPro)
	require.NotNil(t, a.TrialStartDate)
	assert.True(t, t0.Equal(*a.TrialStartDate))
	assert.True(t, svc.IsTrialUsed(a))
	assert.Equal(t, []string{"ana@x.com"}, n.trials)

	_, err = svc.ActivateTrial(ctx, sess.ID)
	assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)
}

func TestActivateTrial_ConcurrentSingleWinner(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()
	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	const workers = 8
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ActivateTrial(ctx, sess.ID); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)
}

// Register, start the trial, let it lapse, then log in again.
func TestTrialLapsesAcrossLogin(t *testing.T) {
	clock := newFakeClock(t0)
	svc, st, _ := newAccountService(t, clock)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	_, err = svc.ActivateTrial(ctx, sess.ID)
	require.NoError(t, err)

	clock.Set(t0.Add(7*24*time.Hour + time.Hour))

	again, err := svc.Login(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.False(t, again.Account.IsPro)
	require.NotNil(t, again.Account.TrialStartDate)
	assert.True(t, t0.Equal(*again.Account.TrialStartDate))

	stored, err := st.accounts.GetByID(ctx, again.Account.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPro, "correction is persisted")

	_, err = svc.ActivateTrial(ctx, again.ID)
	assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)
}

func TestTrialValidAtExactBoundary(t *testing.T) {
	clock := newFakeClock(t0)
	svc, _, _ := newAccountService(t, clock)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	_, err = svc.ActivateTrial(ctx, sess.ID)
	require.NoError(t, err)

	clock.Set(t0.Add(7 * 24 * time.Hour))
	a, err := svc.Current(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, a.IsPro)
}

func TestCurrent_ExpiresTrialForLiveSession(t *testing.T) {
	clock := newFakeClock(t0)
	svc, st, _ := newAccountService(t, clock)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	_, err = svc.ActivateTrial(ctx, sess.ID)
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)
	a, err := svc.Current(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, a.IsPro)

	snap, err := st.sessions.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, snap.IsPro)
}

func TestTogglePro_NeverRevertedWithoutTrial(t *testing.T) {
	clock := newFakeClock(t0)
	svc, _, _ := newAccountService(t, clock)
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)
	a, err := svc.TogglePro(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, a.IsPro)
	assert.False(t, a.IsTrialUsed())

	clock.Advance(30 * 24 * time.Hour)
	again, err := svc.Login(ctx, "ana@x.com", "secret1")
	require.NoError(t, err)
	assert.True(t, again.Account.IsPro)
	assert.Equal(t, entitlement.ProForced, svc.Entitlement(again.Account).Status)

	a, err = svc.TogglePro(ctx, again.ID)
	require.NoError(t, err)
	assert.False(t, a.IsPro)
}

// trialOnRead commits a trial start right after the first GetByID, so the
// caller holds a record that predates the activation.
type trialOnRead struct {
	*badgerdb.AccountRepository
	at   time.Time
	once sync.Once
}

func (r *trialOnRead) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	a, err := r.AccountRepository.GetByID(ctx, id)
	if err != nil {
		return a, err
	}
	r.once.Do(func() { _, _ = r.AccountRepository.StartTrial(ctx, id, r.at) })
	return a, nil
}

func TestTogglePro_KeepsTrialStartedMeanwhile(t *testing.T) {
	clock := newFakeClock(t0)
	st := newStores(t)
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	ctx := context.Background()

	plain := application.NewAccountService(st.accounts, st.sessions, entitlement.NewEvaluator(0), jwt, clock, time.Hour, nil, nil)
	sess, err := plain.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	racing := &trialOnRead{AccountRepository: st.accounts, at: t0}
	svc := application.NewAccountService(racing, st.sessions, entitlement.NewEvaluator(0), jwt, clock, time.Hour, nil, nil)
	a, err := svc.TogglePro(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, a.TrialStartDate)
	assert.True(t, t0.Equal(*a.TrialStartDate))

	stored, err := st.accounts.GetByID(ctx, sess.Account.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TrialStartDate)
	assert.True(t, t0.Equal(*stored.TrialStartDate))

	_, err = plain.ActivateTrial(ctx, sess.ID)
	assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)
}

func TestRefresh_RotatesSession(t *testing.T) {
	svc, _, _ := newAccountService(t, newFakeClock(t0))
	ctx := context.Background()

	sess, err := svc.Signup(ctx, "Ana", "ana@x.com", "secret1")
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, sess.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.ID, next.ID)

	_, err = svc.Current(ctx, sess.ID)
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
	_, err = svc.Refresh(ctx, sess.Tokens.RefreshToken)
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
	_, err = svc.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, application.ErrNotAuthenticated)
}
