package badgerdb

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	"github.com/oksasatya/morningforge/internal/domain/repository"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestOpenWithPathPersists(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)

	repo := NewAccountRepository(db)
	a := &entity.Account{Name: "Ana", Email: "ana@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(context.Background(), a))
	require.NoError(t, db.Close())

	db2, err := Open(Config{Path: dir})
	require.NoError(t, err)
	defer db2.Close()
	got, err := NewAccountRepository(db2).GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestAccountRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))

	a := &entity.Account{Name: "Ana", Email: "ana@x.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, a))
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ana@x.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byEmail.ID)
	assert.Nil(t, byEmail.TrialStartDate)
	assert.False(t, byEmail.IsPro)

	byID, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", byID.Name)

	_, err = repo.GetByEmail(ctx, "ANA@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))

	require.NoError(t, repo.Create(ctx, &entity.Account{Name: "A", Email: "dup@x.com"}))
	err := repo.Create(ctx, &entity.Account{Name: "B", Email: "dup@x.com"})
	assert.ErrorIs(t, err, entity.ErrDuplicateEmail)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAccountRepository_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Create(ctx, &entity.Account{Name: "racer", Email: "race@x.com"})
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, entity.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, ok)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAccountRepository_ReplaceMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))

	require.NoError(t, repo.Replace(ctx, &entity.Account{ID: "ghost", Email: "ghost@x.com"}))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	_, err = repo.GetByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_ReplaceMovesEmailIndex(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))

	a := &entity.Account{Name: "Ana", Email: "old@x.com"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, &entity.Account{Name: "Bo", Email: "bo@x.com"}))

	a.Email = "bo@x.com"
	assert.ErrorIs(t, repo.Replace(ctx, a), entity.ErrDuplicateEmail)

	a.Email = "new@x.com"
	a.IsPro = true
	require.NoError(t, repo.Replace(ctx, a))
	_, err := repo.GetByEmail(ctx, "old@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	got, err := repo.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, got.IsPro)
}

func TestAccountRepository_StartTrialOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))
	a := &entity.Account{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, repo.Create(ctx, a))

	t0 := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	got, err := repo.StartTrial(ctx, a.ID, t0)
	require.NoError(t, err)
	assert.True(t, got.IsPro)
	require.NotNil(t, got.TrialStartDate)
	assert.True(t, t0.Equal(*got.TrialStartDate))

	_, err = repo.StartTrial(ctx, a.ID, t0.Add(time.Hour))
	assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, t0.Equal(*stored.TrialStartDate))

	_, err = repo.StartTrial(ctx, "missing", t0)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountRepository_ReplaceKeepsTrialStart(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))
	a := &entity.Account{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, repo.Create(ctx, a))
	stale, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)

	t0 := time.Date(2025, 1, 1, 7, 0, 0, 0, time.UTC)
	_, err = repo.StartTrial(ctx, a.ID, t0)
	require.NoError(t, err)

	stale.Name = "Ana B"
	require.NoError(t, repo.Replace(ctx, stale))
	assert.Nil(t, stale.TrialStartDate, "caller's record is not mutated")

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana B", got.Name)
	require.NotNil(t, got.TrialStartDate)
	assert.True(t, t0.Equal(*got.TrialStartDate))

	_, err = repo.StartTrial(ctx, a.ID, t0.Add(time.Hour))
	assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)
}

func TestAccountRepository_ConcurrentStartTrial(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(openTestDB(t))
	a := &entity.Account{Name: "Ana", Email: "ana@x.com"}
	require.NoError(t, repo.Create(ctx, a))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.StartTrial(ctx, a.ID, time.Unix(int64(1700000000+i), 0).UTC())
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, entity.ErrTrialAlreadyUsed)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(openTestDB(t))

	got, err := repo.Get(ctx, "none")
	require.NoError(t, err)
	assert.Nil(t, got)

	a := &entity.Account{ID: "u1", Name: "Ana", Email: "ana@x.com", IsPro: true}
	require.NoError(t, repo.Put(ctx, "s1", a, time.Hour))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.True(t, got.IsPro)

	require.NoError(t, repo.Delete(ctx, "s1"))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBucketRepository_IsolatedPerAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository(openTestDB(t))

	require.NoError(t, repo.Write(ctx, "A", keyspace.Routines, []byte(`[{"id":"r1"}]`)))
	b, err := repo.Read(ctx, "B", keyspace.Routines)
	require.NoError(t, err)
	assert.Nil(t, b)

	b, err = repo.Read(ctx, "A", keyspace.Routines)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"r1"}]`, string(b))

	_, err = repo.Read(ctx, "", keyspace.Routines)
	assert.ErrorIs(t, err, keyspace.ErrEmptyAccount)
}

func TestBucketRepository_UpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository(openTestDB(t))

	incr := func(cur []byte) ([]byte, error) {
		var n int
		if cur != nil {
			if err := json.Unmarshal(cur, &n); err != nil {
				return nil, err
			}
		}
		return json.Marshal(n + 1)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Update(ctx, "A", keyspace.Streak, incr))
		}()
	}
	wg.Wait()

	b, err := repo.Read(ctx, "A", keyspace.Streak)
	require.NoError(t, err)
	assert.Equal(t, "5", string(b))
}

func TestBucketRepository_DeleteAllLeavesOthers(t *testing.T) {
	ctx := context.Background()
	repo := NewBucketRepository(openTestDB(t))

	require.NoError(t, repo.Write(ctx, "a", keyspace.Settings, []byte(`{}`)))
	require.NoError(t, repo.Write(ctx, "a", keyspace.Streak, []byte(`{}`)))
	require.NoError(t, repo.Write(ctx, "a:b", keyspace.Settings, []byte(`{"theme":"dark"}`)))

	require.NoError(t, repo.DeleteAll(ctx, "a"))

	b, err := repo.Read(ctx, "a", keyspace.Settings)
	require.NoError(t, err)
	assert.Nil(t, b)
	b, err = repo.Read(ctx, "a:b", keyspace.Settings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, string(b))
}
