package application_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/infrastructure/badgerdb"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type stores struct {
	db       *badger.DB
	accounts *badgerdb.AccountRepository
	sessions *badgerdb.SessionRepository
	buckets  *badgerdb.BucketRepository
}

func newStores(t *testing.T) stores {
	t.Helper()
	db, err := badgerdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return stores{
		db:       db,
		accounts: badgerdb.NewAccountRepository(db),
		sessions: badgerdb.NewSessionRepository(db),
		buckets:  badgerdb.NewBucketRepository(db),
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	welcome []string
	trials  []string
}

func (n *recordingNotifier) Welcome(_ context.Context, a *entity.Account) {
	n.mu.Lock()
	n.welcome = append(n.welcome, a.Email)
	n.mu.Unlock()
}

func (n *recordingNotifier) TrialStarted(_ context.Context, a *entity.Account) {
	n.mu.Lock()
	n.trials = append(n.trials, a.Email)
	n.mu.Unlock()
}

type fakePublisher struct {
	jobs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body)
	return nil
}

type fakeGenerator struct {
	out      json.RawMessage
	err      error
	payloads [][]byte
}

func (g *fakeGenerator) Generate(_ context.Context, payload []byte) (json.RawMessage, error) {
	g.payloads = append(g.payloads, payload)
	return g.out, g.err
}
