package modules

import (
	"context"
	"expvar"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/morningforge/internal/interface/middleware"
)

// AccountCounter reports the number of registered accounts.
type AccountCounter interface {
	Count(ctx context.Context) (int, error)
}

var (
	publishOnce    sync.Once
	currentCounter atomic.Value // counterBox
)

type counterBox struct{ c AccountCounter }

func accountsTotal() any {
	box, _ := currentCounter.Load().(counterBox)
	c := box.c
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	n, err := c.Count(ctx)
	if err != nil {
		return -1
	}
	return n
}

// DebugModule exposes expvar at /api/debug/vars, including an
// "accounts_total" gauge read from the credential store.
type DebugModule struct {
	Redis    *redis.Client
	Accounts AccountCounter
}

func NewDebugModule(rdb *redis.Client, accounts AccountCounter) *DebugModule {
	return &DebugModule{Redis: rdb, Accounts: accounts}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	if m.Accounts != nil {
		currentCounter.Store(counterBox{c: m.Accounts})
	}
	publishOnce.Do(func() { expvar.Publish("accounts_total", expvar.Func(accountsTotal)) })
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
