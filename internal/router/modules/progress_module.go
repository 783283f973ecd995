package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/morningforge/internal/application"
	handlers "github.com/oksasatya/morningforge/internal/interface/http"
	"github.com/oksasatya/morningforge/internal/interface/middleware"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

// ProgressModule serves /api/streak and /api/settings.
type ProgressModule struct {
	Handler  *handlers.ProgressHandler
	Accounts *application.AccountService
	JWT      *helpers.JWTManager
	Redis    *redis.Client
}

func NewProgressModule(h *handlers.ProgressHandler, accounts *application.AccountService, jwt *helpers.JWTManager, rdb *redis.Client) *ProgressModule {
	return &ProgressModule{Handler: h, Accounts: accounts, JWT: jwt, Redis: rdb}
}

func (m *ProgressModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Accounts, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/streak", m.Handler.GetStreak)
		auth.POST("/streak/complete", m.Handler.CompleteToday)
		auth.GET("/settings", m.Handler.GetSettings)
		auth.PUT("/settings", m.Handler.UpdateSettings)
		auth.POST("/settings/reset", m.Handler.ResetSettings)
	}
}
