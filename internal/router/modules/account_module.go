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

// AccountModule wires signup, login, session and entitlement routes.
// Public: POST /api/signup, /api/login, /api/refresh
// Protected: POST /api/logout, GET /api/account, POST /api/account/trial,
// POST /api/account/export, DELETE /api/account/data and, when enabled,
// POST /api/account/pro/toggle.
type AccountModule struct {
	Handler        *handlers.AccountHandler
	Accounts       *application.AccountService
	JWT            *helpers.JWTManager
	Redis          *redis.Client
	AllowTogglePro bool
}

func NewAccountModule(h *handlers.AccountHandler, accounts *application.AccountService, jwt *helpers.JWTManager, rdb *redis.Client, allowTogglePro bool) *AccountModule {
	return &AccountModule{Handler: h, Accounts: accounts, JWT: jwt, Redis: rdb, AllowTogglePro: allowTogglePro}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Accounts, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/account", m.Handler.Me)
		auth.POST("/account/trial", m.Handler.ActivateTrial)
		auth.POST("/account/export", middleware.RateLimit(m.Redis, 5, time.Hour, middleware.KeyByUserAndPath(), nil), m.Handler.Export)
		auth.DELETE("/account/data", m.Handler.ResetData)
		if m.AllowTogglePro {
			auth.POST("/account/pro/toggle", m.Handler.TogglePro)
		}
	}
}
