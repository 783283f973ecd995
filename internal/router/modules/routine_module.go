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

// RoutineModule serves the saved-routine library and generation.
type RoutineModule struct {
	Handler  *handlers.RoutineHandler
	Accounts *application.AccountService
	JWT      *helpers.JWTManager
	Redis    *redis.Client
}

func NewRoutineModule(h *handlers.RoutineHandler, accounts *application.AccountService, jwt *helpers.JWTManager, rdb *redis.Client) *RoutineModule {
	return &RoutineModule{Handler: h, Accounts: accounts, JWT: jwt, Redis: rdb}
}

func (m *RoutineModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/routines")
	auth.Use(middleware.Auth(m.Accounts, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.List)
		auth.POST("", m.Handler.Save)
		auth.GET("/search", m.Handler.Search)
		auth.GET("/profile", m.Handler.LastProfile)
		auth.POST("/generate", middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserAndPath(), nil), m.Handler.Generate)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
