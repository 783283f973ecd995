package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Module is a feature area that mounts its routes under /api.
type Module interface {
	Register(api *gin.RouterGroup)
}

// Registry collects API-wide middleware and feature modules and mounts them
// under /api.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts middleware, a liveness probe at /api/health and every
// module, in that order.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	r.API.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
