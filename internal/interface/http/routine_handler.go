package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/interface/middleware"
	"github.com/oksasatya/morningforge/pkg/response"
)

type RoutineHandler struct {
	Routines   *application.RoutineService
	Generation *application.GenerationService
	Logger     *logrus.Logger
}

func NewRoutineHandler(routines *application.RoutineService, gen *application.GenerationService, logger *logrus.Logger) *RoutineHandler {
	return &RoutineHandler{Routines: routines, Generation: gen, Logger: logger}
}

type routineRequest struct {
	Title   string          `json:"title" binding:"required,max=200"`
	Goals   []string        `json:"goals" binding:"max=20"`
	Style   string          `json:"style" binding:"max=40"`
	Routine json.RawMessage `json:"routine" binding:"required"`
}

func (r routineRequest) toEntity() entity.SavedRoutine {
	return entity.SavedRoutine{Title: r.Title, Goals: r.Goals, Style: r.Style, Routine: r.Routine}
}

type generateRequest struct {
	Goals   []string        `json:"goals" binding:"required,min=1,max=10"`
	Style   string          `json:"routine_style" binding:"max=40"`
	Details json.RawMessage `json:"details"`
}

func (h *RoutineHandler) List(c *gin.Context) {
	list, err := h.Routines.List(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "routines", map[string]any{"count": len(list)})
}

func (h *RoutineHandler) Save(c *gin.Context) {
	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r, err := h.Routines.Save(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req.toEntity())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, r, "routine saved", nil)
}

// Update replaces the routine with the path id. Unknown ids answer 404 and
// leave the library unchanged.
func (h *RoutineHandler) Update(c *gin.Context) {
	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	r := req.toEntity()
	r.ID = c.Param("id")
	found, err := h.Routines.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), r)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if !found {
		response.Error[any](c, http.StatusNotFound, "routine not found", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"id": r.ID}, "routine updated", nil)
}

// Delete succeeds whether or not the id existed.
func (h *RoutineHandler) Delete(c *gin.Context) {
	if err := h.Routines.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "routine deleted", nil)
}

func (h *RoutineHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"q": "is required"})
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	list, err := h.Routines.Search(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), q, size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "search results", map[string]any{"count": len(list)})
}

func (h *RoutineHandler) Generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p := entity.RoutineProfile{Goals: req.Goals, Style: req.Style, Details: req.Details}
	out, err := h.Generation.Generate(c.Request.Context(), middleware.CurrentAccount(c), p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, out, "routine generated", nil)
}

// LastProfile returns the last setup-form profile so the form can be
// pre-filled. Data is null when none was stored.
func (h *RoutineHandler) LastProfile(c *gin.Context) {
	p, err := h.Generation.LastProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}
