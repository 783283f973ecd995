package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/interface/middleware"
	"github.com/oksasatya/morningforge/pkg/helpers"
	"github.com/oksasatya/morningforge/pkg/response"
)

type AccountHandler struct {
	Svc     *application.AccountService
	Data    *application.DataService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAccountHandler(svc *application.AccountService, data *application.DataService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Data: data, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type signupRequest struct {
	Name     string `json:"name" binding:"required,displayname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type accountResponse struct {
	Account     application.AccountView `json:"account"`
	Entitlement entitlement.Summary     `json:"entitlement"`
}

func (h *AccountHandler) view(a *entity.Account) accountResponse {
	return accountResponse{Account: application.NewAccountView(a), Entitlement: h.Svc.Entitlement(a)}
}

func (h *AccountHandler) setCookies(c *gin.Context, sess *application.Session) map[string]any {
	t := sess.Tokens
	h.Cookies.SetPair(c, t.AccessToken, t.AccessTokenExpiry, t.RefreshToken, t.RefreshTokenExpiry)
	return map[string]any{"access_expires_at": t.AccessTokenExpiry, "refresh_expires_at": t.RefreshTokenExpiry}
}

func (h *AccountHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, err := h.Svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	meta := h.setCookies(c, sess)
	response.Success(c, http.StatusCreated, h.view(sess.Account), "signup successful", meta)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	meta := h.setCookies(c, sess)
	response.Success(c, http.StatusOK, h.view(sess.Account), "login successful", meta)
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	sess, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		h.Cookies.Clear(c)
		writeError(c, h.Logger, err)
		return
	}
	meta := h.setCookies(c, sess)
	response.Success(c, http.StatusOK, h.view(sess.Account), "token refreshed", meta)
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString(middleware.CtxSessionIDKey)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *AccountHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, h.view(middleware.CurrentAccount(c)), "account", nil)
}

func (h *AccountHandler) ActivateTrial(c *gin.Context) {
	a, err := h.Svc.ActivateTrial(c.Request.Context(), c.GetString(middleware.CtxSessionIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.view(a), "trial activated", nil)
}

func (h *AccountHandler) TogglePro(c *gin.Context) {
	a, err := h.Svc.TogglePro(c.Request.Context(), c.GetString(middleware.CtxSessionIDKey))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, h.view(a), "pro toggled", nil)
}

// Export uploads a JSON copy of the account's data and returns its URL.
func (h *AccountHandler) Export(c *gin.Context) {
	url, err := h.Data.Export(c.Request.Context(), middleware.CurrentAccount(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "export ready", nil)
}

// ResetData clears settings, routines, streak and profile. The account and
// its entitlement are kept.
func (h *AccountHandler) ResetData(c *gin.Context) {
	if err := h.Data.Reset(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset": true}, "data cleared", nil)
}
