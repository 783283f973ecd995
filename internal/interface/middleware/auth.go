package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/pkg/helpers"
	"github.com/oksasatya/morningforge/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
	CtxAccountKey   = "account"
)

// Auth validates the access cookie and resolves its session through the
// account service, so every request sees an evaluated account. It sets
// userID, sessionID and account in the gin context.
func Auth(accounts *application.AccountService, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token")
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		a, err := accounts.Current(c.Request.Context(), claims.SessionID)
		if errors.Is(err, application.ErrNotAuthenticated) || (err == nil && a.ID != claims.UserID) {
			response.Abort(c, http.StatusUnauthorized, "session not found")
			return
		}
		if err != nil {
			response.Abort(c, http.StatusInternalServerError, "session lookup failed")
			return
		}

		c.Set(CtxUserIDKey, a.ID)
		c.Set(CtxSessionIDKey, claims.SessionID)
		c.Set(CtxAccountKey, a)
		c.Next()
	}
}

// CurrentAccount returns the account stored by Auth, or nil.
func CurrentAccount(c *gin.Context) *entity.Account {
	v, ok := c.Get(CtxAccountKey)
	if !ok {
		return nil
	}
	a, _ := v.(*entity.Account)
	return a
}
