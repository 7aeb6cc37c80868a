package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"column/internal/domain"
)

// KeyUser 当前登录用户（*domain.User）
const KeyUser = "user"

// Authenticator 校验 token 并取回最新的用户数据
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

func bearer(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	return tok, tok != ""
}

// AuthRequired roles 为零值时只要求登录
func AuthRequired(a Authenticator, roles domain.RoleSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		u, err := a.Authenticate(c.Request.Context(), tok)
		if err != nil {
			abortErr(c, err)
			return
		}
		if !roles.Empty() && !roles.Allows(u.Role) {
			abort(c, http.StatusForbidden, "Forbidden")
			return
		}
		c.Set(KeyUser, u)
		c.Next()
	}
}

// AuthOptional token 缺失或无效时按匿名继续
func AuthOptional(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := bearer(c); ok {
			if u, err := a.Authenticate(c.Request.Context(), tok); err == nil {
				c.Set(KeyUser, u)
			}
		}
		c.Next()
	}
}

// CurrentUser 未登录返回 nil
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(KeyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}
