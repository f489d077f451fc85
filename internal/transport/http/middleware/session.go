package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-article-cms/internal/core/sessions"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/transport/http/response"
)

const keyCurrentUser = "currentUser"

// LoadUser 解析会话 cookie 并挂载当前用户，不强制登录。
// cookie 缺失、会话过期、用户已不存在都静默放行（按未登录处理）。
func LoadUser(m *sessions.Manager, users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.CookieName())
		if err != nil || token == "" {
			c.Next()
			return
		}
		sess, err := m.Resolve(c.Request.Context(), token)
		if err != nil || sess == nil {
			c.Next()
			return
		}
		u, err := users.FindByID(c.Request.Context(), sess.UserID)
		if err != nil || u == nil {
			c.Next()
			return
		}
		c.Set(keyCurrentUser, u)
		c.Next()
	}
}

// CurrentUser 取 LoadUser 挂载的用户，未登录返回 nil
func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(keyCurrentUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// RequireAuth 必须已登录
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			response.Fail(c, http.StatusForbidden, "Unauthorized")
			return
		}
		c.Next()
	}
}

// RequirePermission 必须已登录且角色允许该操作
func RequirePermission(action domain.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !domain.Permits(u.Role, action) {
			response.Fail(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
