package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-article-cms/internal/core/sessions"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/service"
	"go-gin-article-cms/internal/transport/http/middleware"
	"go-gin-article-cms/internal/transport/http/response"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions *sessions.Manager
}

func NewAuthHandler(auth *service.AuthService, sm *sessions.Manager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sm}
}

type credentialsIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup POST /api/signup
// 缺少用户名/密码 → 401；用户名已占用 → 409；成功即建立会话
func (h *AuthHandler) Signup(c *gin.Context) {
	var in credentialsIn
	_ = c.ShouldBindJSON(&in) // body 非法按缺少凭证处理

	u, err := h.auth.Signup(c.Request.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		response.Fail(c, http.StatusUnauthorized, "Username and password are required")
		return
	case errors.Is(err, domain.ErrUsernameTaken):
		response.Fail(c, http.StatusConflict, "Username already taken")
		return
	case err != nil:
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	h.establishSession(c, u)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in credentialsIn
	_ = c.ShouldBindJSON(&in)

	u, err := h.auth.Login(c.Request.Context(), in.Username, in.Password)
	switch {
	case errors.Is(err, domain.ErrBadCredentials):
		response.Fail(c, http.StatusUnauthorized, "Invalid username or password")
		return
	case err != nil:
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}

	h.establishSession(c, u)
}

// Logout POST /api/logout，幂等
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.sessions.CookieName()); err == nil && token != "" {
		_ = h.sessions.Destroy(c.Request.Context(), token)
	}
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Loggedin GET /api/loggedin 返回会话对应的当前用户
func (h *AuthHandler) Loggedin(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		response.Fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) establishSession(c *gin.Context, u *domain.User) {
	sess, err := h.sessions.Issue(c.Request.Context(), u.ID)
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	h.sessions.SetCookie(c, sess.Token)
	c.JSON(http.StatusOK, u)
}
