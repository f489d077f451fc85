package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// 32 字节 = 64 个 hex 字符
const tokenLength = 32

type Session struct {
	Token   string    `json:"token"`
	UserID  string    `json:"user_id"`
	Expires time.Time `json:"expires"`
	Created time.Time `json:"created"`
}

// Store 会话存储。过期策略由存储端负责：
// Get 对不存在或已过期的 token 返回 (nil, nil)。
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store      Store
	ttl        time.Duration
	cookieName string
}

func NewManager(store Store, ttl time.Duration, cookieName string) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if cookieName == "" {
		cookieName = "sid"
	}
	return &Manager{store: store, ttl: ttl, cookieName: cookieName}
}

func (m *Manager) CookieName() string { return m.cookieName }

// Issue 为用户建立新会话
func (m *Manager) Issue(ctx context.Context, userID string) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	s := &Session{
		Token:   token,
		UserID:  userID,
		Expires: now.Add(m.ttl),
		Created: now,
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Resolve 按 token 取会话，不存在或过期返回 (nil, nil)
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	return m.store.Get(ctx, token)
}

// Destroy 幂等销毁
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.Delete(ctx, token)
}

func (m *Manager) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(m.ttl/time.Second), "/", "", false, true)
}

func (m *Manager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", false, true)
}

func newToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
