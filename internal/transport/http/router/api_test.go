package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-article-cms/internal/core/sessions"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/service"
	"go-gin-article-cms/internal/transport/http/handler"
	"go-gin-article-cms/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// --- in-memory fakes ---

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]domain.User
	byName map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}, byName: map[string]domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[u.Username]; ok {
		return errors.New("duplicate key")
	}
	f.byID[u.ID] = *u
	f.byName[u.Username] = *u
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, name string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byName[name]; ok {
		return &u, nil
	}
	return nil, nil
}

type fakeArticleRepo struct {
	mu    sync.Mutex
	items map[string]domain.Article
	clock time.Time
}

func newFakeArticleRepo() *fakeArticleRepo {
	return &fakeArticleRepo{
		items: map[string]domain.Article{},
		clock: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeArticleRepo) ListNewestFirst(context.Context) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Article, 0, len(f.items))
	for _, a := range f.items {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeArticleRepo) FindByID(_ context.Context, id string) (*domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.items[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeArticleRepo) Create(_ context.Context, a *domain.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.CreatedAt = f.clock
	a.UpdatedAt = f.clock
	f.clock = f.clock.Add(time.Second)
	f.items[a.ID] = *a
	return nil
}

func (f *fakeArticleRepo) Update(_ context.Context, a *domain.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[a.ID] = *a
	return nil
}

func (f *fakeArticleRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

// --- harness ---

type env struct {
	r        *gin.Engine
	users    *fakeUserRepo
	articles *fakeArticleRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	users := newFakeUserRepo()
	articles := newFakeArticleRepo()
	sm := sessions.NewManager(sessions.NewMemoryStore(), time.Hour, "sid")
	authH := handler.NewAuthHandler(service.NewAuthService(users), sm)
	articleH := handler.NewArticleHandler(service.NewArticleService(articles))
	r := NewAPIEngine(zap.NewNop(), authH, articleH, sm, users, Options{})
	return &env{r: r, users: users, articles: articles}
}

func (e *env) seedUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           utils.NewID(),
		Username:     username,
		PasswordHash: utils.HashPassword(password),
		Role:         role,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *env) do(t *testing.T, method, path string, body any, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", gin.H{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code)
	return sessionCookie(t, w)
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "sid" && c.Value != "" {
			return c.Name + "=" + c.Value
		}
	}
	t.Fatal("no session cookie in response")
	return ""
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func createdID(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, w, &body)
	article, _ := body["articleCreated"].(map[string]any)
	require.NotNil(t, article)
	id, _ := article["_id"].(string)
	require.NotEmpty(t, id)
	return id
}

// --- tests ---

func TestSignup(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/signup", gin.H{"username": "fresh", "password": "pw"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "fresh", body["username"])
	assert.Equal(t, "user", body["role"])
	assert.NotEmpty(t, body["_id"])
	assert.NotContains(t, w.Body.String(), "pw") // 不回传密码

	// 注册即登录
	w = e.do(t, http.MethodGet, "/api/loggedin", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	// 重复用户名
	w = e.do(t, http.MethodPost, "/api/signup", gin.H{"username": "fresh", "password": "pw2"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSignupMissingCredentials(t *testing.T) {
	e := newEnv(t)

	for _, body := range []gin.H{
		{"username": "bob"},
		{"username": "bob", "password": "  "},
		{"password": "pw"},
		{},
	} {
		w := e.do(t, http.MethodPost, "/api/signup", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)

	w := e.do(t, http.MethodPost, "/api/login", gin.H{"username": "kash", "password": "kash"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", gin.H{"username": "kash", "password": "1234"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/login", gin.H{"username": "ghost", "password": "kash"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutIdempotent(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	cookie := e.login(t, "kash", "kash")

	w := e.do(t, http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/loggedin", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 再次登出依然 200
	w = e.do(t, http.MethodPost, "/api/logout", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListPublicAndOrdered(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	cookie := e.login(t, "kash", "kash")

	for _, title := range []string{"first", "second", "third"} {
		w := e.do(t, http.MethodPost, "/api/articles", gin.H{"title": title, "contents": "c"}, cookie)
		require.Equal(t, http.StatusOK, w.Code)
	}

	// 未登录也能读
	w := e.do(t, http.MethodGet, "/api/articles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]any
	decode(t, w, &items)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0]["title"])
	assert.Equal(t, "second", items[1]["title"])
	assert.Equal(t, "first", items[2]["title"])
}

func TestListEmptyIsArray(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/articles", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestGetInvalidID(t *testing.T) {
	e := newEnv(t)

	// 格式非法与合法但不存在都按 400 处理，绝不是 404
	for _, id := range []string{"abc12", uuid.NewString()} {
		w := e.do(t, http.MethodGet, "/api/articles/"+id, nil, "")
		require.Equal(t, http.StatusBadRequest, w.Code)
		var body map[string]any
		decode(t, w, &body)
		assert.Equal(t, "Invalid ID. Post not found.", body["error"])
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "plain", "pw", domain.RoleUser)
	cookie := e.login(t, "plain", "pw")

	w := e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "C"}, cookie)
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "You do not have permission to perform this action", body["message"])

	// 未登录同样 403
	w = e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "C"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 没有落库
	w = e.do(t, http.MethodGet, "/api/articles", nil, "")
	var items []map[string]any
	decode(t, w, &items)
	assert.Len(t, items, 0)
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	cookie := e.login(t, "kash", "kash")

	w := e.do(t, http.MethodPost, "/api/articles", gin.H{"contents": "C"}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]map[string]any
	decode(t, w, &body)
	assert.Equal(t, "is required", body["errors"]["title"])

	w = e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "   "}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	decode(t, w, &body)
	assert.Equal(t, "is required", body["errors"]["content"])
}

func TestUpdateRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	e.seedUser(t, "plain", "pw", domain.RoleUser)
	adminCookie := e.login(t, "kash", "kash")
	userCookie := e.login(t, "plain", "pw")

	w := e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "C"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	id := createdID(t, w)

	w = e.do(t, http.MethodPatch, "/api/articles/"+id, gin.H{"title": "X", "contents": "Y"}, userCookie)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 原值未被改动
	w = e.do(t, http.MethodGet, "/api/articles/"+id, nil, "")
	var got map[string]any
	decode(t, w, &got)
	assert.Equal(t, "T", got["title"])
	assert.Equal(t, "C", got["contents"])
}

func TestDeleteByAnyAuthenticatedUser(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	e.seedUser(t, "plain", "pw", domain.RoleUser)
	adminCookie := e.login(t, "kash", "kash")
	userCookie := e.login(t, "plain", "pw")

	w := e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "C"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	id := createdID(t, w)

	// 未登录删除 403 Unauthorized
	w = e.do(t, http.MethodDelete, "/api/articles/"+id, nil, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "Unauthorized", body["message"])

	// 普通用户（非 owner、非 admin）可以删除：既有策略，保持原样
	w = e.do(t, http.MethodDelete, "/api/articles/"+id, nil, userCookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/api/articles", nil, "")
	var items []map[string]any
	decode(t, w, &items)
	assert.Len(t, items, 0)
}

func TestDeleteEdgeCases(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "plain", "pw", domain.RoleUser)
	cookie := e.login(t, "plain", "pw")

	w := e.do(t, http.MethodDelete, "/api/articles/not-an-id", nil, cookie)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, "Invalid ID. Article does not exist.", body["error"])

	// 合法但不存在：删除不算错误，article 为 null
	w = e.do(t, http.MethodDelete, "/api/articles/"+uuid.NewString(), nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var ok map[string]any
	decode(t, w, &ok)
	assert.Equal(t, true, ok["success"])
	assert.Nil(t, ok["article"])
}

func TestAdminLifecycle(t *testing.T) {
	e := newEnv(t)
	admin := e.seedUser(t, "kash", "kash", domain.RoleAdmin)
	e.seedUser(t, "plain", "pw", domain.RoleUser)
	adminCookie := e.login(t, "kash", "kash")
	userCookie := e.login(t, "plain", "pw")

	// create
	w := e.do(t, http.MethodPost, "/api/articles", gin.H{"title": "T", "contents": "C"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var created map[string]any
	decode(t, w, &created)
	assert.Equal(t, true, created["success"])
	article := created["articleCreated"].(map[string]any)
	id := article["_id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, admin.ID, article["_owner"])

	// get
	w = e.do(t, http.MethodGet, "/api/articles/"+id, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]any
	decode(t, w, &got)
	assert.Equal(t, "T", got["title"])
	assert.Equal(t, "C", got["contents"])

	// update
	w = e.do(t, http.MethodPatch, "/api/articles/"+id, gin.H{"title": "T2", "contents": "C2"}, adminCookie)
	require.Equal(t, http.StatusOK, w.Code)
	var updated map[string]any
	decode(t, w, &updated)
	assert.Equal(t, true, updated["success"])

	w = e.do(t, http.MethodGet, "/api/articles/"+id, nil, "")
	decode(t, w, &got)
	assert.Equal(t, "T2", got["title"])
	assert.Equal(t, "C2", got["contents"])
	assert.Equal(t, admin.ID, got["_owner"]) // owner 不随 update 变

	// 任意登录用户删除
	w = e.do(t, http.MethodDelete, "/api/articles/"+id, nil, userCookie)
	require.Equal(t, http.StatusOK, w.Code)

	// 删除后 get 回到 400
	w = e.do(t, http.MethodGet, "/api/articles/"+id, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnmatchedAPIRoute(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodGet, "/api/nope", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]any
	decode(t, w, &body)
	assert.Equal(t, float64(404), body["status"])
	assert.Equal(t, "Not Found", body["message"])
}
