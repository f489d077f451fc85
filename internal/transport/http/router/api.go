package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-gin-article-cms/internal/core/sessions"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/transport/http/handler"
	mdw "go-gin-article-cms/internal/transport/http/middleware"
	"go-gin-article-cms/internal/transport/http/response"
)

type Options struct {
	CORSOrigin string // 凭证式单源（SPA），空则不挂 CORS
}

func NewAPIEngine(
	l *zap.Logger,
	authH *handler.AuthHandler,
	articleH *handler.ArticleHandler,
	sm *sessions.Manager,
	users domain.UserRepository,
	opt Options,
) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)
	if opt.CORSOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{opt.CORSOrigin},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(mdw.LoadUser(sm, users))

	api.POST("/signup", authH.Signup)
	api.POST("/login", authH.Login)
	api.POST("/logout", authH.Logout)
	api.GET("/loggedin", authH.Loggedin)

	arts := api.Group("/articles")
	arts.GET("", articleH.List)
	arts.GET("/:id", articleH.Get)
	arts.POST("", mdw.RequirePermission(domain.ActionCreateArticle), articleH.Create)
	arts.PATCH("/:id", mdw.RequirePermission(domain.ActionUpdateArticle), articleH.Update)
	arts.DELETE("/:id", mdw.RequireAuth(), articleH.Delete)

	// /api 下未匹配的路径统一 404 JSON
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.URL.Path == "/api" {
			response.Fail(c, http.StatusNotFound, "Not Found")
			return
		}
		c.Status(http.StatusNotFound)
	})

	return r
}
