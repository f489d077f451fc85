package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-article-cms/internal/core/config"
	"go-gin-article-cms/internal/core/database"
	"go-gin-article-cms/internal/core/logger"
	"go-gin-article-cms/internal/core/server"
	"go-gin-article-cms/internal/core/sessions"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/repo"
	"go-gin-article-cms/internal/service"
	"go-gin-article-cms/internal/transport/http/handler"
	"go-gin-article-cms/internal/transport/http/response"
	"go-gin-article-cms/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.Build(logger.Options{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	})
	defer cleanup()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	// 错误体详细程度跟环境走：生产只留 status/message
	response.SetVerbose(!cfg.Production())

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Article{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 会话存储：有 redis 用 redis（TTL 过期），否则进程内兜底
	var store sessions.Store
	if cfg.Redis.Addr != "" {
		rs := sessions.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rs.Ping(context.Background()); err != nil {
			log.Fatal("redis ping failed", zap.Error(err))
		}
		store = rs
		log.Info("session store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		store = sessions.NewMemoryStore()
		log.Warn("session store: in-memory (no redis configured)")
	}
	sm := sessions.NewManager(store, time.Duration(cfg.Session.TTLMin)*time.Minute, cfg.Session.CookieName)

	userRepo := repo.NewUserRepo(db)
	articleRepo := repo.NewArticleRepo(db)
	authH := handler.NewAuthHandler(service.NewAuthService(userRepo), sm)
	articleH := handler.NewArticleHandler(service.NewArticleService(articleRepo))

	r := router.NewAPIEngine(log, authH, articleH, sm, userRepo, router.Options{
		CORSOrigin: cfg.CORS.Origin,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started", zap.String("addr", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
