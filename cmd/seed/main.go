package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-gin-article-cms/internal/core/config"
	"go-gin-article-cms/internal/core/database"
	"go-gin-article-cms/internal/core/logger"
	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/repo"
	"go-gin-article-cms/pkg/utils"
)

// 清库并写入演示数据：admin 账号 kash/kash + 三篇文章
func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Article{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	if err := db.Exec("DELETE FROM articles").Error; err != nil {
		log.Fatal("wipe articles", zap.Error(err))
	}
	if err := db.Exec("DELETE FROM users").Error; err != nil {
		log.Fatal("wipe users", zap.Error(err))
	}

	ctx := context.Background()
	users := repo.NewUserRepo(db)
	articles := repo.NewArticleRepo(db)

	admin := &domain.User{
		ID:           utils.NewID(),
		Username:     "kash",
		PasswordHash: utils.HashPassword("kash"),
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal("create admin", zap.Error(err))
	}
	log.Info("admin created", zap.String("username", admin.Username))

	seed := []domain.Article{
		{
			Title:    "Taylor Swift used facial recognition software to detect stalkers at LA concert",
			Contents: "The Rose Bowl venue didn't inform concert-goers that their image might be collected at a special kiosk showing Taylor Swift rehearsal clips",
		},
		{
			Title:    "Manhunt for Strasbourg gunman continues across German border",
			Contents: "A major manhunt is continuing in France and across the German border as police appealed to the public for information about the suspected Strasbourg gunman who killed three and left several people seriously wounded before escaping the security services on Tuesday night.",
		},
		{
			Title:    "'Planet of the chickens': How the bird took over the world",
			Contents: "A study of chicken bones dug up at London archaeological sites shows how the bird we know today has altered beyond recognition from its ancestors.",
		},
	}
	for i := range seed {
		seed[i].ID = utils.NewID()
		seed[i].OwnerID = admin.ID
		if err := articles.Create(ctx, &seed[i]); err != nil {
			log.Fatal("create article", zap.Error(err))
		}
	}
	log.Info("articles created", zap.Int("count", len(seed)))
}
