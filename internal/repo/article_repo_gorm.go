package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-article-cms/internal/domain"
)

type ArticleRepo struct{ db *gorm.DB }

func NewArticleRepo(db *gorm.DB) *ArticleRepo { return &ArticleRepo{db: db} }

func (r *ArticleRepo) ListNewestFirst(ctx context.Context) ([]domain.Article, error) {
	var items []domain.Article
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ArticleRepo) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	var a domain.Article
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ArticleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Article{}).Error
}
