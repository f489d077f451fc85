package domain

import (
	"context"
	"time"
)

// Article 的 JSON 字段沿用前端已有的接口约定（_id/_owner/created_at）
type Article struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Contents  string    `gorm:"type:text;not null" json:"contents"`
	OwnerID   string    `gorm:"index;size:36" json:"_owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Article) TableName() string { return "articles" }

type ArticleRepository interface {
	// ListNewestFirst 按 created_at 倒序返回全部文章
	ListNewestFirst(ctx context.Context) ([]Article, error)
	FindByID(ctx context.Context, id string) (*Article, error)
	Create(ctx context.Context, a *Article) error
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
}
