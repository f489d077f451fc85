package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/pkg/utils"
)

type ArticleService struct {
	articles domain.ArticleRepository
}

func NewArticleService(articles domain.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

// List 全量返回，created_at 倒序（无分页）
func (s *ArticleService) List(ctx context.Context) ([]domain.Article, error) {
	return s.articles.ListNewestFirst(ctx)
}

// Get 格式非法与记录不存在统一返回 ErrInvalidID
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	if !wellFormedID(id) {
		return nil, domain.ErrInvalidID
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrInvalidID
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, title, contents, ownerID string) (*domain.Article, error) {
	title, contents, err := validateFields(title, contents)
	if err != nil {
		return nil, err
	}
	a := &domain.Article{
		ID:       utils.NewID(),
		Title:    title,
		Contents: contents,
		OwnerID:  ownerID,
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update 只替换 title/contents，owner 与创建时间不动。
// 校验先于 ID 解析：字段缺失优先报 422。
func (s *ArticleService) Update(ctx context.Context, id, title, contents string) (*domain.Article, error) {
	title, contents, err := validateFields(title, contents)
	if err != nil {
		return nil, err
	}
	if !wellFormedID(id) {
		return nil, domain.ErrInvalidID
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrInvalidID
	}
	a.Title = title
	a.Contents = contents
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete 返回被删除的记录。ID 合法但记录不存在不算错误，返回 nil。
func (s *ArticleService) Delete(ctx context.Context, id string) (*domain.Article, error) {
	if !wellFormedID(id) {
		return nil, domain.ErrInvalidID
	}
	a, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	if err := s.articles.Delete(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

// validateFields title 先于 contents 检查；422 的字段名是 title/content
func validateFields(title, contents string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", &domain.ValidationError{Field: "title"}
	}
	contents = strings.TrimSpace(contents)
	if contents == "" {
		return "", "", &domain.ValidationError{Field: "content"}
	}
	return title, contents, nil
}

func wellFormedID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
