package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-article-cms/internal/domain"
	"go-gin-article-cms/internal/service"
	"go-gin-article-cms/internal/transport/http/middleware"
	"go-gin-article-cms/internal/transport/http/response"
)

type ArticleHandler struct {
	articles *service.ArticleService
}

func NewArticleHandler(articles *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

type articleIn struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

// List GET /api/articles 公开，裸数组，created_at 倒序
func (h *ArticleHandler) List(c *gin.Context) {
	items, err := h.articles.List(c.Request.Context())
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	if items == nil {
		items = []domain.Article{}
	}
	c.JSON(http.StatusOK, items)
}

// Get GET /api/articles/:id 公开。
// ID 非法与记录不存在同样报 400（不是 404）。
func (h *ArticleHandler) Get(c *gin.Context) {
	a, err := h.articles.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrInvalidID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ID. Post not found."})
		return
	}
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Create POST /api/articles 仅 admin
func (h *ArticleHandler) Create(c *gin.Context) {
	var in articleIn
	_ = c.ShouldBindJSON(&in)

	owner := middleware.CurrentUser(c) // 路由守卫保证非空
	a, err := h.articles.Create(c.Request.Context(), in.Title, in.Contents, owner.ID)
	if failValidation(c, err) {
		return
	}
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "articleCreated": a})
}

// Update PATCH /api/articles/:id 仅 admin，只改 title/contents
func (h *ArticleHandler) Update(c *gin.Context) {
	var in articleIn
	_ = c.ShouldBindJSON(&in)

	a, err := h.articles.Update(c.Request.Context(), c.Param("id"), in.Title, in.Contents)
	if failValidation(c, err) {
		return
	}
	if errors.Is(err, domain.ErrInvalidID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ID. Article does not exist."})
		return
	}
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "article": a})
}

// Delete DELETE /api/articles/:id 任意已登录用户。
// ID 合法但记录不存在返回 success + null，只有格式非法才报错。
func (h *ArticleHandler) Delete(c *gin.Context) {
	a, err := h.articles.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, domain.ErrInvalidID) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid ID. Article does not exist."})
		return
	}
	if err != nil {
		response.FailErr(c, http.StatusInternalServerError, "Internal Server Error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "article": a})
}

// failValidation 422 体固定 {errors:{title|content:"is required"}}
func failValidation(c *gin.Context, err error) bool {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"errors": gin.H{ve.Field: "is required"},
		})
		return true
	}
	return false
}
