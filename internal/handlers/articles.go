package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yixi1127/blog-system/internal/services"

	"github.com/gin-gonic/gin"
)

const articleCacheTTL = 10 * time.Minute

type CreateArticleRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
}

type UpdateArticleRequest struct {
	ID       uint      `json:"id" binding:"required"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Summary  *string   `json:"summary"`
	Category string    `json:"category"`
	Tags     *[]string `json:"tags"`
	Status   string    `json:"status"`
}

func currentUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

func articleCacheKey(articleID, userID uint) string {
	return fmt.Sprintf("article:%d:%d", articleID, userID)
}

func (h *Handler) ListArticles(c *gin.Context) {
	userID := currentUserID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	list, total, err := h.articleService.List(services.ListArticlesQuery{
		AuthorID: userID,
		Title:    c.Query("title"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error("Failed to list articles", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"list":     list,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *Handler) ArticleDetail(c *gin.Context) {
	userID := currentUserID(c)

	idParam := c.Query("id")
	if idParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article id is required"})
		return
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found or no access"})
		return
	}
	articleID := uint(id)

	// Cache lookup, nil-safe when redis is absent.
	if h.rdb != nil {
		val, err := h.rdb.Get(c.Request.Context(), articleCacheKey(articleID, userID)).Result()
		if err == nil {
			var cached services.ArticleView
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				h.viewService.RecordViewAsync(articleID)
				c.JSON(http.StatusOK, gin.H{"success": true, "article": cached})
				return
			}
		}
	}

	article, err := h.articleService.Get(articleID, userID)
	if err != nil {
		if errors.Is(err, services.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found or no access"})
			return
		}
		h.logger.Error("Failed to fetch article", "article_id", articleID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch article"})
		return
	}

	if h.rdb != nil {
		if data, err := json.Marshal(article); err == nil {
			h.rdb.Set(c.Request.Context(), articleCacheKey(articleID, userID), data, articleCacheTTL)
		}
	}

	h.viewService.RecordViewAsync(articleID)

	c.JSON(http.StatusOK, gin.H{"success": true, "article": article})
}

func (h *Handler) CreateArticle(c *gin.Context) {
	userID := currentUserID(c)

	var req CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and content are required"})
		return
	}

	article, err := h.articleService.Create(services.CreateArticleInput{
		AuthorID:  userID,
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		Category:  req.Category,
		Tags:      req.Tags,
		Status:    req.Status,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		h.logger.Error("Failed to create article", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "article": article})
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	userID := currentUserID(c)

	var req UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article id is required"})
		return
	}

	article, err := h.articleService.Update(req.ID, userID, services.UpdateArticleInput{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		Category:  req.Category,
		Tags:      req.Tags,
		Status:    req.Status,
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		// Missing and not-owned look the same to the caller here.
		if errors.Is(err, services.ErrArticleNotFound) || errors.Is(err, services.ErrNotArticleOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "no permission to modify this article"})
			return
		}
		h.logger.Error("Failed to update article", "article_id", req.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update article"})
		return
	}

	if h.rdb != nil {
		h.rdb.Del(c.Request.Context(), articleCacheKey(req.ID, userID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "article": article})
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	userID := currentUserID(c)

	idParam := c.Query("id")
	if idParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article id is required"})
		return
	}
	id, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	articleID := uint(id)

	if err := h.articleService.Delete(articleID, userID, c.ClientIP()); err != nil {
		switch {
		case errors.Is(err, services.ErrArticleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		case errors.Is(err, services.ErrNotArticleOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "no permission to delete this article"})
		default:
			h.logger.Error("Failed to delete article", "article_id", articleID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete article"})
		}
		return
	}

	if h.rdb != nil {
		h.rdb.Del(c.Request.Context(), articleCacheKey(articleID, userID))
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "article deleted"})
}
