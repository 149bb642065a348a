package handlers

import (
	"net/http"

	"github.com/yixi1127/blog-system/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) SetupRouter(rateLimiter *services.IPRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(h.RequestLogger())

	// Each route is bound to a single method; the wrong verb is a 405.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	if rateLimiter != nil {
		r.Use(h.RateLimitMiddleware(rateLimiter))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api")

	// Public Routes
	api.POST("/auth/register", h.RegisterUser)
	api.POST("/auth/login", h.LoginUser)

	// Protected Routes
	authorized := api.Group("/")
	authorized.Use(h.AuthRequired())
	{
		authorized.GET("/article/list", h.ListArticles)
		authorized.GET("/article/detail", h.ArticleDetail)
		authorized.POST("/article/create", h.CreateArticle)
		authorized.PUT("/article/update", h.UpdateArticle)
		authorized.DELETE("/article/delete", h.DeleteArticle)
		authorized.GET("/category/list", h.ListCategories)
	}

	return r
}
