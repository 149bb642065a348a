package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/yixi1127/blog-system/internal/config"
	"github.com/yixi1127/blog-system/internal/models"
	"github.com/yixi1127/blog-system/internal/services"
	"github.com/yixi1127/blog-system/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestHandler() (*Handler, *gorm.DB) {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	db.AutoMigrate(&models.User{}, &models.Category{}, &models.Article{}, &models.ArticleTag{}, &models.AuditLog{})

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Config{
		JWTSecret: "test-secret-12345678901234567890123456789012",
	}

	token := services.NewTokenService(cfg.JWTSecret)
	audit := services.NewAuditService(db, logger)
	views := services.NewViewService(db, logger)
	articles := services.NewArticleService(db, logger, audit)
	categories := services.NewCategoryService(db)

	h := NewHandler(cfg, logger, db, nil, token, articles, categories, audit, views)
	return h, db
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

// createTestUser inserts a user directly and returns a valid bearer token.
func createTestUser(h *Handler, db *gorm.DB, username, email string) (uint, string) {
	hash, _ := utils.HashPassword("password123")
	user := models.User{Username: username, Email: email, PasswordHash: hash}
	db.Create(&user)

	token, _ := h.tokenService.Issue(user.ID, user.Username)
	return user.ID, token
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	return resp
}
