package services

import (
	"log/slog"
	"os"
	"testing"

	"github.com/yixi1127/blog-system/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	err = db.AutoMigrate(&models.User{}, &models.Category{}, &models.Article{}, &models.ArticleTag{}, &models.AuditLog{})
	if err != nil {
		panic("failed to migrate database: " + err.Error())
	}
	return db
}

func newArticleService(db *gorm.DB) *ArticleService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	audit := NewAuditService(db, logger)
	return NewArticleService(db, logger, audit)
}

func TestCreateArticle(t *testing.T) {
	db := setupTestDB(t)
	service := newArticleService(db)

	db.Create(&models.User{ID: 1, Username: "alice", Email: "a@x.com"})
	db.Create(&models.Category{ID: 1, Name: "tech"})

	t.Run("Defaults to draft", func(t *testing.T) {
		view, err := service.Create(CreateArticleInput{
			AuthorID: 1,
			Title:    "T",
			Content:  "C",
			Tags:     []string{"x", "y"},
		})

		assert.NoError(t, err)
		assert.Equal(t, "draft", view.Status)
		assert.Equal(t, []string{"x", "y"}, view.Tags)

		var tagCount int64
		db.Model(&models.ArticleTag{}).Where("article_id = ?", view.ID).Count(&tagCount)
		assert.Equal(t, int64(2), tagCount)
	})

	t.Run("Resolves category name", func(t *testing.T) {
		view, err := service.Create(CreateArticleInput{
			AuthorID: 1,
			Title:    "With category",
			Content:  "C",
			Category: "tech",
		})

		assert.NoError(t, err)

		var article models.Article
		db.First(&article, view.ID)
		assert.NotNil(t, article.CategoryID)
		assert.Equal(t, uint(1), *article.CategoryID)
	})

	t.Run("Unknown category yields no link", func(t *testing.T) {
		view, err := service.Create(CreateArticleInput{
			AuthorID: 1,
			Title:    "No category",
			Content:  "C",
			Category: "missing",
		})

		assert.NoError(t, err)

		var article models.Article
		db.First(&article, view.ID)
		assert.Nil(t, article.CategoryID)
	})
}

func TestListArticles(t *testing.T) {
	db := setupTestDB(t)
	service := newArticleService(db)

	db.Create(&models.User{ID: 1, Username: "alice", Email: "a@x.com"})
	db.Create(&models.User{ID: 2, Username: "bob", Email: "b@x.com"})
	db.Create(&models.Category{ID: 1, Name: "tech"})

	for i := 0; i < 15; i++ {
		input := CreateArticleInput{AuthorID: 1, Title: "Go Article", Content: "C"}
		if i%2 == 0 {
			input.Status = models.StatusPublished
			input.Category = "tech"
		}
		_, err := service.Create(input)
		assert.NoError(t, err)
	}
	// Another author's article must never show up.
	_, err := service.Create(CreateArticleInput{AuthorID: 2, Title: "Go Article", Content: "C"})
	assert.NoError(t, err)

	t.Run("Default pagination", func(t *testing.T) {
		list, total, err := service.List(ListArticlesQuery{AuthorID: 1})
		assert.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, list, 10)
		assert.Equal(t, "alice", list[0].Author)
	})

	t.Run("Second page", func(t *testing.T) {
		list, total, err := service.List(ListArticlesQuery{AuthorID: 1, Page: 2})
		assert.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, list, 5)
	})

	t.Run("Status filter", func(t *testing.T) {
		list, total, err := service.List(ListArticlesQuery{AuthorID: 1, Status: models.StatusPublished})
		assert.NoError(t, err)
		assert.Equal(t, int64(8), total)
		for _, a := range list {
			assert.Equal(t, models.StatusPublished, a.Status)
		}
	})

	t.Run("Title filter is case-insensitive", func(t *testing.T) {
		_, total, err := service.List(ListArticlesQuery{AuthorID: 1, Title: "go art"})
		assert.NoError(t, err)
		assert.Equal(t, int64(15), total)

		_, total, err = service.List(ListArticlesQuery{AuthorID: 1, Title: "nothing"})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("Category filter", func(t *testing.T) {
		list, total, err := service.List(ListArticlesQuery{AuthorID: 1, Category: "tech"})
		assert.NoError(t, err)
		assert.Equal(t, int64(8), total)
		for _, a := range list {
			assert.Equal(t, "tech", a.Category)
		}
	})

	t.Run("Unknown category filter is ignored", func(t *testing.T) {
		_, total, err := service.List(ListArticlesQuery{AuthorID: 1, Category: "missing"})
		assert.NoError(t, err)
		assert.Equal(t, int64(15), total)
	})
}

func TestGetArticle(t *testing.T) {
	db := setupTestDB(t)
	service := newArticleService(db)

	db.Create(&models.User{ID: 1, Username: "alice", Email: "a@x.com"})
	db.Create(&models.User{ID: 2, Username: "bob", Email: "b@x.com"})
	db.Create(&models.Category{ID: 1, Name: "tech"})

	created, err := service.Create(CreateArticleInput{
		AuthorID: 1,
		Title:    "T",
		Content:  "C",
		Category: "tech",
		Tags:     []string{"x"},
	})
	assert.NoError(t, err)

	t.Run("Owner fetch", func(t *testing.T) {
		view, err := service.Get(created.ID, 1)
		assert.NoError(t, err)
		assert.Equal(t, "T", view.Title)
		assert.Equal(t, "tech", view.Category)
		assert.Equal(t, []string{"x"}, view.Tags)
		assert.Equal(t, "alice", view.Author)
	})

	t.Run("Not owned looks like missing", func(t *testing.T) {
		_, err := service.Get(created.ID, 2)
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := service.Get(99999, 1)
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})
}

func TestUpdateArticle(t *testing.T) {
	db := setupTestDB(t)
	service := newArticleService(db)

	db.Create(&models.User{ID: 1, Username: "alice", Email: "a@x.com"})
	db.Create(&models.User{ID: 2, Username: "bob", Email: "b@x.com"})
	db.Create(&models.Category{ID: 1, Name: "tech"})

	created, err := service.Create(CreateArticleInput{
		AuthorID: 1,
		Title:    "T",
		Content:  "C",
		Summary:  "old summary",
		Tags:     []string{"a"},
	})
	assert.NoError(t, err)

	t.Run("Partial update leaves absent fields alone", func(t *testing.T) {
		updated, err := service.Update(created.ID, 1, UpdateArticleInput{Title: "T2"})
		assert.NoError(t, err)
		assert.Equal(t, "T2", updated.Title)
		assert.Equal(t, "C", updated.Content)
		assert.Equal(t, "old summary", updated.Summary)
	})

	t.Run("Empty summary overwrite via presence", func(t *testing.T) {
		empty := ""
		updated, err := service.Update(created.ID, 1, UpdateArticleInput{Summary: &empty})
		assert.NoError(t, err)
		assert.Equal(t, "", updated.Summary)
	})

	t.Run("Tags fully replaced", func(t *testing.T) {
		tags := []string{"b", "c"}
		_, err := service.Update(created.ID, 1, UpdateArticleInput{Tags: &tags})
		assert.NoError(t, err)

		view, err := service.Get(created.ID, 1)
		assert.NoError(t, err)
		assert.ElementsMatch(t, []string{"b", "c"}, view.Tags)
	})

	t.Run("Category re-resolved", func(t *testing.T) {
		_, err := service.Update(created.ID, 1, UpdateArticleInput{Category: "tech"})
		assert.NoError(t, err)

		var article models.Article
		db.First(&article, created.ID)
		assert.NotNil(t, article.CategoryID)
	})

	t.Run("Unresolvable category leaves link unchanged", func(t *testing.T) {
		_, err := service.Update(created.ID, 1, UpdateArticleInput{Category: "missing"})
		assert.NoError(t, err)

		var article models.Article
		db.First(&article, created.ID)
		assert.NotNil(t, article.CategoryID)
	})

	t.Run("Not owner", func(t *testing.T) {
		_, err := service.Update(created.ID, 2, UpdateArticleInput{Title: "X"})
		assert.ErrorIs(t, err, ErrNotArticleOwner)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, err := service.Update(99999, 1, UpdateArticleInput{Title: "X"})
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})
}

func TestDeleteArticle(t *testing.T) {
	db := setupTestDB(t)
	service := newArticleService(db)

	db.Create(&models.User{ID: 1, Username: "alice", Email: "a@x.com"})
	db.Create(&models.User{ID: 2, Username: "bob", Email: "b@x.com"})

	created, err := service.Create(CreateArticleInput{
		AuthorID: 1,
		Title:    "T",
		Content:  "C",
		Tags:     []string{"x", "y"},
	})
	assert.NoError(t, err)

	t.Run("Not owner", func(t *testing.T) {
		err := service.Delete(created.ID, 2, "127.0.0.1")
		assert.ErrorIs(t, err, ErrNotArticleOwner)
	})

	t.Run("Delete removes article and tags", func(t *testing.T) {
		err := service.Delete(created.ID, 1, "127.0.0.1")
		assert.NoError(t, err)

		_, err = service.Get(created.ID, 1)
		assert.ErrorIs(t, err, ErrArticleNotFound)

		var tagCount int64
		db.Model(&models.ArticleTag{}).Where("article_id = ?", created.ID).Count(&tagCount)
		assert.Equal(t, int64(0), tagCount)
	})

	t.Run("Unknown id", func(t *testing.T) {
		err := service.Delete(99999, 1, "127.0.0.1")
		assert.ErrorIs(t, err, ErrArticleNotFound)
	})
}
