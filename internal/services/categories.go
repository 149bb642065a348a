package services

import (
	"time"

	"github.com/yixi1127/blog-system/internal/models"

	"gorm.io/gorm"
)

// CategoryView is a category with the caller's article count.
type CategoryView struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ArticleCount int       `json:"articleCount"`
	Sort         int       `json:"sort"`
	CreateTime   time.Time `json:"createTime"`
}

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// ListForAuthor returns the categories holding at least one of the author's
// articles, counted per category, in sort order.
func (s *CategoryService) ListForAuthor(userID uint) ([]CategoryView, error) {
	type row struct {
		ID           uint
		Name         string
		Description  string
		Sort         int
		CreatedAt    time.Time
		ArticleCount int
	}

	var rows []row
	err := s.db.Model(&models.Category{}).
		Select("categories.id, categories.name, categories.description, categories.sort, categories.created_at, COUNT(articles.id) AS article_count").
		Joins("JOIN articles ON articles.category_id = categories.id AND articles.author_id = ?", userID).
		Group("categories.id, categories.name, categories.description, categories.sort, categories.created_at").
		Order("categories.sort asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	list := make([]CategoryView, 0, len(rows))
	for _, r := range rows {
		list = append(list, CategoryView{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			ArticleCount: r.ArticleCount,
			Sort:         r.Sort,
			CreateTime:   r.CreatedAt,
		})
	}

	return list, nil
}
