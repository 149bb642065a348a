package services

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yixi1127/blog-system/internal/models"

	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrNotArticleOwner = errors.New("not the article owner")
)

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// ArticleView is the shaped article returned by the API.
type ArticleView struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Status     string    `json:"status"`
	Author     string    `json:"author"`
	Views      int       `json:"views"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

// CreatedArticle is the shape returned after a create. Counters and author
// are omitted: a fresh article has nothing to report there.
type CreatedArticle struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary"`
	Category   string    `json:"category"`
	Tags       []string  `json:"tags"`
	Status     string    `json:"status"`
	CreateTime time.Time `json:"createTime"`
}

// UpdatedArticle is the reduced shape returned after an update.
type UpdatedArticle struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary"`
	Status     string    `json:"status"`
	UpdateTime time.Time `json:"updateTime"`
}

type CreateArticleInput struct {
	AuthorID  uint
	Title     string
	Content   string
	Summary   string
	Category  string
	Tags      []string
	Status    string
	IPAddress string
}

type UpdateArticleInput struct {
	Title     string
	Content   string
	Summary   *string // pointer: present-but-empty overwrites
	Category  string
	Tags      *[]string // pointer: present means full replace
	Status    string
	IPAddress string
}

type ListArticlesQuery struct {
	AuthorID uint
	Title    string
	Category string
	Status   string
	Page     int
	PageSize int
}

type ArticleService struct {
	db           *gorm.DB
	logger       *slog.Logger
	auditService *AuditService
}

func NewArticleService(db *gorm.DB, logger *slog.Logger, auditService *AuditService) *ArticleService {
	return &ArticleService{
		db:           db,
		logger:       logger,
		auditService: auditService,
	}
}

// resolveCategoryID maps a category name to its id. A miss is not an error:
// the article simply gets no category link.
func (s *ArticleService) resolveCategoryID(name string) *uint {
	if name == "" {
		return nil
	}
	var category models.Category
	if err := s.db.Select("id").Where("name = ?", name).First(&category).Error; err != nil {
		return nil
	}
	return &category.ID
}

// replaceTags swaps an article's tag set wholesale: delete all, then insert.
func (s *ArticleService) replaceTags(articleID uint, tags []string) error {
	if err := s.db.Where("article_id = ?", articleID).Delete(&models.ArticleTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.ArticleTag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, models.ArticleTag{ArticleID: articleID, Tag: tag})
	}
	return s.db.Create(&rows).Error
}

// requireOwner fetches an article and checks it belongs to userID.
func (s *ArticleService) requireOwner(id uint, userID uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	if article.AuthorID != userID {
		return nil, ErrNotArticleOwner
	}
	return &article, nil
}

func (s *ArticleService) Create(input CreateArticleInput) (*CreatedArticle, error) {
	status := input.Status
	if status == "" {
		status = models.StatusDraft
	}

	article := models.Article{
		Title:      input.Title,
		Content:    input.Content,
		Summary:    input.Summary,
		CategoryID: s.resolveCategoryID(input.Category),
		AuthorID:   input.AuthorID,
		Status:     status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}

	// Tag insert failure is not rolled back; the article stands without tags.
	if len(input.Tags) > 0 {
		if err := s.replaceTags(article.ID, input.Tags); err != nil {
			s.logger.Error("Failed to insert article tags", "article_id", article.ID, "error", err)
		}
	}

	s.auditService.LogAction(&input.AuthorID, "ARTICLE_CREATE", itoa(article.ID), map[string]interface{}{
		"title": input.Title,
	}, input.IPAddress)

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}

	return &CreatedArticle{
		ID:         article.ID,
		Title:      article.Title,
		Content:    article.Content,
		Summary:    article.Summary,
		Category:   input.Category,
		Tags:       tags,
		Status:     article.Status,
		CreateTime: article.CreatedAt,
	}, nil
}

func (s *ArticleService) List(q ListArticlesQuery) ([]ArticleView, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	query := s.db.Model(&models.Article{}).Where("author_id = ?", q.AuthorID)

	if q.Title != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Category != "" {
		// Unresolvable category names leave the filter off, matching the
		// behavior clients already depend on.
		if categoryID := s.resolveCategoryID(q.Category); categoryID != nil {
			query = query.Where("category_id = ?", *categoryID)
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	err := query.
		Order("created_at desc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}

	categoryNames, tagsByArticle, err := s.batchResolve(articles)
	if err != nil {
		return nil, 0, err
	}

	authorName := s.lookupUsername(q.AuthorID)

	list := make([]ArticleView, 0, len(articles))
	for _, a := range articles {
		categoryName := ""
		if a.CategoryID != nil {
			categoryName = categoryNames[*a.CategoryID]
		}
		tags := tagsByArticle[a.ID]
		if tags == nil {
			tags = []string{}
		}
		list = append(list, ArticleView{
			ID:         a.ID,
			Title:      a.Title,
			Content:    a.Content,
			Summary:    a.Summary,
			Category:   categoryName,
			Tags:       tags,
			Status:     a.Status,
			Author:     authorName,
			Views:      a.Views,
			Likes:      a.Likes,
			Comments:   a.Comments,
			CreateTime: a.CreatedAt,
			UpdateTime: a.UpdatedAt,
		})
	}

	return list, total, nil
}

// batchResolve fetches category names and tags for a page of articles in two
// queries instead of one pair per row.
func (s *ArticleService) batchResolve(articles []models.Article) (map[uint]string, map[uint][]string, error) {
	categoryNames := make(map[uint]string)
	tagsByArticle := make(map[uint][]string)

	if len(articles) == 0 {
		return categoryNames, tagsByArticle, nil
	}

	articleIDs := make([]uint, 0, len(articles))
	categoryIDSet := make(map[uint]struct{})
	for _, a := range articles {
		articleIDs = append(articleIDs, a.ID)
		if a.CategoryID != nil {
			categoryIDSet[*a.CategoryID] = struct{}{}
		}
	}

	if len(categoryIDSet) > 0 {
		categoryIDs := make([]uint, 0, len(categoryIDSet))
		for id := range categoryIDSet {
			categoryIDs = append(categoryIDs, id)
		}
		var categories []models.Category
		if err := s.db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
			return nil, nil, err
		}
		for _, c := range categories {
			categoryNames[c.ID] = c.Name
		}
	}

	var tags []models.ArticleTag
	if err := s.db.Where("article_id IN ?", articleIDs).Find(&tags).Error; err != nil {
		return nil, nil, err
	}
	for _, t := range tags {
		tagsByArticle[t.ArticleID] = append(tagsByArticle[t.ArticleID], t.Tag)
	}

	return categoryNames, tagsByArticle, nil
}

func (s *ArticleService) lookupUsername(userID uint) string {
	var user models.User
	if err := s.db.Select("username").First(&user, userID).Error; err != nil {
		return ""
	}
	return user.Username
}

func (s *ArticleService) Get(id uint, userID uint) (*ArticleView, error) {
	var article models.Article
	err := s.db.Where("id = ? AND author_id = ?", id, userID).First(&article).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	categoryName := ""
	if article.CategoryID != nil {
		var category models.Category
		if err := s.db.First(&category, *article.CategoryID).Error; err == nil {
			categoryName = category.Name
		}
	}

	var tagRows []models.ArticleTag
	if err := s.db.Where("article_id = ?", article.ID).Find(&tagRows).Error; err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(tagRows))
	for _, t := range tagRows {
		tags = append(tags, t.Tag)
	}

	return &ArticleView{
		ID:         article.ID,
		Title:      article.Title,
		Content:    article.Content,
		Summary:    article.Summary,
		Category:   categoryName,
		Tags:       tags,
		Status:     article.Status,
		Author:     s.lookupUsername(article.AuthorID),
		Views:      article.Views,
		Likes:      article.Likes,
		Comments:   article.Comments,
		CreateTime: article.CreatedAt,
		UpdateTime: article.UpdatedAt,
	}, nil
}

func (s *ArticleService) Update(id uint, userID uint, input UpdateArticleInput) (*UpdatedArticle, error) {
	article, err := s.requireOwner(id, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Content != "" {
		updates["content"] = input.Content
	}
	if input.Summary != nil {
		updates["summary"] = *input.Summary
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.Category != "" {
		if categoryID := s.resolveCategoryID(input.Category); categoryID != nil {
			updates["category_id"] = *categoryID
		}
	}
	updates["updated_at"] = time.Now()

	if err := s.db.Model(article).Updates(updates).Error; err != nil {
		return nil, err
	}

	if input.Tags != nil {
		if err := s.replaceTags(article.ID, *input.Tags); err != nil {
			s.logger.Error("Failed to replace article tags", "article_id", article.ID, "error", err)
		}
	}

	s.auditService.LogAction(&userID, "ARTICLE_UPDATE", itoa(article.ID), nil, input.IPAddress)

	var updated models.Article
	if err := s.db.First(&updated, article.ID).Error; err != nil {
		return nil, err
	}

	return &UpdatedArticle{
		ID:         updated.ID,
		Title:      updated.Title,
		Content:    updated.Content,
		Summary:    updated.Summary,
		Status:     updated.Status,
		UpdateTime: updated.UpdatedAt,
	}, nil
}

func (s *ArticleService) Delete(id uint, userID uint, ip string) error {
	article, err := s.requireOwner(id, userID)
	if err != nil {
		return err
	}

	// The FK cascades in postgres; delete tags explicitly so sqlite
	// schemas without enforced FKs behave the same.
	if err := s.db.Where("article_id = ?", article.ID).Delete(&models.ArticleTag{}).Error; err != nil {
		return err
	}
	if err := s.db.Delete(article).Error; err != nil {
		return err
	}

	s.auditService.LogAction(&userID, "ARTICLE_DELETE", itoa(article.ID), nil, ip)

	return nil
}
