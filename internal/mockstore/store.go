// Package mockstore is an in-memory stand-in for the blog API's persistence,
// used when no database is wired up. It mirrors the live endpoints'
// observable behavior minus auth: auto-incrementing ids, creation-time
// ordering, pagination defaults and maintained category article counts.
package mockstore

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type Article struct {
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

type Category struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	ArticleCount int       `json:"articleCount"`
	Sort         int       `json:"sort"`
	CreateTime   time.Time `json:"createTime"`
}

// ArticleUpdate lists the fields an update may touch. Pointer fields use
// presence, not truthiness, so an empty summary or tag list still applies.
type ArticleUpdate struct {
	Title    string
	Content  string
	Summary  *string
	Category *string
	Tags     *[]string
	Status   string
}

type ListQuery struct {
	Title    string
	Category string
	Status   string
	Page     int
	PageSize int
}

type Store struct {
	mu             sync.Mutex
	articles       []*Article
	categories     []*Category
	nextArticleID  uint
	nextCategoryID uint
}

func New() *Store {
	return &Store{
		nextArticleID:  1,
		nextCategoryID: 1,
	}
}

func (s *Store) AddCategory(name, description string, sortOrder int) Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := &Category{
		ID:          s.nextCategoryID,
		Name:        name,
		Description: description,
		Sort:        sortOrder,
		CreateTime:  time.Now(),
	}
	s.nextCategoryID++
	s.categories = append(s.categories, category)
	return *category
}

func (s *Store) CreateArticle(a Article) Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextArticleID
	s.nextArticleID++

	if a.Status == "" {
		a.Status = "draft"
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	now := time.Now()
	a.CreateTime = now
	a.UpdateTime = now

	stored := a
	s.articles = append(s.articles, &stored)
	s.adjustCategoryCount(a.Category, 1)

	return a
}

func (s *Store) GetArticle(id uint) (Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findArticle(id)
	if a == nil {
		return Article{}, false
	}
	return *a, true
}

func (s *Store) UpdateArticle(id uint, upd ArticleUpdate) (Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findArticle(id)
	if a == nil {
		return Article{}, false
	}

	if upd.Title != "" {
		a.Title = upd.Title
	}
	if upd.Content != "" {
		a.Content = upd.Content
	}
	if upd.Summary != nil {
		a.Summary = *upd.Summary
	}
	if upd.Status != "" {
		a.Status = upd.Status
	}
	if upd.Category != nil && *upd.Category != a.Category {
		s.adjustCategoryCount(a.Category, -1)
		s.adjustCategoryCount(*upd.Category, 1)
		a.Category = *upd.Category
	}
	if upd.Tags != nil {
		a.Tags = append([]string{}, (*upd.Tags)...)
	}
	a.UpdateTime = time.Now()

	return *a, true
}

func (s *Store) DeleteArticle(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.articles {
		if a.ID == id {
			s.adjustCategoryCount(a.Category, -1)
			s.articles = append(s.articles[:i], s.articles[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) ListArticles(q ListQuery) ([]Article, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*Article, 0, len(s.articles))
	for _, a := range s.articles {
		if q.Title != "" && !strings.Contains(strings.ToLower(a.Title), strings.ToLower(q.Title)) {
			continue
		}
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		if q.Status != "" && a.Status != q.Status {
			continue
		}
		filtered = append(filtered, a)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreateTime.After(filtered[j].CreateTime)
	})

	total := len(filtered)

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	list := make([]Article, 0, end-start)
	for _, a := range filtered[start:end] {
		list = append(list, *a)
	}
	return list, total
}

func (s *Store) ListCategories() []Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		list = append(list, *c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Sort < list[j].Sort
	})
	return list
}

func (s *Store) findArticle(id uint) *Article {
	for _, a := range s.articles {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Store) adjustCategoryCount(name string, delta int) {
	if name == "" {
		return
	}
	for _, c := range s.categories {
		if c.Name == name {
			c.ArticleCount += delta
			if c.ArticleCount < 0 {
				c.ArticleCount = 0
			}
			return
		}
	}
}
