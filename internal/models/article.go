package models

import (
	"time"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

type Article struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null;size:255" json:"title"`
	Content    string    `gorm:"not null;type:text" json:"content"`
	Summary    string    `gorm:"type:text" json:"summary"`
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"` // Nullable, lookup by name
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Status     string    `gorm:"not null;default:draft;size:20;index" json:"status"`
	Views      int       `gorm:"default:0" json:"views"`
	Likes      int       `gorm:"default:0" json:"likes"`
	Comments   int       `gorm:"default:0" json:"comments"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`

	Tags []ArticleTag `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
}

type ArticleTag struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ArticleID uint   `gorm:"not null;index" json:"article_id"`
	Tag       string `gorm:"not null;size:50" json:"tag"`
}
