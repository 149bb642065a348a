package models

import (
	"time"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null;size:50" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Sort        int       `gorm:"default:0;index" json:"sort"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}
