package models

import (
	"time"

	"gorm.io/gorm"
)

// Category groups posts under a unique URL slug. Categories are
// administered out-of-band (seed tooling) and are read-mostly.
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Slug        string         `gorm:"unique;not null" json:"slug"`
	Published   bool           `gorm:"not null" json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
