package models

import (
	"time"

	"gorm.io/gorm"
)

// Location is an optional place tag for posts. Same lifecycle class as
// Category: administered out-of-band, read-mostly.
type Location struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"unique;not null" json:"name"`
	Published bool           `gorm:"not null" json:"published"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
