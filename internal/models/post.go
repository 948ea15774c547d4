// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a publication in Chronicle.
//
// Published and PubDate together control public visibility: a post with
// Published=false, or with a PubDate in the future, is shown only to its
// author. A future PubDate is how scheduled publications work.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PubDate   time.Time `gorm:"not null;index" json:"pub_date"`
	Published bool      `gorm:"not null" json:"published"`
	ImageURL  string    `json:"image_url,omitempty"`
	ImageHash string    `gorm:"index" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	// CategoryID and LocationID are nullable; deleting a category or a
	// location detaches its posts instead of removing them.
	CategoryID *uint     `gorm:"index" json:"category_id,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	LocationID *uint     `json:"location_id,omitempty"`
	Location   *Location `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL" json:"location,omitempty"`
	// CommentCount is not persisted; computed at query time
	CommentCount int            `gorm:"->" json:"comment_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
