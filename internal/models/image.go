package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Image stores metadata for an uploaded post image, addressed by the
// SHA-256 of the original upload. Variants are derived renditions.
type Image struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Hash      string         `gorm:"uniqueIndex;not null" json:"hash"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	MimeType  string         `json:"mime_type"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	SizeBytes int64          `json:"size_bytes"`
	Variants  []ImageVariant `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ImageVariant is a single stored rendition of an Image (size + format).
type ImageVariant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   uint      `gorm:"not null;index" json:"image_id"`
	SizePx    int       `gorm:"not null" json:"size_px"`
	Format    string    `gorm:"not null" json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Filename returns the on-disk file name for this variant.
func (v ImageVariant) Filename() string {
	return fmt.Sprintf("%d.%s", v.SizePx, v.Format)
}

// URL returns the public media path for this variant.
func (v ImageVariant) URL(hash string) string {
	return fmt.Sprintf("/media/i/%s/%s", hash, v.Filename())
}
