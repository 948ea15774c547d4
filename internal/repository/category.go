package repository

import (
	"context"

	"chronicle/internal/cache"
	"chronicle/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	// GetPublishedBySlug returns the category only when it is published;
	// hidden categories are gorm.ErrRecordNotFound to callers.
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Category, error)
	// GetByID is unrestricted; assigning posts to a hidden category is
	// allowed, the posts just stop being publicly visible.
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ListPublished(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetPublishedBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := cache.Aside(ctx, cache.CategoryKey(slug), &category, cache.CategoryTTL, func() error {
		return r.db.WithContext(ctx).
			Where("slug = ? AND published = ?", slug, true).
			First(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListPublished(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := cache.Aside(ctx, cache.CategoryListKey, &categories, cache.ListTTL, func() error {
		return r.db.WithContext(ctx).
			Where("published = ?", true).
			Order("title ASC").
			Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}
