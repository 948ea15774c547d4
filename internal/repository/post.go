// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID fetches a post the viewer is allowed to see. The author
	// bypasses the visibility filter; everyone else gets
	// gorm.ErrRecordNotFound for hidden posts, same as for absent ones.
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	// GetAnyByID fetches a post regardless of visibility. Mutation paths
	// use it so that ownership violations can redirect instead of 404.
	GetAnyByID(ctx context.Context, id uint) (*models.Post, error)
	ListPublished(ctx context.Context, page int) (*models.Page, error)
	ListByCategory(ctx context.Context, categoryID uint, page int) (*models.Page, error)
	// ListByAuthor returns the user's posts; when visibleOnly is set the
	// public visibility filter is applied (profile viewed by others).
	ListByAuthor(ctx context.Context, userID uint, page int, visibleOnly bool) (*models.Page, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, now: time.Now}
}

// scopeVisible pushes the public visibility rule into SQL: published,
// publication date not in the future, and category (when set) published.
// This is the bulk form of policy.PubliclyVisible and must stay pointwise
// equivalent to it.
func (r *postRepository) scopeVisible(db *gorm.DB) *gorm.DB {
	return db.Where(
		"posts.published = ? AND posts.pub_date <= ? AND (posts.category_id IS NULL OR EXISTS (SELECT 1 FROM categories WHERE categories.id = posts.category_id AND categories.published = ? AND categories.deleted_at IS NULL))",
		true, r.now(), true,
	)
}

// withCommentCount annotates each post with the number of live comments.
func withCommentCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comment_count")
}

func (r *postRepository) preloaded(db *gorm.DB) *gorm.DB {
	return db.Preload("User").Preload("Category").Preload("Location")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.Invalidate(ctx, cache.IndexFirstPageKey)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	q := r.preloaded(withCommentCount(r.db.WithContext(ctx))).
		Where("posts.id = ?", id)
	if viewerID != 0 {
		// Author override: own posts are always retrievable. Grouped so
		// the override cannot escape the id condition.
		q = q.Where(r.db.Where("posts.user_id = ?", viewerID).Or(r.scopeVisible(r.db)))
	} else {
		q = r.scopeVisible(q)
	}
	if err := q.First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetAnyByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.preloaded(withCommentCount(r.db.WithContext(ctx))).
		First(&post, "posts.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// page runs the count + clamp + slice pipeline shared by every listing.
// The query must already be filtered; ordering is always pub_date DESC.
func (r *postRepository) page(q *gorm.DB, pageNum int) (*models.Page, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, err
	}

	totalPages := models.TotalPages(total, models.PageSize)
	number := models.ClampPage(pageNum, totalPages)

	var posts []*models.Post
	err := r.preloaded(withCommentCount(q)).
		Order("posts.pub_date DESC").
		Limit(models.PageSize).
		Offset((number - 1) * models.PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	return &models.Page{
		Items:      posts,
		Number:     number,
		Size:       models.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}, nil
}

func (r *postRepository) ListPublished(ctx context.Context, page int) (*models.Page, error) {
	return r.page(r.scopeVisible(r.db.WithContext(ctx)), page)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID uint, page int) (*models.Page, error) {
	q := r.scopeVisible(r.db.WithContext(ctx)).Where("posts.category_id = ?", categoryID)
	return r.page(q, page)
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint, page int, visibleOnly bool) (*models.Page, error) {
	q := r.db.WithContext(ctx).Where("posts.user_id = ?", userID)
	if visibleOnly {
		q = r.scopeVisible(q)
	}
	return r.page(q, page)
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	// Posts arrive with associations preloaded; saving them would let a
	// stale Category/Location pointer reassert a cleared foreign key.
	if err := r.db.WithContext(ctx).Omit("User", "Category", "Location").Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	return nil
}
