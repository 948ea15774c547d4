// Package service implements application business logic on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/models"
	"chronicle/internal/repository"

	"gorm.io/gorm"
)

// ErrNotAuthor is returned when someone tries to change another
// author's post. Handlers translate it into a redirect to the post
// detail instead of an error page; the post itself is never touched.
var ErrNotAuthor = errors.New("actor is not the post author")

type PostService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	locationRepo repository.LocationRepository
}

type CreatePostInput struct {
	UserID     uint
	Title      string
	Text       string
	PubDate    *time.Time
	Published  *bool
	CategoryID *uint
	LocationID *uint
	ImageURL   string
}

type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      string
	Text       string
	PubDate    *time.Time
	Published  *bool
	CategoryID *uint
	LocationID *uint
	ImageURL   string
}

func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	locationRepo repository.LocationRepository,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		locationRepo: locationRepo,
	}
}

const maxTitleLen = 256

func (s *PostService) validateContent(ctx context.Context, title, text string, categoryID, locationID *uint) error {
	if strings.TrimSpace(title) == "" {
		return models.NewValidationError("Title is required")
	}
	if len(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 256 characters)")
	}
	if strings.TrimSpace(text) == "" {
		return models.NewValidationError("Text is required")
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewValidationError("Unknown category")
			}
			return err
		}
	}
	if locationID != nil {
		if _, err := s.locationRepo.GetByID(ctx, *locationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewValidationError("Unknown location")
			}
			return err
		}
	}
	return nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := s.validateContent(ctx, in.Title, in.Text, in.CategoryID, in.LocationID); err != nil {
		return nil, err
	}

	pubDate := time.Now()
	if in.PubDate != nil {
		pubDate = *in.PubDate
	}
	published := true
	if in.Published != nil {
		published = *in.Published
	}

	post := &models.Post{
		Title:      in.Title,
		Text:       in.Text,
		PubDate:    pubDate,
		Published:  published,
		ImageURL:   in.ImageURL,
		ImageHash:  extractImageHash(in.ImageURL),
		UserID:     in.UserID,
		CategoryID: in.CategoryID,
		LocationID: in.LocationID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns the post as seen by viewerID. Hidden posts come back
// as not-found, never as forbidden.
func (s *PostService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, page int) (*models.Page, error) {
	// The landing page is by far the hottest listing; cache only it.
	if page == 1 {
		var cached models.Page
		err := cache.Aside(ctx, cache.IndexFirstPageKey, &cached, cache.ListTTL, func() error {
			fresh, fetchErr := s.postRepo.ListPublished(ctx, 1)
			if fetchErr != nil {
				return fetchErr
			}
			cached = *fresh
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &cached, nil
	}
	return s.postRepo.ListPublished(ctx, page)
}

// ListByCategory resolves the category by slug and returns it together
// with one page of its visible posts. Hidden categories are not found.
func (s *PostService) ListByCategory(ctx context.Context, slug string, page int) (*models.Category, *models.Page, error) {
	category, err := s.categoryRepo.GetPublishedBySlug(ctx, slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, models.NewNotFoundError("Category", slug)
	}
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.postRepo.ListByCategory(ctx, category.ID, page)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

// ListByAuthor returns one page of a user's posts. Owners get the
// unfiltered feed, everyone else the publicly visible subset.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, page int, viewerID uint) (*models.Page, error) {
	return s.postRepo.ListByAuthor(ctx, authorID, page, viewerID != authorID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetAnyByID(ctx, in.PostID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, ErrNotAuthor
	}

	if err := s.validateContent(ctx, in.Title, in.Text, in.CategoryID, in.LocationID); err != nil {
		return nil, err
	}

	post.Title = in.Title
	post.Text = in.Text
	if in.PubDate != nil {
		post.PubDate = *in.PubDate
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	post.CategoryID = in.CategoryID
	post.LocationID = in.LocationID
	post.ImageURL = in.ImageURL
	post.ImageHash = extractImageHash(in.ImageURL)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetAnyByID(ctx, postID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrNotAuthor
	}
	return s.postRepo.Delete(ctx, postID)
}

// extractImageHash pulls the content hash out of an internally served
// image URL (/media/i/<hash>/<file>). External URLs yield "".
func extractImageHash(imageURL string) string {
	const prefix = "/media/i/"
	if !strings.HasPrefix(imageURL, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(imageURL, prefix)
	if i := strings.IndexByte(rest, '/'); i > 0 {
		return rest[:i]
	}
	return ""
}
