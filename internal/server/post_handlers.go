package server

import (
	"errors"
	"fmt"
	"time"

	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	Title      string     `json:"title"`
	Text       string     `json:"text"`
	PubDate    *time.Time `json:"pub_date,omitempty"`
	Published  *bool      `json:"published,omitempty"`
	CategoryID *uint      `json:"category_id,omitempty"`
	LocationID *uint      `json:"location_id,omitempty"`
	ImageURL   string     `json:"image_url,omitempty"`
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.Context(), parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, optionalUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		UserID:     userID,
		Title:      req.Title,
		Text:       req.Text,
		PubDate:    req.PubDate,
		Published:  req.Published,
		CategoryID: req.CategoryID,
		LocationID: req.LocationID,
		ImageURL:   req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Someone else's post is not an
// error page: the client is sent back to the post detail and nothing
// is modified.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		UserID:     userID,
		PostID:     postID,
		Title:      req.Title,
		Text:       req.Text,
		PubDate:    req.PubDate,
		Published:  req.Published,
		CategoryID: req.CategoryID,
		LocationID: req.LocationID,
		ImageURL:   req.ImageURL,
	})
	if errors.Is(err, service.ErrNotAuthor) {
		return c.Redirect(fmt.Sprintf("/api/posts/%d", postID), fiber.StatusSeeOther)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	err = s.postService.DeletePost(c.Context(), postID, userID)
	if errors.Is(err, service.ErrNotAuthor) {
		return c.Redirect(fmt.Sprintf("/api/posts/%d", postID), fiber.StatusSeeOther)
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
