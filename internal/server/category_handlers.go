package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetCategories handles GET /api/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.categoryRepo.ListPublished(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(categories)
}

// GetCategoryPosts handles GET /api/categories/:slug/posts
func (s *Server) GetCategoryPosts(c *fiber.Ctx) error {
	slug := c.Params("slug")

	category, page, err := s.postService.ListByCategory(c.Context(), slug, parsePage(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"category": category,
		"posts":    page,
	})
}

// GetLocations handles GET /api/locations
func (s *Server) GetLocations(c *fiber.Ctx) error {
	locations, err := s.locationRepo.ListPublished(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(locations)
}
