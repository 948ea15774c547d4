package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetAboutPage handles GET /api/pages/about
func (s *Server) GetAboutPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "About Chronicle",
		"body": "Chronicle is a community blogging platform. Authors publish " +
			"posts into curated categories, optionally tagged with a location, " +
			"and readers join the conversation in the comments. Posts can be " +
			"scheduled: write now, set a future publication date, and the post " +
			"appears on its own.",
	})
}

// GetRulesPage handles GET /api/pages/rules
func (s *Server) GetRulesPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"title": "Community Rules",
		"rules": []string{
			"Be respectful to other authors and commenters.",
			"Publish original content or credit your sources.",
			"Keep posts in a fitting category.",
			"No spam, advertising, or duplicate posts.",
			"Moderators may unpublish content that violates these rules.",
		},
	})
}
