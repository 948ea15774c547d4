package server

import (
	"io"

	"chronicle/internal/models"
	"chronicle/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/uploads/image (multipart form, field "file").
// The response includes the canonical URL to use as a post's image_url.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A file upload named 'file' is required"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	img, err := s.imageService.Upload(c.Context(), service.UploadImageInput{
		UserID:      userID,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image": img,
		"url":   s.imageService.MasterURL(img.Hash),
	})
}

// ServeImage handles GET /media/i/:hash/:file
func (s *Server) ServeImage(c *fiber.Ctx) error {
	hash := c.Params("hash")
	file := c.Params("file")

	path, err := s.imageService.ResolveForServing(c.Context(), hash, file)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Content-addressed files never change; cache hard.
	c.Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.SendFile(path)
}
