package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"os"
	"path/filepath"

	"chronicle/internal/config"
	"chronicle/internal/models"
	"chronicle/internal/repository"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
	"gorm.io/gorm"
)

const (
	DefaultMediaDir             = "/tmp/chronicle/media"
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

// variantSizes are the webp renditions produced per upload, longest
// edge in pixels.
var variantSizes = []int{320, 1080}

type UploadImageInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

type ImageService struct {
	repo               repository.ImageRepository
	mediaDir           string
	maxUploadSizeBytes int64
}

func NewImageService(repo repository.ImageRepository, cfg *config.Config) *ImageService {
	mediaDir := DefaultMediaDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		repo:               repo,
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates, normalizes and stores an image. Storage is
// content-addressed: re-uploading identical bytes returns the existing
// record instead of writing twice.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	switch detectedType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}

	sum := sha256.Sum256(in.Content)
	hash := hex.EncodeToString(sum[:])

	existing, err := s.repo.GetByHash(ctx, hash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewInternalError(err)
	}

	master := resizeToFit(decoded, MasterMaxSize)
	bounds := master.Bounds()

	masterBytes, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	written := []string{}
	cleanup := func() {
		for _, p := range written {
			os.Remove(p)
		}
	}

	masterPath := filepath.Join(s.mediaDir, "i", hash, "master.jpg")
	if err := writeFile(masterPath, masterBytes); err != nil {
		return nil, models.NewInternalError(err)
	}
	written = append(written, masterPath)

	record := &models.Image{
		Hash:      hash,
		UserID:    in.UserID,
		MimeType:  "image/jpeg",
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		SizeBytes: int64(len(masterBytes)),
	}

	for _, size := range variantSizes {
		resized := resizeToFit(master, size)
		rb := resized.Bounds()
		data, err := encodeWebP(resized, WebPQuality)
		if err != nil {
			cleanup()
			return nil, models.NewInternalError(err)
		}

		variant := models.ImageVariant{
			SizePx:    size,
			Format:    "webp",
			Width:     rb.Dx(),
			Height:    rb.Dy(),
			SizeBytes: int64(len(data)),
		}
		path := filepath.Join(s.mediaDir, "i", hash, variant.Filename())
		if err := writeFile(path, data); err != nil {
			cleanup()
			return nil, models.NewInternalError(err)
		}
		written = append(written, path)
		record.Variants = append(record.Variants, variant)
	}

	if err := s.repo.Create(ctx, record); err != nil {
		cleanup()
		return nil, models.NewInternalError(err)
	}
	return record, nil
}

// MasterURL returns the canonical public path for an uploaded image.
func (s *ImageService) MasterURL(hash string) string {
	return fmt.Sprintf("/media/i/%s/master.jpg", hash)
}

// ResolveForServing maps a hash + file name to an on-disk path,
// rejecting anything that is not a known rendition of a stored image.
func (s *ImageService) ResolveForServing(ctx context.Context, hash, file string) (string, error) {
	if !isValidImageHash(hash) {
		return "", models.NewValidationError("Invalid image hash")
	}

	img, err := s.repo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.NewNotFoundError("Image", hash)
		}
		return "", models.NewInternalError(err)
	}

	known := file == "master.jpg"
	for _, v := range img.Variants {
		if v.Filename() == file {
			known = true
			break
		}
	}
	if !known {
		return "", models.NewNotFoundError("Image", hash)
	}

	fullPath := filepath.Join(s.mediaDir, "i", hash, file)
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Image", hash)
		}
		return "", models.NewInternalError(err)
	}
	return fullPath, nil
}

// isValidImageHash checks that the hash is strictly lowercase hex.
// This prevents path traversal via crafted hash parameters.
func isValidImageHash(hash string) bool {
	if len(hash) == 0 || len(hash) > 128 {
		return false
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// resizeToFit scales the image down so its longest edge is at most
// maxSize, preserving aspect ratio. Smaller images pass through.
func resizeToFit(src image.Image, maxSize int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxSize && h <= maxSize {
		return src
	}

	var nw, nh int
	if w >= h {
		nw = maxSize
		nh = h * maxSize / w
	} else {
		nh = maxSize
		nw = w * maxSize / h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality float32) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
