package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chronicle/internal/cache"
	"chronicle/internal/config"
	"chronicle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		JWTSecret:            "test-secret-which-is-long-enough-for-hmac",
		Port:                 "0",
		Env:                  "test",
		MediaDir:             t.TempDir(),
		ImageMaxUploadSizeMB: 1,
	}
}

// setupServer builds a full server over an in-memory database with the
// real route table. The cache client is cleared so tests cannot leak
// state into each other through Redis.
func setupServer(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Setenv("APP_ENV", "test")
	cache.SetClient(nil)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Location{},
		&models.Post{},
		&models.Comment{},
		&models.Image{},
		&models.ImageVariant{},
	))

	srv, err := NewServerWithDeps(testConfig(t), db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func authToken(t *testing.T, srv *Server, user *models.User) string {
	token, err := srv.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return token
}

func jsonRequest(method, target string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doJSON(t *testing.T, app *fiber.App, req *http.Request, out any) *http.Response {
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, out), "body: %s", body)
	}
	return resp
}

func createTestPost(t *testing.T, db *gorm.DB, userID uint, title string, published bool, pubDate time.Time) *models.Post {
	post := &models.Post{
		Title:     title,
		Text:      "body of " + title,
		Published: published,
		PubDate:   pubDate,
		UserID:    userID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestHealthEndpoints(t *testing.T) {
	app, _, _ := setupServer(t)

	for _, target := range []string{"/health", "/health/live", "/health/ready", "/api/"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, target)
	}
}

func TestStaticPages(t *testing.T) {
	app, _, _ := setupServer(t)

	var about map[string]any
	resp := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/pages/about", nil), &about)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, about, "body")

	var rules map[string]any
	resp = doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/pages/rules", nil), &rules)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, rules, "rules")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	app, _, _ := setupServer(t)

	requests := []*http.Request{
		jsonRequest(http.MethodPost, "/api/posts", fiber.Map{"title": "x", "text": "y"}),
		jsonRequest(http.MethodPut, "/api/posts/1", fiber.Map{"title": "x", "text": "y"}),
		jsonRequest(http.MethodDelete, "/api/posts/1", nil),
		jsonRequest(http.MethodPost, "/api/posts/1/comments", fiber.Map{"text": "hi"}),
		jsonRequest(http.MethodPut, "/api/users/me", fiber.Map{"bio": "x"}),
		httptest.NewRequest(http.MethodGet, "/api/users/me", nil),
	}

	for _, req := range requests {
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode,
			"%s %s", req.Method, req.URL.Path)
	}
}
