package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chronicle/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageResponse struct {
	Items      []*models.Post `json:"items"`
	Number     int            `json:"number"`
	Size       int            `json:"size"`
	TotalItems int64          `json:"total_items"`
	TotalPages int            `json:"total_pages"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

func TestGetPostsPagination(t *testing.T) {
	app, _, db := setupServer(t)
	author := createTestUser(t, db, "prolific")

	for i := 1; i <= 25; i++ {
		createTestPost(t, db, author.ID, fmt.Sprintf("post-%d", i), true,
			time.Now().Add(-time.Duration(26-i)*time.Hour))
	}

	t.Run("DefaultsToFirstPage", func(t *testing.T) {
		var page pageResponse
		resp := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/posts", nil), &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, 10, len(page.Items))
		assert.Equal(t, int64(25), page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, "post-25", page.Items[0].Title, "newest first")
	})

	t.Run("ThirdPageHasRemainder", func(t *testing.T) {
		var page pageResponse
		doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/posts?page=3", nil), &page)
		assert.Equal(t, 3, page.Number)
		assert.Equal(t, 5, len(page.Items))
		assert.False(t, page.HasNext)
	})

	t.Run("OutOfRangePageClamps", func(t *testing.T) {
		var page pageResponse
		resp := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/posts?page=99", nil), &page)
		require.Equal(t, http.StatusOK, resp.StatusCode, "clamped pages never 404")
		assert.Equal(t, 3, page.Number)
		assert.Equal(t, 5, len(page.Items))
	})

	t.Run("GarbagePageFallsBackToFirst", func(t *testing.T) {
		var page pageResponse
		resp := doJSON(t, app, httptest.NewRequest(http.MethodGet, "/api/posts?page=banana", nil), &page)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 1, page.Number)
	})
}

func TestGetPostVisibility(t *testing.T) {
	app, srv, db := setupServer(t)
	author := createTestUser(t, db, "author")
	reader := createTestUser(t, db, "reader")

	visible := createTestPost(t, db, author.ID, "visible", true, time.Now().Add(-time.Hour))
	unpublished := createTestPost(t, db, author.ID, "unpublished", false, time.Now().Add(-time.Hour))
	scheduled := createTestPost(t, db, author.ID, "scheduled", true, time.Now().Add(time.Hour))

	get := func(id uint, token string) int {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	authorTok := authToken(t, srv, author)
	readerTok := authToken(t, srv, reader)

	t.Run("VisiblePostIsPublic", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, get(visible.ID, ""))
	})

	t.Run("HiddenPostsAre404ForOthers", func(t *testing.T) {
		for _, p := range []*models.Post{unpublished, scheduled} {
			assert.Equal(t, http.StatusNotFound, get(p.ID, ""), p.Title)
			assert.Equal(t, http.StatusNotFound, get(p.ID, readerTok), p.Title)
		}
	})

	t.Run("AuthorSeesOwnHiddenPosts", func(t *testing.T) {
		for _, p := range []*models.Post{unpublished, scheduled} {
			req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", p.ID), nil)
			req.Header.Set("Authorization", "Bearer "+authorTok)

			var got models.Post
			resp := doJSON(t, app, req, &got)
			require.Equal(t, http.StatusOK, resp.StatusCode, p.Title)
			assert.Equal(t, p.ID, got.ID, p.Title)
			assert.Equal(t, p.Title, got.Title)
		}
	})

	t.Run("AuthorGetsTheRequestedPostNotTheirOwn", func(t *testing.T) {
		// An authenticated author fetching someone else's post must get
		// exactly that post back, and no access to the other's drafts.
		readerPost := createTestPost(t, db, reader.ID, "reader-public", true, time.Now().Add(-time.Hour))
		readerDraft := createTestPost(t, db, reader.ID, "reader-draft", false, time.Now().Add(-time.Hour))

		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/posts/%d", readerPost.ID), nil)
		req.Header.Set("Authorization", "Bearer "+authorTok)

		var got models.Post
		resp := doJSON(t, app, req, &got)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, readerPost.ID, got.ID)
		assert.Equal(t, "reader-public", got.Title)

		assert.Equal(t, http.StatusNotFound, get(readerDraft.ID, authorTok))
	})

	t.Run("MissingPostIs404", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get(99999, authorTok))
	})
}

func TestCreatePostHandler(t *testing.T) {
	app, srv, db := setupServer(t)
	author := createTestUser(t, db, "writer")
	token := authToken(t, srv, author)

	t.Run("Success", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/posts", fiber.Map{
			"title": "First post",
			"text":  "Hello world",
		})
		req.Header.Set("Authorization", "Bearer "+token)

		var post models.Post
		resp := doJSON(t, app, req, &post)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, "First post", post.Title)
		assert.Equal(t, author.ID, post.UserID)
		assert.True(t, post.Published)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		req := jsonRequest(http.MethodPost, "/api/posts", fiber.Map{"text": "no title"})
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdatePostOwnership(t *testing.T) {
	app, srv, db := setupServer(t)
	author := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	post := createTestPost(t, db, author.ID, "original", true, time.Now().Add(-time.Hour))

	t.Run("NonAuthorIsRedirectedWithoutMutation", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), fiber.Map{
			"title": "hijacked",
			"text":  "pwned",
		})
		req.Header.Set("Authorization", "Bearer "+authToken(t, srv, intruder))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/api/posts/%d", post.ID), resp.Header.Get("Location"))

		var stored models.Post
		require.NoError(t, db.First(&stored, post.ID).Error)
		assert.Equal(t, "original", stored.Title, "post must be untouched")
	})

	t.Run("AuthorCanUpdate", func(t *testing.T) {
		req := jsonRequest(http.MethodPut, fmt.Sprintf("/api/posts/%d", post.ID), fiber.Map{
			"title": "revised",
			"text":  "updated body",
		})
		req.Header.Set("Authorization", "Bearer "+authToken(t, srv, author))

		var updated models.Post
		resp := doJSON(t, app, req, &updated)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "revised", updated.Title)
	})
}

func TestDeletePostOwnership(t *testing.T) {
	app, srv, db := setupServer(t)
	author := createTestUser(t, db, "owner")
	intruder := createTestUser(t, db, "intruder")
	post := createTestPost(t, db, author.ID, "keep me", true, time.Now().Add(-time.Hour))

	t.Run("NonAuthorIsRedirectedWithoutDeletion", func(t *testing.T) {
		req := jsonRequest(http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), nil)
		req.Header.Set("Authorization", "Bearer "+authToken(t, srv, intruder))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

		var count int64
		db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
		assert.Equal(t, int64(1), count, "post must still exist")
	})

	t.Run("AuthorCanDelete", func(t *testing.T) {
		req := jsonRequest(http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), nil)
		req.Header.Set("Authorization", "Bearer "+authToken(t, srv, author))

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var count int64
		db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})
}
