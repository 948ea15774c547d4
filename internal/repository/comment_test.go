package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCommentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	author := &models.User{Username: "author", Email: "a@example.com"}
	commenter := &models.User{Username: "commenter", Email: "c@example.com"}
	db.Create(author)
	db.Create(commenter)

	post := &models.Post{Title: "post", Text: "body", Published: true, PubDate: time.Now(), UserID: author.ID}
	db.Create(post)

	t.Run("Create", func(t *testing.T) {
		comment := &models.Comment{Text: "first!", UserID: commenter.ID, PostID: post.ID}
		err := repo.Create(ctx, comment)
		assert.NoError(t, err)
		assert.NotZero(t, comment.ID)
	})

	t.Run("ListByPostOldestFirst", func(t *testing.T) {
		other := &models.Post{Title: "thread", Text: "body", Published: true, PubDate: time.Now(), UserID: author.ID}
		db.Create(other)

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		for i, text := range []string{"oldest", "middle", "newest"} {
			db.Create(&models.Comment{
				Text:      text,
				UserID:    commenter.ID,
				PostID:    other.ID,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			})
		}

		comments, err := repo.ListByPost(ctx, other.ID)
		assert.NoError(t, err)
		assert.Equal(t, 3, len(comments))
		assert.Equal(t, "oldest", comments[0].Text)
		assert.Equal(t, "newest", comments[2].Text)
		assert.Equal(t, "commenter", comments[0].User.Username)
	})

	t.Run("GetOwned", func(t *testing.T) {
		comment := &models.Comment{Text: "mine", UserID: commenter.ID, PostID: post.ID}
		db.Create(comment)

		got, err := repo.GetOwned(ctx, post.ID, comment.ID, commenter.ID)
		assert.NoError(t, err)
		assert.Equal(t, "mine", got.Text)
	})

	t.Run("GetOwnedWrongUserIsNotFound", func(t *testing.T) {
		comment := &models.Comment{Text: "theirs", UserID: commenter.ID, PostID: post.ID}
		db.Create(comment)

		_, err := repo.GetOwned(ctx, post.ID, comment.ID, author.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("GetOwnedWrongPostIsNotFound", func(t *testing.T) {
		other := &models.Post{Title: "elsewhere", Text: "body", Published: true, PubDate: time.Now(), UserID: author.ID}
		db.Create(other)
		comment := &models.Comment{Text: "misplaced", UserID: commenter.ID, PostID: post.ID}
		db.Create(comment)

		_, err := repo.GetOwned(ctx, other.ID, comment.ID, commenter.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("UpdateAndDelete", func(t *testing.T) {
		comment := &models.Comment{Text: "draft", UserID: commenter.ID, PostID: post.ID}
		db.Create(comment)

		comment.Text = "edited"
		assert.NoError(t, repo.Update(ctx, comment))

		got, err := repo.GetOwned(ctx, post.ID, comment.ID, commenter.ID)
		assert.NoError(t, err)
		assert.Equal(t, "edited", got.Text)

		assert.NoError(t, repo.Delete(ctx, comment))
		_, err = repo.GetOwned(ctx, post.ID, comment.ID, commenter.ID)
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})
}
