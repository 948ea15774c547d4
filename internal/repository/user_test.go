package repository

import (
	"context"
	"errors"
	"testing"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("CreateAndGetByID", func(t *testing.T) {
		user := &models.User{Username: "alice", Email: "alice@example.com", Password: "hash"}
		err := repo.Create(ctx, user)
		assert.NoError(t, err)
		assert.NotZero(t, user.ID)

		got, err := repo.GetByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("GetByUsername", func(t *testing.T) {
		db.Create(&models.User{Username: "bob", Email: "bob@example.com"})

		got, err := repo.GetByUsername(ctx, "bob")
		assert.NoError(t, err)
		assert.Equal(t, "bob@example.com", got.Email)

		_, err = repo.GetByUsername(ctx, "nobody")
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("GetByEmailMissingIsNil", func(t *testing.T) {
		got, err := repo.GetByEmail(ctx, "ghost@example.com")
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("EmailTaken", func(t *testing.T) {
		user := &models.User{Username: "carol", Email: "carol@example.com"}
		db.Create(user)

		taken, err := repo.EmailTaken(ctx, "carol@example.com", 0)
		assert.NoError(t, err)
		assert.True(t, taken)

		// A user keeping their own address is not a conflict.
		taken, err = repo.EmailTaken(ctx, "carol@example.com", user.ID)
		assert.NoError(t, err)
		assert.False(t, taken)

		taken, err = repo.EmailTaken(ctx, "free@example.com", 0)
		assert.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("Update", func(t *testing.T) {
		user := &models.User{Username: "dave", Email: "dave@example.com"}
		db.Create(user)

		user.Bio = "updated bio"
		assert.NoError(t, repo.Update(ctx, user))

		got, err := repo.GetByID(ctx, user.ID)
		assert.NoError(t, err)
		assert.Equal(t, "updated bio", got.Bio)
	})
}

func TestCategoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCategoryRepository(db)
	ctx := context.Background()

	db.Create(&models.Category{Title: "Travel", Slug: "travel", Published: true})
	db.Create(&models.Category{Title: "Food", Slug: "food", Published: true})
	db.Create(&models.Category{Title: "Secret", Slug: "secret", Published: false})

	t.Run("GetPublishedBySlug", func(t *testing.T) {
		got, err := repo.GetPublishedBySlug(ctx, "travel")
		assert.NoError(t, err)
		assert.Equal(t, "Travel", got.Title)
	})

	t.Run("HiddenCategoryIsNotFound", func(t *testing.T) {
		_, err := repo.GetPublishedBySlug(ctx, "secret")
		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	})

	t.Run("ListPublishedExcludesHidden", func(t *testing.T) {
		categories, err := repo.ListPublished(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 2, len(categories))
		assert.Equal(t, "Food", categories[0].Title)
		assert.Equal(t, "Travel", categories[1].Title)
	})
}

func TestLocationRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLocationRepository(db)
	ctx := context.Background()

	db.Create(&models.Location{Name: "Reykjavik", Published: true})
	db.Create(&models.Location{Name: "Atlantis", Published: false})

	t.Run("ListPublishedExcludesHidden", func(t *testing.T) {
		locations, err := repo.ListPublished(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(locations))
		assert.Equal(t, "Reykjavik", locations[0].Name)
	})

	t.Run("GetByID", func(t *testing.T) {
		got, err := repo.GetByID(ctx, 1)
		assert.NoError(t, err)
		assert.Equal(t, "Reykjavik", got.Name)
	})
}
