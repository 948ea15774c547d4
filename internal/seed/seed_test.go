package seed

import (
	"testing"

	"chronicle/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Location{},
		&models.Post{}, &models.Comment{},
		&models.Image{}, &models.ImageVariant{},
	))
	return db
}

func TestCategoriesUpsert(t *testing.T) {
	db := setupSeedDB(t)

	categories, err := Categories(db)
	require.NoError(t, err)
	assert.Len(t, categories, len(BuiltInCategories))

	// Running again must not duplicate
	categories, err = Categories(db)
	require.NoError(t, err)
	assert.Len(t, categories, len(BuiltInCategories))

	var hidden models.Category
	require.NoError(t, db.Where("slug = ?", "drafts-corner").First(&hidden).Error)
	assert.False(t, hidden.Published)
}

func TestLocationsUpsert(t *testing.T) {
	db := setupSeedDB(t)

	locations, err := Locations(db)
	require.NoError(t, err)
	assert.Len(t, locations, len(BuiltInLocations))

	locations, err = Locations(db)
	require.NoError(t, err)
	assert.Len(t, locations, len(BuiltInLocations))
}

func TestSeederRun(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(5, 30))

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.EqualValues(t, 5, userCount)
	assert.EqualValues(t, 30, postCount)

	// Stable accounts must exist and use the shared password
	var alice models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&alice).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte(SeedPassword)))

	// Seeded posts never land in hidden categories
	var hidden models.Category
	require.NoError(t, db.Where("published = ?", false).First(&hidden).Error)
	var inHidden int64
	require.NoError(t, db.Model(&models.Post{}).Where("category_id = ?", hidden.ID).Count(&inHidden).Error)
	assert.Zero(t, inHidden)
}

func TestSeederClearAll(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db)
	require.NoError(t, s.Run(3, 10))

	require.NoError(t, s.ClearAll())

	for _, model := range []any{&models.User{}, &models.Post{}, &models.Comment{}, &models.Category{}, &models.Location{}} {
		var count int64
		require.NoError(t, db.Unscoped().Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}
