package seed

import (
	"chronicle/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BuiltInCategory is a permanent category created on every seed run.
type BuiltInCategory struct {
	Title       string
	Slug        string
	Description string
	Published   bool
}

// BuiltInCategories defines the permanent categories. "drafts-corner" stays
// hidden so there is always an unpublished category to test against.
var BuiltInCategories = []BuiltInCategory{
	{Title: "Travel", Slug: "travel", Description: "Trips, routes, and places worth the detour.", Published: true},
	{Title: "Food", Slug: "food", Description: "Cooking, restaurants, and recipes.", Published: true},
	{Title: "Technology", Slug: "technology", Description: "Software, hardware, and everything between.", Published: true},
	{Title: "Books", Slug: "books", Description: "Reading notes and recommendations.", Published: true},
	{Title: "Music", Slug: "music", Description: "Albums, concerts, and discovery.", Published: true},
	{Title: "Everyday Life", Slug: "life", Description: "Small observations from ordinary days.", Published: true},
	{Title: "Drafts Corner", Slug: "drafts-corner", Description: "A hidden category for works in progress.", Published: false},
}

// BuiltInLocations defines the permanent place tags.
var BuiltInLocations = []string{
	"Amsterdam", "Berlin", "Lisbon", "London", "New York",
	"Paris", "Prague", "Tokyo", "Vienna",
}

// Categories upserts the built-in categories and returns all of them,
// hidden ones included.
func Categories(db *gorm.DB) ([]models.Category, error) {
	for _, item := range BuiltInCategories {
		category := models.Category{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
			Published:   item.Published,
		}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "published", "updated_at"}),
		}).Create(&category).Error
		if err != nil {
			return nil, err
		}
	}

	var categories []models.Category
	if err := db.Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Locations upserts the built-in locations and returns the published ones.
func Locations(db *gorm.DB) ([]models.Location, error) {
	for _, name := range BuiltInLocations {
		location := models.Location{Name: name, Published: true}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&location).Error
		if err != nil {
			return nil, err
		}
	}

	var locations []models.Location
	if err := db.Where("published = ?", true).Order("name ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}
