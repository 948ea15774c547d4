// Package seed provides database seeding utilities for development and
// testing. It fills the database with users, categories, locations, posts
// and comments so every listing and visibility path has data behind it.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"chronicle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedPassword is the plaintext password every seeded user gets.
const SeedPassword = "password123"

// Seeder creates demo data against the provided Gorm DB.
type Seeder struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ClearAll removes all seedable data. Child tables first so foreign keys
// hold on databases without cascading truncate.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	for _, table := range []string{"comments", "posts", "image_variants", "images", "categories", "locations", "users"} {
		if err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedUsers creates count users, all with SeedPassword. The first few are
// stable well-known accounts so logins survive reseeding.
func (s *Seeder) SeedUsers(count int) ([]models.User, error) {
	users := make([]models.User, 0, count)
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if count >= 3 {
		for _, name := range []string{"alice", "bob", "test"} {
			user := models.User{
				Username:  name,
				Email:     fmt.Sprintf("%s@example.com", name),
				Password:  string(hashedPassword),
				FirstName: gofakeit.FirstName(),
				LastName:  gofakeit.LastName(),
				Bio:       "One of the originals.",
			}
			if err := s.db.Create(&user).Error; err == nil {
				users = append(users, user)
			}
		}
	}

	for i := len(users); i < count; i++ {
		first := gofakeit.FirstName()
		last := gofakeit.LastName()
		username := fmt.Sprintf("%s_%s%d", first, last, i)
		user := models.User{
			Username:  username,
			Email:     fmt.Sprintf("%s@example.com", username),
			Password:  string(hashedPassword),
			FirstName: first,
			LastName:  last,
			Bio:       gofakeit.Sentence(10),
		}
		if err := s.db.Create(&user).Error; err != nil {
			log.Printf("Failed to create user %s: %v", username, err)
			continue
		}
		users = append(users, user)

		if i > 0 && i%100 == 0 {
			log.Printf("Created %d users...", i)
		}
	}

	return users, nil
}

// SeedPosts creates count posts spread across the given users, categories
// and locations. Pub dates range from 90 days back to 30 days forward and
// roughly one post in ten is kept unpublished, so the feed, the scheduled
// path and the author-only path all get exercised.
func (s *Seeder) SeedPosts(users []models.User, categories []models.Category, locations []models.Location, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("cannot seed posts without users")
	}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		user := users[s.r.Intn(len(users))]

		// 90 days back to 30 days forward
		offset := time.Duration(s.r.Intn(120*24)-90*24) * time.Hour
		pubDate := time.Now().Add(offset)

		post := models.Post{
			Title:     gofakeit.Sentence(s.r.Intn(6) + 3),
			Text:      gofakeit.Paragraph(s.r.Intn(3)+1, 3, 8, "\n\n"),
			PubDate:   pubDate,
			Published: s.r.Intn(10) != 0,
			UserID:    user.ID,
		}
		if len(categories) > 0 && s.r.Intn(10) != 0 {
			post.CategoryID = &categories[s.r.Intn(len(categories))].ID
		}
		if len(locations) > 0 && s.r.Intn(3) != 0 {
			post.LocationID = &locations[s.r.Intn(len(locations))].ID
		}

		if err := s.db.Create(&post).Error; err != nil {
			log.Printf("Failed to create post: %v", err)
			continue
		}
		posts = append(posts, post)
	}

	return posts, nil
}

// SeedComments attaches up to maxPerPost comments to each post, with
// creation times after the post so the oldest-first ordering looks natural.
func (s *Seeder) SeedComments(users []models.User, posts []models.Post, maxPerPost int) (int, error) {
	if len(users) == 0 || maxPerPost <= 0 {
		return 0, nil
	}

	total := 0
	for _, post := range posts {
		for j := 0; j < s.r.Intn(maxPerPost+1); j++ {
			user := users[s.r.Intn(len(users))]
			comment := models.Comment{
				Text:      gofakeit.Sentence(s.r.Intn(12) + 2),
				UserID:    user.ID,
				PostID:    post.ID,
				CreatedAt: post.CreatedAt.Add(time.Duration(j+1) * time.Hour),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				log.Printf("Failed to create comment: %v", err)
				continue
			}
			total++
		}
	}

	return total, nil
}

// Run seeds the whole dataset in dependency order.
func (s *Seeder) Run(numUsers, numPosts int) error {
	users, err := s.SeedUsers(numUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	categories, err := Categories(s.db)
	if err != nil {
		return fmt.Errorf("failed to create categories: %w", err)
	}
	log.Printf("✓ %d categories available", len(categories))

	locations, err := Locations(s.db)
	if err != nil {
		return fmt.Errorf("failed to create locations: %w", err)
	}
	log.Printf("✓ %d locations available", len(locations))

	// Hidden categories exist on purpose but seeded posts go to visible ones
	visible := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if c.Published {
			visible = append(visible, c)
		}
	}

	posts, err := s.SeedPosts(users, visible, locations, numPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, err := s.SeedComments(users, posts, 5)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}
