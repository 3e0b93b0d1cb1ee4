package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"clubhub/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed demo_posts.yml
var demoPostsYAML []byte

// DemoPost describes one showcase post. OffsetDays dates an event relative
// to now, or backdates a plain post.
type DemoPost struct {
	Club       string `yaml:"club"`
	Image      string `yaml:"image"`
	Caption    string `yaml:"caption"`
	IsEvent    bool   `yaml:"is_event"`
	Title      string `yaml:"title"`
	Location   string `yaml:"location"`
	OffsetDays int    `yaml:"offset_days"`
	Likes      int    `yaml:"likes"`
}

// DemoPosts returns the embedded showcase posts.
func DemoPosts() ([]DemoPost, error) {
	var posts []DemoPost
	if err := yaml.Unmarshal(demoPostsYAML, &posts); err != nil {
		return nil, fmt.Errorf("parse demo posts: %w", err)
	}
	return posts, nil
}

// SeedDemoPosts creates the showcase posts, creating any club they name
// that is not present yet, and spreads likes across likers.
func SeedDemoPosts(ctx context.Context, db *gorm.DB, demos []DemoPost, likers []models.User, now time.Time, rng *rand.Rand) (int, error) {
	created := 0
	for _, d := range demos {
		club, err := demoClub(ctx, db, d.Club)
		if err != nil {
			return created, err
		}

		offset := time.Duration(d.OffsetDays) * 24 * time.Hour
		post := &models.Post{
			ClubID:    club.ID,
			ImageFile: d.Image,
			Caption:   d.Caption,
			IsEvent:   d.IsEvent,
			CreatedAt: now,
		}
		if d.IsEvent {
			post.EventTitle = valueOr(d.Title, "General Meeting")
			post.EventLocation = valueOr(d.Location, "TBD")
			date := now.Add(offset)
			post.EventDate = &date
		} else {
			post.CreatedAt = now.Add(offset)
		}
		if err := db.WithContext(ctx).Create(post).Error; err != nil {
			return created, fmt.Errorf("create demo post for %s: %w", club.Name, err)
		}
		created++

		if err := likePost(ctx, db, post.ID, pick(rng, likers, d.Likes)); err != nil {
			return created, err
		}
	}
	return created, nil
}

// demoClub finds a club whose name contains name, or creates a verified one.
func demoClub(ctx context.Context, db *gorm.DB, name string) (*models.Club, error) {
	var club models.Club
	err := db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%").
		Order("id ASC").
		First(&club).Error
	if err == nil {
		return &club, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find club %q: %w", name, err)
	}

	club = models.Club{
		Name:            name,
		Category:        "General",
		Description:     fmt.Sprintf("Official page for %s.", name),
		Verified:        true,
		OfficerVerified: true,
		MemberCount:     10,
	}
	if err := db.WithContext(ctx).Create(&club).Error; err != nil {
		return nil, fmt.Errorf("create club %q: %w", name, err)
	}
	return &club, nil
}

func likePost(ctx context.Context, db *gorm.DB, postID uint, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	likes := make([]models.PostLike, len(users))
	for i, u := range users {
		likes[i] = models.PostLike{UserID: u.ID, PostID: postID}
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&likes).Error
	if err != nil {
		return fmt.Errorf("like post %d: %w", postID, err)
	}
	return nil
}

// pick returns up to n distinct users in random order.
func pick(rng *rand.Rand, users []models.User, n int) []models.User {
	if n > len(users) {
		n = len(users)
	}
	if n <= 0 {
		return nil
	}
	out := make([]models.User, 0, n)
	for _, i := range rng.Perm(len(users))[:n] {
		out = append(out, users[i])
	}
	return out
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
