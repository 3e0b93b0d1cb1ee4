package repository

import (
	"context"
	"strings"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	ListGlobal(ctx context.Context, query string) ([]*models.Post, error)
	ListByClubIDs(ctx context.Context, clubIDs []uint) ([]*models.Post, error)
	ListByClub(ctx context.Context, clubID uint) ([]*models.Post, error)
	ListUpcomingByClub(ctx context.Context, clubID uint, now time.Time) ([]*models.Post, error)
	ListRSVPedBy(ctx context.Context, userID uint) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Club").First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Model(post).
		Select("caption", "image_file", "is_event", "event_title", "event_date", "event_location").
		Updates(post).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the post with its RSVPs and likes in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.RSVP{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return notFoundOr(err, "Post", id)
	}
	return nil
}

// ListGlobal returns posts of verified clubs, newest first. A non-empty
// query keeps posts whose event title, caption or club name contains it,
// case-insensitively.
func (r *postRepository) ListGlobal(ctx context.Context, query string) ([]*models.Post, error) {
	defer observability.TrackQuery("list_global", "posts")()

	db := r.db.WithContext(ctx).
		Preload("Club").
		Joins("JOIN clubs ON clubs.id = posts.club_id").
		Where("clubs.verified = ?", true)

	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		db = db.Where(
			`LOWER(COALESCE(posts.event_title, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(posts.caption, '')) LIKE ? ESCAPE '\' OR LOWER(clubs.name) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	var posts []*models.Post
	if err := db.Order("posts.created_at DESC, posts.id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByClubIDs(ctx context.Context, clubIDs []uint) ([]*models.Post, error) {
	if len(clubIDs) == 0 {
		return []*models.Post{}, nil
	}
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("club_id IN ?", clubIDs).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByClub(ctx context.Context, clubID uint) ([]*models.Post, error) {
	return r.ListByClubIDs(ctx, []uint{clubID})
}

func (r *postRepository) ListUpcomingByClub(ctx context.Context, clubID uint, now time.Time) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("club_id = ? AND is_event = ? AND event_date >= ?", clubID, true, now.UTC()).
		Order("event_date ASC, id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListRSVPedBy returns the user's RSVP'd posts by event date, undated last.
func (r *postRepository) ListRSVPedBy(ctx context.Context, userID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Club").
		Joins("JOIN rsvps ON rsvps.post_id = posts.id").
		Where("rsvps.user_id = ?", userID).
		Order("CASE WHEN posts.event_date IS NULL THEN 1 ELSE 0 END, posts.event_date ASC, posts.id ASC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
