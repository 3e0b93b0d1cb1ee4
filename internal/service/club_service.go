package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"clubhub/internal/cache"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/observability"
	"clubhub/internal/repository"

	"github.com/araddon/dateparse"
	"go.opentelemetry.io/otel/attribute"
)

// EventDateLayout is the datetime-local form format used for event dates.
const EventDateLayout = "2006-01-02T15:04"

// PostInput carries the editable fields of a club post.
type PostInput struct {
	Caption       string `json:"caption"`
	ImageFile     string `json:"image_file"`
	IsEvent       bool   `json:"is_event"`
	EventTitle    string `json:"event_title"`
	EventDate     string `json:"event_date"`
	EventLocation string `json:"event_location"`
}

// SettingsInput carries the editable club profile fields. An empty
// ImageFile keeps the current picture.
type SettingsInput struct {
	Description string `json:"description"`
	MeetingTime string `json:"meeting_time"`
	Location    string `json:"location"`
	ImageFile   string `json:"image_file"`
}

// OnboardResult is the outcome of Onboard.
type OnboardResult struct {
	Club    *models.Club  `json:"club"`
	Claimed bool          `json:"claimed"`
	Notice  models.Notice `json:"notice"`
}

// ClubDashboard is the club console landing view.
type ClubDashboard struct {
	Club          *models.Club   `json:"club"`
	FollowerCount int64          `json:"follower_count"`
	Posts         []*models.Post `json:"posts"`
}

// ClubService runs the club console: onboarding, settings, posts and followers.
type ClubService struct {
	users        repository.UserRepository
	clubs        repository.ClubRepository
	posts        repository.PostRepository
	interactions repository.InteractionRepository
	images       ImageRemover
	now          func() time.Time
}

// ImageRemover deletes stored pictures that an update replaced.
type ImageRemover interface {
	Remove(name string) error
}

// NewClubService returns a new ClubService.
func NewClubService(
	users repository.UserRepository,
	clubs repository.ClubRepository,
	posts repository.PostRepository,
	interactions repository.InteractionRepository,
) *ClubService {
	return &ClubService{
		users:        users,
		clubs:        clubs,
		posts:        posts,
		interactions: interactions,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithImageRemover makes settings and post edits delete the picture they replace.
func (s *ClubService) WithImageRemover(r ImageRemover) *ClubService {
	s.images = r
	return s
}

func (s *ClubService) discardImage(ctx context.Context, old, current string) {
	if s.images == nil || old == "" || old == current {
		return
	}
	if err := s.images.Remove(old); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove replaced image",
			slog.String("file", old),
			slog.String("error", err.Error()),
		)
	}
}

// Onboard creates a new club owned by the actor or claims an unowned one.
func (s *ClubService) Onboard(ctx context.Context, actor Actor, name, category, description string) (*OnboardResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "ClubService", "Onboard", attribute.String("club", name))
	defer span.End()

	if err := RequireClubOrAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.NewValidationError("Club name is required")
	}

	if _, err := s.clubs.GetByOwner(ctx, actor.UserID); err == nil {
		return nil, models.NewConflictError("You already manage a club.")
	} else if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	existing, err := s.clubs.GetByName(ctx, name)
	switch {
	case err == nil:
		return s.claim(ctx, actor, existing, description)
	case !models.IsCode(err, models.CodeNotFound):
		return nil, err
	}

	ownerID := actor.UserID
	club := &models.Club{
		Name:        name,
		Category:    strings.TrimSpace(category),
		Description: description,
		OwnerID:     &ownerID,
		MemberCount: 1,
	}
	if err := s.clubs.Create(ctx, club); err != nil {
		if !repository.IsUniqueViolation(err) {
			return nil, models.NewInternalError(err)
		}
		// Lost a race: either the name was just taken or the actor just got a club.
		if _, ownErr := s.clubs.GetByOwner(ctx, actor.UserID); ownErr == nil {
			return nil, models.NewConflictError("You already manage a club.")
		}
		existing, getErr := s.clubs.GetByName(ctx, name)
		if getErr != nil {
			return nil, getErr
		}
		return s.claim(ctx, actor, existing, description)
	}

	middleware.Logger.InfoContext(ctx, "club created",
		slog.Uint64("club_id", uint64(club.ID)),
		slog.Uint64("owner_id", uint64(actor.UserID)),
	)
	return &OnboardResult{
		Club:   club,
		Notice: models.Notice{Category: models.NoticeInfo, Message: "Club created. Wait for verification."},
	}, nil
}

func (s *ClubService) claim(ctx context.Context, actor Actor, club *models.Club, description string) (*OnboardResult, error) {
	if club.IsClaimed() {
		return nil, models.NewConflictError("Club already claimed.")
	}
	ok, err := s.clubs.Claim(ctx, club.ID, actor.UserID, description)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.NewConflictError("Club already claimed.")
	}
	claimed, err := s.clubs.GetByID(ctx, club.ID)
	if err != nil {
		return nil, err
	}
	middleware.Logger.InfoContext(ctx, "club claimed",
		slog.Uint64("club_id", uint64(club.ID)),
		slog.Uint64("owner_id", uint64(actor.UserID)),
	)
	return &OnboardResult{
		Club:    claimed,
		Claimed: true,
		Notice: models.Notice{
			Category: models.NoticeWarning,
			Message:  fmt.Sprintf("Claimed %s. Wait for verification.", claimed.Name),
		},
	}, nil
}

// ownClub resolves the club the actor manages.
func (s *ClubService) ownClub(ctx context.Context, actor Actor) (*models.Club, error) {
	if err := RequireClubOrAdmin(actor); err != nil {
		return nil, err
	}
	club, err := s.clubs.GetByOwner(ctx, actor.UserID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			return nil, appErr.WithRedirect("/club/onboarding")
		}
		return nil, err
	}
	if err := RequireClubOwnership(actor, club); err != nil {
		return nil, err
	}
	return club, nil
}

// Dashboard returns the actor's club with its real follower count and posts.
func (s *ClubService) Dashboard(ctx context.Context, actor Actor) (*ClubDashboard, error) {
	club, err := s.ownClub(ctx, actor)
	if err != nil {
		return nil, err
	}
	followers, err := s.interactions.Count(ctx, models.RelationFollow, club.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByClub(ctx, club.ID)
	if err != nil {
		return nil, err
	}
	return &ClubDashboard{Club: club, FollowerCount: followers, Posts: posts}, nil
}

// UpdateSettings edits the club profile.
func (s *ClubService) UpdateSettings(ctx context.Context, actor Actor, in SettingsInput) (*models.Club, models.Notice, error) {
	club, err := s.ownClub(ctx, actor)
	if err != nil {
		return nil, models.Notice{}, err
	}
	oldImage := club.ImageFile
	club.Description = in.Description
	club.MeetingTime = strings.TrimSpace(in.MeetingTime)
	club.Location = strings.TrimSpace(in.Location)
	if in.ImageFile != "" {
		club.ImageFile = in.ImageFile
	}
	if err := s.clubs.UpdateSettings(ctx, club); err != nil {
		return nil, models.Notice{}, err
	}
	s.discardImage(ctx, oldImage, club.ImageFile)
	return club, models.Notice{Category: models.NoticeSuccess, Message: "Profile updated!"}, nil
}

// CreatePost publishes a post for the actor's club. Event posts need an
// officer-verified club; a malformed event date falls back to now and an
// empty one leaves the event undated.
func (s *ClubService) CreatePost(ctx context.Context, actor Actor, in PostInput) (*models.Post, models.Notice, error) {
	club, err := s.ownClub(ctx, actor)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if in.IsEvent {
		if err := RequireOfficerVerified(club); err != nil {
			return nil, models.Notice{}, err
		}
	}

	post := &models.Post{
		ClubID:    club.ID,
		Caption:   in.Caption,
		ImageFile: in.ImageFile,
		IsEvent:   in.IsEvent,
	}
	if in.IsEvent {
		post.EventTitle = strings.TrimSpace(in.EventTitle)
		post.EventLocation = strings.TrimSpace(in.EventLocation)
		if strings.TrimSpace(in.EventDate) != "" {
			date, ok := ParseEventDate(in.EventDate)
			if !ok {
				date = s.now()
			}
			post.EventDate = &date
		}
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.Notice{}, err
	}
	post.Club = club
	cache.InvalidateClub(ctx, club.Slug())
	return post, models.Notice{Category: models.NoticeSuccess, Message: "Posted!"}, nil
}

// EditPost updates a post of the actor's club. A malformed event date keeps
// the previous value.
func (s *ClubService) EditPost(ctx context.Context, actor Actor, postID uint, in PostInput) (*models.Post, models.Notice, error) {
	if err := RequireClubOrAdmin(actor); err != nil {
		return nil, models.Notice{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	if err := RequireClubOwnership(actor, post.Club); err != nil {
		return nil, models.Notice{}, err
	}
	if in.IsEvent {
		if err := RequireOfficerVerified(post.Club); err != nil {
			return nil, models.Notice{}, err
		}
	}

	oldImage := post.ImageFile
	post.Caption = in.Caption
	if in.ImageFile != "" {
		post.ImageFile = in.ImageFile
	}
	post.IsEvent = in.IsEvent
	if in.IsEvent {
		post.EventTitle = strings.TrimSpace(in.EventTitle)
		post.EventLocation = strings.TrimSpace(in.EventLocation)
		if date, ok := ParseEventDate(in.EventDate); ok {
			post.EventDate = &date
		}
	}
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, models.Notice{}, err
	}
	s.discardImage(ctx, oldImage, post.ImageFile)
	cache.InvalidateClub(ctx, post.Club.Slug())
	return post, models.Notice{Category: models.NoticeSuccess, Message: "Updated!"}, nil
}

// ListFollowers returns the users following the actor's club.
func (s *ClubService) ListFollowers(ctx context.Context, actor Actor) ([]models.User, error) {
	club, err := s.ownClub(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.users.ListFollowers(ctx, club.ID)
}

// RemoveFollower drops userID from the actor's club followers.
func (s *ClubService) RemoveFollower(ctx context.Context, actor Actor, userID uint) (models.Notice, error) {
	club, err := s.ownClub(ctx, actor)
	if err != nil {
		return models.Notice{}, err
	}
	removed, err := s.interactions.Remove(ctx, models.RelationFollow, userID, club.ID)
	if err != nil {
		return models.Notice{}, err
	}
	if !removed {
		return models.Notice{}, models.NewNotFoundError("Follower", userID)
	}
	observability.RecordToggle(string(models.RelationFollow), false)
	cache.InvalidateClub(ctx, club.Slug())
	return models.Notice{Category: models.NoticeInfo, Message: "Removed follower."}, nil
}

// PostRSVPs lists attendees of one of the actor's posts.
func (s *ClubService) PostRSVPs(ctx context.Context, actor Actor, postID uint) (*models.Post, []models.User, error) {
	if err := RequireClubOrAdmin(actor); err != nil {
		return nil, nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	if err := RequireClubOwnership(actor, post.Club); err != nil {
		return nil, nil, err
	}
	attendees, err := s.users.ListAttendees(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return post, attendees, nil
}

// ParseEventDate reads a form date in UTC, trying the datetime-local layout
// first and then a lenient parser.
func ParseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(EventDateLayout, raw, time.UTC); err == nil {
		return t, true
	}
	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
