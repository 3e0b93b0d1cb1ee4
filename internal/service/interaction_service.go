package service

import (
	"context"
	"fmt"
	"log/slog"

	"clubhub/internal/cache"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/observability"
	"clubhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ToggleResult reports the state of a (user, target) relation after a toggle.
type ToggleResult struct {
	Relation   models.Relation `json:"relation"`
	TargetID   uint            `json:"target_id"`
	Active     bool            `json:"active"`
	LikesCount int64           `json:"likes_count"`
	Notice     models.Notice   `json:"notice"`
}

// InteractionService applies follow, RSVP and like toggles.
type InteractionService struct {
	clubs        repository.ClubRepository
	posts        repository.PostRepository
	interactions repository.InteractionRepository
}

// NewInteractionService returns a new InteractionService.
func NewInteractionService(
	clubs repository.ClubRepository,
	posts repository.PostRepository,
	interactions repository.InteractionRepository,
) *InteractionService {
	return &InteractionService{clubs: clubs, posts: posts, interactions: interactions}
}

// Toggle flips the actor's relation to targetID. Follow targets a club;
// RSVP and like target a post, and RSVP only accepts event posts.
func (s *InteractionService) Toggle(ctx context.Context, actor Actor, rel models.Relation, targetID uint) (*ToggleResult, error) {
	ctx, span := observability.StartServiceSpan(ctx, "InteractionService", "Toggle",
		attribute.String("relation", string(rel)),
		attribute.Int64("target_id", int64(targetID)),
	)
	defer span.End()

	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	if !rel.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown relation %q", rel))
	}

	var (
		club *models.Club
		err  error
	)
	switch rel {
	case models.RelationFollow:
		club, err = s.clubs.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
	case models.RelationRSVP:
		post, err := s.posts.GetByID(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if !post.IsEvent {
			return nil, models.NewValidationError("This post is not an event.")
		}
	case models.RelationLike:
		if _, err := s.posts.GetByID(ctx, targetID); err != nil {
			return nil, err
		}
	}

	active, err := s.interactions.Toggle(ctx, rel, actor.UserID, targetID)
	if err != nil {
		return nil, err
	}
	observability.RecordToggle(string(rel), active)

	result := &ToggleResult{Relation: rel, TargetID: targetID, Active: active}

	switch rel {
	case models.RelationFollow:
		cache.InvalidateClub(ctx, club.Slug())
		if active {
			result.Notice = models.Notice{Category: models.NoticeSuccess, Message: fmt.Sprintf("Now following %s!", club.Name)}
		} else {
			result.Notice = models.Notice{Category: models.NoticeInfo, Message: fmt.Sprintf("Unfollowed %s", club.Name)}
		}
	case models.RelationRSVP:
		if active {
			result.Notice = models.Notice{Category: models.NoticeSuccess, Message: "RSVP confirmed!"}
		} else {
			result.Notice = models.Notice{Category: models.NoticeInfo, Message: "RSVP removed"}
		}
	case models.RelationLike:
		count, err := s.interactions.Count(ctx, models.RelationLike, targetID)
		if err != nil {
			return nil, err
		}
		result.LikesCount = count
		if active {
			result.Notice = models.Notice{Category: models.NoticeSuccess, Message: "Liked"}
		} else {
			result.Notice = models.Notice{Category: models.NoticeInfo, Message: "Like removed"}
		}
	}

	middleware.Logger.InfoContext(ctx, "interaction toggled",
		slog.String("relation", string(rel)),
		slog.Uint64("target_id", uint64(targetID)),
		slog.Bool("active", active),
	)
	return result, nil
}

// Follow toggles the actor following a club.
func (s *InteractionService) Follow(ctx context.Context, actor Actor, clubID uint) (*ToggleResult, error) {
	return s.Toggle(ctx, actor, models.RelationFollow, clubID)
}

// RSVP toggles the actor's RSVP to an event post.
func (s *InteractionService) RSVP(ctx context.Context, actor Actor, postID uint) (*ToggleResult, error) {
	return s.Toggle(ctx, actor, models.RelationRSVP, postID)
}

// Like toggles the actor's like on a post.
func (s *InteractionService) Like(ctx context.Context, actor Actor, postID uint) (*ToggleResult, error) {
	return s.Toggle(ctx, actor, models.RelationLike, postID)
}
