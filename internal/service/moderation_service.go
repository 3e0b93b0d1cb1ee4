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
)

// AdminDashboard summarises what needs an admin's attention.
type AdminDashboard struct {
	TotalUsers   int64         `json:"total_users"`
	TotalClubs   int64         `json:"total_clubs"`
	PendingClubs []models.Club `json:"pending_clubs"`
}

// ModerationService provides admin moderation of users, clubs and posts.
type ModerationService struct {
	users repository.UserRepository
	clubs repository.ClubRepository
	posts repository.PostRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(users repository.UserRepository, clubs repository.ClubRepository, posts repository.PostRepository) *ModerationService {
	return &ModerationService{users: users, clubs: clubs, posts: posts}
}

func recordModeration(ctx context.Context, actor Actor, action string, target uint) {
	observability.ModerationActions.WithLabelValues(action).Inc()
	middleware.Logger.InfoContext(ctx, "moderation action",
		slog.String("action", action),
		slog.Uint64("admin_id", uint64(actor.UserID)),
		slog.Uint64("target_id", uint64(target)),
	)
}

// Dashboard returns totals and the clubs awaiting verification.
func (s *ModerationService) Dashboard(ctx context.Context, actor Actor) (*AdminDashboard, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return cache.Remember(ctx, "admin_dashboard", cache.AdminDashboardKey, cache.AdminDashboardTTL,
		func(ctx context.Context) (*AdminDashboard, error) {
			users, err := s.users.Count(ctx)
			if err != nil {
				return nil, err
			}
			clubs, err := s.clubs.Count(ctx)
			if err != nil {
				return nil, err
			}
			pending, err := s.clubs.ListPending(ctx)
			if err != nil {
				return nil, err
			}
			return &AdminDashboard{TotalUsers: users, TotalClubs: clubs, PendingClubs: pending}, nil
		})
}

// VerifyClub marks a club and its officer verified. There is no inverse operation.
func (s *ModerationService) VerifyClub(ctx context.Context, actor Actor, clubID uint) (*models.Club, models.Notice, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, models.Notice{}, err
	}
	if err := s.clubs.Verify(ctx, clubID); err != nil {
		return nil, models.Notice{}, err
	}
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	recordModeration(ctx, actor, "verify_club", clubID)
	return club, models.Notice{
		Category: models.NoticeSuccess,
		Message:  fmt.Sprintf("%s and its officer have been verified!", club.Name),
	}, nil
}

// ListUsers returns every account for the admin user table.
func (s *ModerationService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// ChangeRole sets a user's role. Unknown role strings are rejected without mutation.
func (s *ModerationService) ChangeRole(ctx context.Context, actor Actor, userID uint, rawRole string) (*models.User, models.Notice, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, models.Notice{}, err
	}
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return nil, models.Notice{}, models.NewValidationError("Invalid role selected.")
	}
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, models.Notice{}, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, models.Notice{}, err
	}
	recordModeration(ctx, actor, "change_role", userID)
	return user, models.Notice{
		Category: models.NoticeSuccess,
		Message:  fmt.Sprintf("Role for %s updated to %s.", user.Email, role),
	}, nil
}

// DeleteUser removes an account. Admins cannot delete themselves.
func (s *ModerationService) DeleteUser(ctx context.Context, actor Actor, userID uint) (models.Notice, error) {
	if err := RequireAdmin(actor); err != nil {
		return models.Notice{}, err
	}
	if userID == actor.UserID {
		return models.Notice{}, models.NewConflictError("You cannot delete your own account while logged in.")
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return models.Notice{}, err
	}
	cache.Invalidate(ctx, cache.AdminDashboardKey)
	recordModeration(ctx, actor, "delete_user", userID)
	return models.Notice{Category: models.NoticeSuccess, Message: "User account deleted."}, nil
}

// DeletePost removes a post with its RSVPs and likes.
func (s *ModerationService) DeletePost(ctx context.Context, actor Actor, postID uint) (models.Notice, error) {
	if err := RequireAdmin(actor); err != nil {
		return models.Notice{}, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return models.Notice{}, err
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.Notice{}, err
	}
	if post.Club != nil {
		cache.InvalidateClub(ctx, post.Club.Slug())
	}
	recordModeration(ctx, actor, "delete_post", postID)
	return models.Notice{Category: models.NoticeInfo, Message: "Post removed successfully."}, nil
}
