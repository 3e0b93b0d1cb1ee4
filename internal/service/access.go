// Package service holds the business rules: access gates, toggles,
// moderation, the club console and feed composition.
package service

import (
	"clubhub/internal/models"
	"clubhub/internal/observability"
)

// Actor is the authenticated user an operation runs on behalf of.
// Handlers load it from storage on every request so role changes apply immediately.
type Actor struct {
	UserID uint
	Role   models.Role
}

// ActorFromUser builds an Actor from a freshly loaded user.
func ActorFromUser(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

const (
	msgAccessDenied   = "Access denied."
	msgAdminRequired  = "Access denied. Admin account required."
	msgClubRequired   = "Access denied. Club account required."
	msgNotYourClub    = "Access denied. You can only manage your own club."
	msgOfficerPending = "Officer status pending."
)

func deny(gate, message string) *models.AppError {
	observability.AccessDenied.WithLabelValues(gate).Inc()
	return models.NewAccessDeniedError(message)
}

// RequireAdmin allows only admins.
func RequireAdmin(a Actor) error {
	switch a.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleStudent, models.RoleClub:
		return deny("admin", msgAdminRequired)
	default:
		return deny("admin", msgAccessDenied)
	}
}

// RequireClubOrAdmin allows club accounts and admins. Club-scoped mutations
// must additionally pass RequireClubOwnership.
func RequireClubOrAdmin(a Actor) error {
	switch a.Role {
	case models.RoleClub, models.RoleAdmin:
		return nil
	case models.RoleStudent:
		return deny("club", msgClubRequired)
	default:
		return deny("club", msgAccessDenied)
	}
}

// RequireMember allows any signed-in account with a known role.
func RequireMember(a Actor) error {
	if a.UserID == 0 {
		return models.NewUnauthorizedError("Authorization required")
	}
	switch a.Role {
	case models.RoleStudent, models.RoleClub, models.RoleAdmin:
		return nil
	default:
		return deny("member", msgAccessDenied)
	}
}

// RequireClubOwnership narrows a club-or-admin actor to the club they own.
func RequireClubOwnership(a Actor, club *models.Club) error {
	if err := RequireClubOrAdmin(a); err != nil {
		return err
	}
	if club == nil || club.OwnerID == nil || *club.OwnerID != a.UserID {
		return deny("ownership", msgNotYourClub)
	}
	return nil
}

// RequireOfficerVerified refuses event publishing for clubs whose officer
// status has not been confirmed by an admin.
func RequireOfficerVerified(club *models.Club) error {
	if !club.OfficerVerified {
		return deny("officer", msgOfficerPending).WithRedirect("/club/dashboard")
	}
	return nil
}
