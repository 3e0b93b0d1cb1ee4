package server

import (
	"clubhub/internal/cache"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// AuthRequired validates the bearer token and loads the account it names.
// The role is always read from storage, so a role change or deletion takes
// effect on the next request even while the token is still valid.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := middleware.BearerToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required").WithRedirect("/login"))
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token").WithRedirect("/login"))
		}

		if cache.IsRevoked(c.UserContext(), claims.JTI) {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked").WithRedirect("/login"))
		}

		user, err := s.userRepo.GetByID(c.UserContext(), claims.UserID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Account no longer exists").WithRedirect("/login"))
			}
			return respondServiceError(c, err)
		}

		middleware.SetUserID(c, user.ID)
		c.Locals(actorKey, service.ActorFromUser(user))
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RoleRequired applies an access gate to every route in a group. It must
// run after AuthRequired.
func (s *Server) RoleRequired(gate func(service.Actor) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := gate(actorFrom(c)); err != nil {
			return respondServiceError(c, err)
		}
		return c.Next()
	}
}
