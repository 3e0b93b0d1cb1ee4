package server

import (
	"clubhub/internal/models"

	"github.com/gofiber/fiber/v2"
)

const adminDashboardPath = "/admin/dashboard"

// AdminDashboard handles GET /api/admin/dashboard
// @Summary Admin dashboard
// @Description User and club totals plus the clubs awaiting verification
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AdminDashboard
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/dashboard [get]
func (s *Server) AdminDashboard(c *fiber.Ctx) error {
	dash, err := s.moderationService.Dashboard(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dash)
}

// VerifyClub handles POST /api/admin/clubs/:id/verify
func (s *Server) VerifyClub(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	club, notice, err := s.moderationService.VerifyClub(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, adminDashboardPath, fiber.Map{"club": club}))
}

// ListUsers handles GET /api/admin/users
func (s *Server) ListUsers(c *fiber.Ctx) error {
	users, err := s.moderationService.ListUsers(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

// ChangeUserRole handles PUT /api/admin/users/:id/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body object{role=string} true "student, club or admin"
// @Success 200 {object} object{user=models.User,notice=models.Notice}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/users/{id}/role [put]
func (s *Server) ChangeUserRole(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	user, notice, err := s.moderationService.ChangeRole(c.UserContext(), actorFrom(c), id, req.Role)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, "/admin/users", fiber.Map{"user": user}))
}

// DeleteUser handles DELETE /api/admin/users/:id
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	notice, err := s.moderationService.DeleteUser(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, "/admin/users", nil))
}

// DeletePost handles DELETE /api/admin/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	notice, err := s.moderationService.DeletePost(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, "/student/dashboard", nil))
}

// GetFeatureFlags returns the configured flags evaluated for the current admin.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.List(actorFrom(c).UserID)})
}
