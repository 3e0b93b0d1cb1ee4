package server

import (
	"io"

	"clubhub/internal/featureflags"
	"clubhub/internal/models"
	"clubhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

const clubDashboardPath = "/club/dashboard"

// ClubDashboard handles GET /api/club/dashboard
// @Summary Club console
// @Description The actor's own club with its follower count and posts
// @Tags club
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ClubDashboard
// @Failure 404 {object} models.ErrorResponse "No club yet; redirect points at onboarding"
// @Router /club/dashboard [get]
func (s *Server) ClubDashboard(c *fiber.Ctx) error {
	dash, err := s.clubService.Dashboard(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(dash)
}

// UpdateClubSettings handles PUT /api/club/settings
func (s *Server) UpdateClubSettings(c *fiber.Ctx) error {
	var in service.SettingsInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	club, notice, err := s.clubService.UpdateSettings(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, clubDashboardPath, fiber.Map{"club": club}))
}

// OnboardClub handles POST /api/club/onboarding
// @Summary Create or claim a club
// @Description Creates a new pending club, or claims an imported one by exact name
// @Tags club
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,category=string,description=string} true "Club details"
// @Success 200 {object} service.OnboardResult
// @Failure 409 {object} models.ErrorResponse
// @Router /club/onboarding [post]
func (s *Server) OnboardClub(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	res, err := s.clubService.Onboard(c.UserContext(), actorFrom(c), req.Name, req.Category, req.Description)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(res.Notice, clubDashboardPath, fiber.Map{
		"club":    res.Club,
		"claimed": res.Claimed,
	}))
}

// CreateClubPost handles POST /api/club/posts
func (s *Server) CreateClubPost(c *fiber.Ctx) error {
	var in service.PostInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, notice, err := s.clubService.CreatePost(c.UserContext(), actorFrom(c), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(withNotice(notice, clubDashboardPath, fiber.Map{"post": post}))
}

// EditClubPost handles PUT /api/club/posts/:id
func (s *Server) EditClubPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.PostInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, notice, err := s.clubService.EditPost(c.UserContext(), actorFrom(c), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, clubDashboardPath, fiber.Map{"post": post}))
}

// ClubPostRSVPs handles GET /api/club/posts/:id/rsvps
func (s *Server) ClubPostRSVPs(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, attendees, err := s.clubService.PostRSVPs(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post": post, "attendees": attendees})
}

// ClubFollowers handles GET /api/club/followers
func (s *Server) ClubFollowers(c *fiber.Ctx) error {
	followers, err := s.clubService.ListFollowers(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"followers": followers})
}

// RemoveClubFollower handles DELETE /api/club/followers/:userId
func (s *Server) RemoveClubFollower(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	notice, err := s.clubService.RemoveFollower(c.UserContext(), actorFrom(c), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(withNotice(notice, "/club/followers", nil))
}

// UploadClubImage handles POST /api/club/images. The returned image_file is
// then sent with a settings update or a post.
// @Summary Upload a picture
// @Tags club
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} object{image_file=string,url=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /club/images [post]
func (s *Server) UploadClubImage(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if !s.featureFlags.Enabled(featureflags.ClubImages, actor.UserID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feature", featureflags.ClubImages))
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
	}
	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
	}

	name, err := s.images.Save(c.UserContext(), file.Filename, file.Header.Get(fiber.HeaderContentType), content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"image_file": name,
		"url":        "/static/uploads/" + name,
	})
}
