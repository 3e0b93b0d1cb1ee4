package server

import (
	"log/slog"
	"sync"
	"time"

	"clubhub/internal/cache"
	"clubhub/internal/middleware"
	"clubhub/internal/models"
	"clubhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

// Unknown emails are checked against dummyHash so both login failures cost one bcrypt compare.
var (
	comparePassword = bcrypt.CompareHashAndPassword
	dummyHash       = sync.OnceValue(func() []byte {
		h, err := bcrypt.GenerateFromPassword([]byte("clubhub-no-such-account"), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		return h
	})
)

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Token    string        `json:"token"`
	User     *models.User  `json:"user"`
	Notice   models.Notice `json:"notice"`
	Redirect string        `json:"redirect"`
}

// Signup handles POST /api/auth/signup
// @Summary Register a new account
// @Description Create a student or club account and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string,role=string} true "Signup details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	req.Email = validation.NormalizeEmail(req.Email)
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
	}

	role := models.RoleStudent
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		// admins are only made by an existing admin or the CLI
		if err != nil || parsed == models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid role selected."))
		}
		role = parsed
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	user := &models.User{Email: req.Email, Password: string(hashed), Role: role}
	if err := s.userRepo.Create(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}

	token, err := middleware.GenerateToken(s.config.JWTSecret, user.ID, tokenTTL)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "account created",
		slog.Uint64("user_id", uint64(user.ID)),
		slog.String("role", role.String()),
	)
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Token:    token,
		User:     user,
		Notice:   models.Notice{Category: models.NoticeSuccess, Message: "Account created!"},
		Redirect: landingPage(role),
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.UserContext(), validation.NormalizeEmail(req.Email))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			_ = comparePassword(dummyHash(), []byte(req.Password))
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid credentials"))
		}
		return respondServiceError(c, err)
	}
	if cmpErr := comparePassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid credentials"))
	}

	token, err := middleware.GenerateToken(s.config.JWTSecret, user.ID, tokenTTL)
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}

	return c.JSON(AuthResponse{
		Token:    token,
		User:     user,
		Notice:   models.Notice{Category: models.NoticeSuccess, Message: "Logged in successfully."},
		Redirect: landingPage(user.Role),
	})
}

// Logout handles POST /api/auth/logout
// @Summary Log out
// @Description Revoke the current token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{notice=models.Notice,redirect=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := c.Locals(claimsKey).(*middleware.TokenClaims)
	if ok {
		if err := cache.Revoke(c.UserContext(), claims.JTI, time.Until(claims.ExpiresAt)); err != nil {
			return respondServiceError(c, models.NewInternalError(err))
		}
	}
	return c.JSON(withNotice(
		models.Notice{Category: models.NoticeInfo, Message: "You have been logged out."},
		"/login", nil))
}

func landingPage(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleClub:
		return "/club/dashboard"
	default:
		return "/student/dashboard"
	}
}
