package server

import (
	"context"
	"strings"

	"clubhub/internal/calendar"
	"clubhub/internal/featureflags"
	"clubhub/internal/models"
	"clubhub/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

// StudentDashboard handles GET /api/student/dashboard
// @Summary Global feed
// @Description Posts of verified clubs, newest first, optionally filtered by q
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search over event title, caption and club name"
// @Success 200 {object} object{posts=[]service.FeedItem,q=string}
// @Router /student/dashboard [get]
func (s *Server) StudentDashboard(c *fiber.Ctx) error {
	q := strings.TrimSpace(utils.CopyString(c.Query("q")))
	items, err := s.feedService.Global(c.UserContext(), actorFrom(c), q)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": items, "q": q})
}

// FollowingFeed handles GET /api/student/following
func (s *Server) FollowingFeed(c *fiber.Ctx) error {
	items, err := s.feedService.Following(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": items})
}

// MyRSVPs handles GET /api/student/my-rsvps
func (s *Server) MyRSVPs(c *fiber.Ctx) error {
	items, err := s.feedService.Schedule(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": items})
}

// MyRSVPsCalendar handles GET /api/student/my-rsvps/calendar
// @Summary RSVP calendar
// @Description Dated RSVP'd events in calendar-widget form
// @Tags student
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.CalendarEntry
// @Router /student/my-rsvps/calendar [get]
func (s *Server) MyRSVPsCalendar(c *fiber.Ctx) error {
	entries, err := s.feedService.Calendar(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}

// MyRSVPsICS handles GET /api/student/my-rsvps.ics
func (s *Server) MyRSVPsICS(c *fiber.Ctx) error {
	actor := actorFrom(c)
	if !s.featureFlags.Enabled(featureflags.CalendarICS, actor.UserID) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Feature", featureflags.CalendarICS))
	}

	items, err := s.feedService.Schedule(c.UserContext(), actor)
	if err != nil {
		return respondServiceError(c, err)
	}
	posts := make([]*models.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, item.Post)
	}

	body, err := calendar.ExportICS(posts, s.now())
	if err != nil {
		return respondServiceError(c, models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="my-rsvps.ics"`)
	return c.Send(body)
}

// EventDetail handles GET /api/student/event/:id
func (s *Server) EventDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	detail, err := s.feedService.EventDetail(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(detail)
}

// ToggleRSVP handles POST /api/student/rsvp/:id
// @Summary Toggle RSVP
// @Description RSVP to an event post, or cancel an existing RSVP
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} service.ToggleResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /student/rsvp/{id} [post]
func (s *Server) ToggleRSVP(c *fiber.Ctx) error {
	return s.toggle(c, s.interactionService.RSVP)
}

// ToggleFollow handles POST /api/student/follow/:id
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	return s.toggle(c, s.interactionService.Follow)
}

// ToggleLike handles POST /api/student/like/:id and answers in the shape the
// like button expects.
// @Summary Toggle like
// @Tags student
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{likes_count=int,liked=bool}
// @Router /student/like/{id} [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := s.interactionService.Like(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"likes_count": res.LikesCount,
		"liked":       res.Active,
	})
}

type toggleFunc func(ctx context.Context, actor service.Actor, targetID uint) (*service.ToggleResult, error)

func (s *Server) toggle(c *fiber.Ctx, fn toggleFunc) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	res, err := fn(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(res)
}

// BrowseClubs handles GET /api/student/clubs
func (s *Server) BrowseClubs(c *fiber.Ctx) error {
	clubs, err := s.feedService.BrowseClubs(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"clubs": clubs})
}

// ClubPage handles GET /api/student/club/:slug
func (s *Server) ClubPage(c *fiber.Ctx) error {
	page, err := s.feedService.Club(c.UserContext(), actorFrom(c), utils.CopyString(c.Params("slug")))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// MyClubs handles GET /api/student/my-clubs
func (s *Server) MyClubs(c *fiber.Ctx) error {
	clubs, err := s.feedService.MyClubs(c.UserContext(), actorFrom(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"clubs": clubs})
}
