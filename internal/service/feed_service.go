package service

import (
	"context"
	"fmt"
	"time"

	"clubhub/internal/cache"
	"clubhub/internal/models"
	"clubhub/internal/observability"
	"clubhub/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// CalendarColor is the colour every RSVP entry gets in the calendar widget.
const CalendarColor = "#0d6efd"

// FeedItem is a post enriched with the viewer's interaction state.
type FeedItem struct {
	Post       *models.Post `json:"post"`
	LikesCount int64        `json:"likes_count"`
	RSVPed     bool         `json:"rsvped"`
	Liked      bool         `json:"liked"`
	Following  bool         `json:"following"`
}

// ClubPage is the public page of one club.
type ClubPage struct {
	Club          *models.Club `json:"club"`
	Posts         []FeedItem   `json:"posts"`
	Upcoming      []FeedItem   `json:"upcoming"`
	FollowerCount int64        `json:"follower_count"`
	Following     bool         `json:"following"`
}

// EventDetail describes one post for its detail page.
type EventDetail struct {
	Post        *models.Post `json:"post"`
	HasRSVP     bool         `json:"has_rsvp"`
	Upcoming    bool         `json:"upcoming"`
	IsFollowing bool         `json:"is_following"`
	RSVPCount   int64        `json:"rsvp_count"`
	LikesCount  int64        `json:"likes_count"`
	Liked       bool         `json:"liked"`
}

// CalendarEntry is one RSVP'd event in calendar-widget form.
type CalendarEntry struct {
	Title string `json:"title"`
	Start string `json:"start"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// clubSnapshot is the shared, cacheable part of a club page.
type clubSnapshot struct {
	Club          models.Club    `json:"club"`
	Posts         []*models.Post `json:"posts"`
	FollowerCount int64          `json:"follower_count"`
}

// viewerState holds the acting user's interaction sets for one request.
type viewerState struct {
	rsvps   map[uint]struct{}
	likes   map[uint]struct{}
	follows map[uint]struct{}
}

func (v viewerState) has(set map[uint]struct{}, id uint) bool {
	_, ok := set[id]
	return ok
}

// FeedService composes the read-only student views.
type FeedService struct {
	clubs        repository.ClubRepository
	posts        repository.PostRepository
	interactions repository.InteractionRepository
	now          func() time.Time
}

// NewFeedService returns a new FeedService.
func NewFeedService(
	clubs repository.ClubRepository,
	posts repository.PostRepository,
	interactions repository.InteractionRepository,
) *FeedService {
	return &FeedService{
		clubs:        clubs,
		posts:        posts,
		interactions: interactions,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s *FeedService) viewer(ctx context.Context, userID uint) (viewerState, error) {
	var state viewerState
	for _, part := range []struct {
		rel models.Relation
		dst *map[uint]struct{}
	}{
		{models.RelationRSVP, &state.rsvps},
		{models.RelationLike, &state.likes},
		{models.RelationFollow, &state.follows},
	} {
		ids, err := s.interactions.TargetIDs(ctx, part.rel, userID)
		if err != nil {
			return viewerState{}, err
		}
		*part.dst = toSet(ids)
	}
	return state, nil
}

func (s *FeedService) enrich(ctx context.Context, state viewerState, posts []*models.Post) ([]FeedItem, error) {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	likes, err := s.interactions.CountByTargets(ctx, models.RelationLike, ids)
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, len(posts))
	for i, p := range posts {
		items[i] = FeedItem{
			Post:       p,
			LikesCount: likes[p.ID],
			RSVPed:     state.has(state.rsvps, p.ID),
			Liked:      state.has(state.likes, p.ID),
			Following:  state.has(state.follows, p.ClubID),
		}
	}
	return items, nil
}

func (s *FeedService) feed(ctx context.Context, actor Actor, load func(context.Context, viewerState) ([]*models.Post, error)) ([]FeedItem, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	state, err := s.viewer(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	posts, err := load(ctx, state)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, state, posts)
}

// Global returns posts of verified clubs, newest first, optionally filtered by q.
func (s *FeedService) Global(ctx context.Context, actor Actor, q string) ([]FeedItem, error) {
	ctx, span := observability.StartServiceSpan(ctx, "FeedService", "Global", attribute.String("q", q))
	defer span.End()
	return s.feed(ctx, actor, func(ctx context.Context, _ viewerState) ([]*models.Post, error) {
		return s.posts.ListGlobal(ctx, q)
	})
}

// Following returns posts of the clubs the actor follows, verified or not.
func (s *FeedService) Following(ctx context.Context, actor Actor) ([]FeedItem, error) {
	return s.feed(ctx, actor, func(ctx context.Context, state viewerState) ([]*models.Post, error) {
		ids := make([]uint, 0, len(state.follows))
		for id := range state.follows {
			ids = append(ids, id)
		}
		return s.posts.ListByClubIDs(ctx, ids)
	})
}

// Schedule returns the posts the actor RSVP'd, by event date.
func (s *FeedService) Schedule(ctx context.Context, actor Actor) ([]FeedItem, error) {
	return s.feed(ctx, actor, func(ctx context.Context, _ viewerState) ([]*models.Post, error) {
		return s.posts.ListRSVPedBy(ctx, actor.UserID)
	})
}

// Calendar returns the actor's RSVP'd dated events for the calendar widget.
func (s *FeedService) Calendar(ctx context.Context, actor Actor) ([]CalendarEntry, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListRSVPedBy(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	entries := make([]CalendarEntry, 0, len(posts))
	for _, p := range posts {
		if !p.IsEvent || p.EventDate == nil {
			continue
		}
		title := p.EventTitle
		if title == "" {
			title = p.Caption
		}
		entries = append(entries, CalendarEntry{
			Title: title,
			Start: p.EventDate.UTC().Format(time.RFC3339),
			URL:   fmt.Sprintf("/api/student/event/%d", p.ID),
			Color: CalendarColor,
		})
	}
	return entries, nil
}

// Club returns the page of the club named by slug.
func (s *FeedService) Club(ctx context.Context, actor Actor, slug string) (*ClubPage, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	snap, err := cache.Remember(ctx, "club_page", cache.ClubPageKey(slug), cache.ClubPageTTL,
		func(ctx context.Context) (*clubSnapshot, error) {
			club, err := s.clubs.GetByName(ctx, models.ClubNameFromSlug(slug))
			if err != nil {
				return nil, err
			}
			posts, err := s.posts.ListByClub(ctx, club.ID)
			if err != nil {
				return nil, err
			}
			followers, err := s.interactions.Count(ctx, models.RelationFollow, club.ID)
			if err != nil {
				return nil, err
			}
			return &clubSnapshot{Club: *club, Posts: posts, FollowerCount: followers}, nil
		})
	if err != nil {
		return nil, err
	}

	state, err := s.viewer(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	upcomingPosts, err := s.posts.ListUpcomingByClub(ctx, snap.Club.ID, s.now())
	if err != nil {
		return nil, err
	}
	posts, err := s.enrich(ctx, state, snap.Posts)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.enrich(ctx, state, upcomingPosts)
	if err != nil {
		return nil, err
	}
	club := snap.Club
	return &ClubPage{
		Club:          &club,
		Posts:         posts,
		Upcoming:      upcoming,
		FollowerCount: snap.FollowerCount,
		Following:     state.has(state.follows, club.ID),
	}, nil
}

// EventDetail returns one post with the actor's RSVP and follow state.
func (s *FeedService) EventDetail(ctx context.Context, actor Actor, postID uint) (*EventDetail, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	detail := &EventDetail{Post: post, Upcoming: post.IsUpcoming(s.now())}
	if detail.HasRSVP, err = s.interactions.Exists(ctx, models.RelationRSVP, actor.UserID, post.ID); err != nil {
		return nil, err
	}
	if detail.IsFollowing, err = s.interactions.Exists(ctx, models.RelationFollow, actor.UserID, post.ClubID); err != nil {
		return nil, err
	}
	if detail.Liked, err = s.interactions.Exists(ctx, models.RelationLike, actor.UserID, post.ID); err != nil {
		return nil, err
	}
	if detail.RSVPCount, err = s.interactions.Count(ctx, models.RelationRSVP, post.ID); err != nil {
		return nil, err
	}
	if detail.LikesCount, err = s.interactions.Count(ctx, models.RelationLike, post.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

// BrowseClubs returns every club by name.
func (s *FeedService) BrowseClubs(ctx context.Context, actor Actor) ([]models.Club, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	return cache.Remember(ctx, "club_list", cache.ClubListKey, cache.ClubListTTL, s.clubs.List)
}

// MyClubs returns the verified clubs the actor follows.
func (s *FeedService) MyClubs(ctx context.Context, actor Actor) ([]models.Club, error) {
	if err := RequireMember(actor); err != nil {
		return nil, err
	}
	ids, err := s.interactions.TargetIDs(ctx, models.RelationFollow, actor.UserID)
	if err != nil {
		return nil, err
	}
	clubs, err := s.clubs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	verified := clubs[:0]
	for _, c := range clubs {
		if c.Verified {
			verified = append(verified, c)
		}
	}
	return verified, nil
}
