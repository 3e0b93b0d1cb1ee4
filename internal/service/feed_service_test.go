package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clubhub/internal/cache"
	"clubhub/internal/models"
	"clubhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captions(items []FeedItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Post.Caption
	}
	return out
}

func TestFeedService_GlobalHidesUnverifiedClubs(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	unverified := testutil.CreateClub(t, s.db, "Shadow Club", false, nil)
	testutil.CreatePost(t, s.db, unverified, "Secret meeting")

	items, err := s.feed.Global(ctx, student, "")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = s.feed.Global(ctx, student, "secret")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedService_GlobalSearch(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	ai := testutil.CreateClub(t, s.db, "AI Club", true, nil)
	hiking := testutil.CreateClub(t, s.db, "Hiking Club", true, nil)
	testutil.CreatePost(t, s.db, ai, "Deep Dive into Neural Networks")
	testutil.CreatePost(t, s.db, hiking, "Trail cleanup this weekend")

	items, err := s.feed.Global(ctx, student, "Network")
	require.NoError(t, err)
	assert.Equal(t, []string{"Deep Dive into Neural Networks"}, captions(items))

	items, err = s.feed.Global(ctx, student, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Trail cleanup this weekend", "Deep Dive into Neural Networks"}, captions(items))
}

func TestFeedService_EnrichesViewerState(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent)
	b := testutil.CreateUser(t, s.db, "b@ucmerced.edu", models.RoleStudent)
	club := testutil.CreateClub(t, s.db, "AI Club", true, nil)
	event := testutil.CreateEvent(t, s.db, club, "Paper Reading", time.Now().Add(48*time.Hour))

	_, err := s.interaction.Follow(ctx, actorOf(a), club.ID)
	require.NoError(t, err)
	_, err = s.interaction.RSVP(ctx, actorOf(a), event.ID)
	require.NoError(t, err)
	_, err = s.interaction.Like(ctx, actorOf(a), event.ID)
	require.NoError(t, err)
	_, err = s.interaction.Like(ctx, actorOf(b), event.ID)
	require.NoError(t, err)

	items, err := s.feed.Global(ctx, actorOf(a), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].RSVPed)
	assert.True(t, items[0].Liked)
	assert.True(t, items[0].Following)
	assert.EqualValues(t, 2, items[0].LikesCount)

	items, err = s.feed.Global(ctx, actorOf(b), "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].RSVPed)
	assert.True(t, items[0].Liked)
	assert.False(t, items[0].Following)
}

func TestFeedService_FollowingIncludesUnverified(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	followed := testutil.CreateClub(t, s.db, "New Club", false, nil)
	other := testutil.CreateClub(t, s.db, "Other Club", true, nil)
	testutil.CreatePost(t, s.db, followed, "Hello world")
	testutil.CreatePost(t, s.db, other, "Not followed")

	items, err := s.feed.Following(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.interaction.Follow(ctx, student, followed.ID)
	require.NoError(t, err)

	items, err = s.feed.Following(ctx, student)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello world"}, captions(items))

	mine, err := s.feed.MyClubs(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, mine, "my clubs lists only verified follows")
}

func TestFeedService_ScheduleAndCalendar(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	club := testutil.CreateClub(t, s.db, "AI Club", false, nil)
	later := testutil.CreateEvent(t, s.db, club, "Hackathon", time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC))
	sooner := testutil.CreateEvent(t, s.db, club, "Kickoff", time.Date(2026, 4, 2, 17, 0, 0, 0, time.UTC))

	for _, id := range []uint{later.ID, sooner.ID} {
		_, err := s.interaction.RSVP(ctx, student, id)
		require.NoError(t, err)
	}

	items, err := s.feed.Schedule(ctx, student)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, sooner.ID, items[0].Post.ID)
	assert.Equal(t, later.ID, items[1].Post.ID)

	entries, err := s.feed.Calendar(ctx, student)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, CalendarEntry{
		Title: "Kickoff",
		Start: "2026-04-02T17:00:00Z",
		URL:   fmt.Sprintf("/api/student/event/%d", sooner.ID),
		Color: "#0d6efd",
	}, entries[0])
}

func TestFeedService_ClubPage(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })

	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	club := testutil.CreateClub(t, s.db, "Data Science Club", true, nil)
	testutil.CreateEvent(t, s.db, club, "Past Meetup", time.Now().Add(-48*time.Hour))
	upcoming := testutil.CreateEvent(t, s.db, club, "Kaggle Night", time.Now().Add(48*time.Hour))

	page, err := s.feed.Club(ctx, student, "Data_Science_Club")
	require.NoError(t, err)
	assert.Equal(t, club.ID, page.Club.ID)
	assert.Len(t, page.Posts, 2)
	require.Len(t, page.Upcoming, 1)
	assert.Equal(t, upcoming.ID, page.Upcoming[0].Post.ID)
	assert.False(t, page.Following)
	assert.Zero(t, page.FollowerCount)
	assert.True(t, mr.Exists(cache.ClubPageKey("Data_Science_Club")))

	_, err = s.interaction.Follow(ctx, student, club.ID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ClubPageKey("Data_Science_Club")), "following invalidates the club page")

	page, err = s.feed.Club(ctx, student, "Data_Science_Club")
	require.NoError(t, err)
	assert.True(t, page.Following)
	assert.EqualValues(t, 1, page.FollowerCount)

	_, err = s.feed.Club(ctx, student, "No_Such_Club")
	assertCode(t, err, models.CodeNotFound)
}

func TestFeedService_EventDetailAndBrowse(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	beta := testutil.CreateClub(t, s.db, "Beta Club", true, nil)
	testutil.CreateClub(t, s.db, "Alpha Club", false, nil)
	event := testutil.CreateEvent(t, s.db, beta, "Mixer", time.Now().Add(time.Hour))

	_, err := s.interaction.RSVP(ctx, student, event.ID)
	require.NoError(t, err)
	_, err = s.interaction.Follow(ctx, student, beta.ID)
	require.NoError(t, err)

	detail, err := s.feed.EventDetail(ctx, student, event.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasRSVP)
	assert.True(t, detail.IsFollowing)
	assert.EqualValues(t, 1, detail.RSVPCount)
	assert.False(t, detail.Liked)
	assert.True(t, detail.Upcoming)

	past := testutil.CreateEvent(t, s.db, beta, "Last Mixer", time.Now().Add(-24*time.Hour))
	detail, err = s.feed.EventDetail(ctx, student, past.ID)
	require.NoError(t, err)
	assert.False(t, detail.Upcoming)
	plain := testutil.CreatePost(t, s.db, beta, "Photos from the mixer")
	detail, err = s.feed.EventDetail(ctx, student, plain.ID)
	require.NoError(t, err)
	assert.False(t, detail.Upcoming, "plain posts are never upcoming")

	clubs, err := s.feed.BrowseClubs(ctx, student)
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Alpha Club", clubs[0].Name)

	mine, err := s.feed.MyClubs(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Beta Club", mine[0].Name)
}
