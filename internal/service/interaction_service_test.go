package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/repository"
	"clubhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type services struct {
	db           *gorm.DB
	users        repository.UserRepository
	clubs        repository.ClubRepository
	posts        repository.PostRepository
	interactions repository.InteractionRepository
	interaction  *InteractionService
	moderation   *ModerationService
	club         *ClubService
	feed         *FeedService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	s := &services{
		db:           db,
		users:        repository.NewUserRepository(db),
		clubs:        repository.NewClubRepository(db),
		posts:        repository.NewPostRepository(db),
		interactions: repository.NewInteractionRepository(db),
	}
	s.interaction = NewInteractionService(s.clubs, s.posts, s.interactions)
	s.moderation = NewModerationService(s.users, s.clubs, s.posts)
	s.club = NewClubService(s.users, s.clubs, s.posts, s.interactions)
	s.feed = NewFeedService(s.clubs, s.posts, s.interactions)
	return s
}

func actorOf(u *models.User) Actor {
	return ActorFromUser(u)
}

func TestInteractionService_FollowTwiceRemovesRow(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent)
	club := testutil.CreateClub(t, s.db, "Robotics Club", true, nil)

	res, err := s.interaction.Follow(ctx, actorOf(student), club.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.Equal(t, models.NoticeSuccess, res.Notice.Category)
	assert.Equal(t, "Now following Robotics Club!", res.Notice.Message)

	res, err = s.interaction.Follow(ctx, actorOf(student), club.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.Equal(t, "Unfollowed Robotics Club", res.Notice.Message)

	n, err := s.interactions.Count(ctx, models.RelationFollow, club.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionService_ToggleParity(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent)
	club := testutil.CreateClub(t, s.db, "Robotics Club", true, nil)
	event := testutil.CreateEvent(t, s.db, club, "Build Night", time.Now().Add(24*time.Hour))

	for i := 1; i <= 5; i++ {
		res, err := s.interaction.RSVP(ctx, actorOf(student), event.ID)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 1, res.Active, "toggle %d", i)
	}
	exists, err := s.interactions.Exists(ctx, models.RelationRSVP, student.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, exists, "an odd number of toggles leaves the RSVP active")
}

func TestInteractionService_RSVPRefusedForPlainPost(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent)
	club := testutil.CreateClub(t, s.db, "Robotics Club", true, nil)
	post := testutil.CreatePost(t, s.db, club, "Just an update")

	_, err := s.interaction.RSVP(ctx, actorOf(student), post.ID)
	appErr := assertCode(t, err, models.CodeValidation)
	assert.Equal(t, "This post is not an event.", appErr.Message)

	n, err := s.interactions.Count(ctx, models.RelationRSVP, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInteractionService_LikeReportsCount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	a := testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent)
	b := testutil.CreateUser(t, s.db, "b@ucmerced.edu", models.RoleStudent)
	club := testutil.CreateClub(t, s.db, "Robotics Club", true, nil)
	post := testutil.CreatePost(t, s.db, club, "Demo day")

	res, err := s.interaction.Like(ctx, actorOf(a), post.ID)
	require.NoError(t, err)
	assert.True(t, res.Active)
	assert.EqualValues(t, 1, res.LikesCount)

	res, err = s.interaction.Like(ctx, actorOf(b), post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.LikesCount)

	res, err = s.interaction.Like(ctx, actorOf(a), post.ID)
	require.NoError(t, err)
	assert.False(t, res.Active)
	assert.EqualValues(t, 1, res.LikesCount)
}

func TestInteractionService_MissingTargets(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))

	_, err := s.interaction.Follow(ctx, student, 404)
	assertCode(t, err, models.CodeNotFound)
	_, err = s.interaction.RSVP(ctx, student, 404)
	assertCode(t, err, models.CodeNotFound)
	_, err = s.interaction.Like(ctx, student, 404)
	assertCode(t, err, models.CodeNotFound)
	_, err = s.interaction.Toggle(ctx, student, models.Relation("block"), 1)
	assertCode(t, err, models.CodeValidation)
}

func TestInteractionService_AnonymousRejected(t *testing.T) {
	s := newServices(t)
	_, err := s.interaction.Follow(context.Background(), Actor{}, 1)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestInteractionService_ConcurrentLikesStayUnique(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	student := actorOf(testutil.CreateUser(t, s.db, "a@ucmerced.edu", models.RoleStudent))
	club := testutil.CreateClub(t, s.db, "Robotics Club", true, nil)
	post := testutil.CreatePost(t, s.db, club, "Demo day")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.interaction.Like(ctx, student, post.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent toggle failed: %v", err)
	}

	n, err := s.interactions.Count(ctx, models.RelationLike, post.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, n, int64(1))
}
