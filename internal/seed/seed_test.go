package seed

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clubhub/internal/models"
	"clubhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clubsCSV = `name,category,meeting_time,location,member_count,description
Association for Computing Machinery,Academic,Tuesdays 6pm,COB2 170,45.0,Computing society
Pre-Veterinary Club,Pre-Professional,,,twelve,Future vets
,Ignored,,,,
Chess Club,Recreation,Fridays,KL 109,8,Casual games
`

func TestImportClubs(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	testutil.CreateClub(t, db, "Chess Club", false, nil)

	n, err := ImportClubs(ctx, db, strings.NewReader(clubsCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "blank names and existing clubs are skipped")

	var acm models.Club
	require.NoError(t, db.Where("name = ?", "Association for Computing Machinery").First(&acm).Error)
	assert.True(t, acm.Verified)
	assert.False(t, acm.OfficerVerified)
	assert.Nil(t, acm.OwnerID)
	assert.Equal(t, 45, acm.MemberCount)
	assert.Equal(t, "COB2 170", acm.Location)

	var vet models.Club
	require.NoError(t, db.Where("name = ?", "Pre-Veterinary Club").First(&vet).Error)
	assert.Zero(t, vet.MemberCount)

	var chess models.Club
	require.NoError(t, db.Where("name = ?", "Chess Club").First(&chess).Error)
	assert.False(t, chess.Verified, "existing clubs are left untouched")

	n, err = ImportClubs(ctx, db, strings.NewReader(clubsCSV))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportClubs_MissingNameColumn(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := ImportClubs(context.Background(), db, strings.NewReader("title,category\nx,y\n"))
	assert.Error(t, err)
}

func TestParseMemberCount(t *testing.T) {
	assert.Equal(t, 12, parseMemberCount("12"))
	assert.Equal(t, 12, parseMemberCount("12.0"))
	assert.Equal(t, 0, parseMemberCount(""))
	assert.Equal(t, 0, parseMemberCount("-3"))
	assert.Equal(t, 0, parseMemberCount("lots"))
}

func TestDemoPosts(t *testing.T) {
	demos, err := DemoPosts()
	require.NoError(t, err)
	require.Len(t, demos, 5)
	assert.Equal(t, "Machine Learning Club", demos[0].Club)
	assert.True(t, demos[0].IsEvent)
	assert.Equal(t, 2, demos[0].OffsetDays)
	assert.Equal(t, -5, demos[4].OffsetDays)
}

func TestSeedDemoPosts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	var likers []models.User
	for _, email := range []string{"a@ucmerced.edu", "b@ucmerced.edu", "c@ucmerced.edu"} {
		likers = append(likers, *testutil.CreateUser(t, db, email, models.RoleStudent))
	}
	_, err := ImportClubs(ctx, db, strings.NewReader(clubsCSV))
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	demos := []DemoPost{
		{Club: "Computing Machinery", Caption: "Tech talk", OffsetDays: -1, Likes: 45},
		{Club: "Robotics Club", Caption: "Build night", IsEvent: true, OffsetDays: 3, Likes: 2},
	}
	n, err := SeedDemoPosts(ctx, db, demos, likers, now, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var talk models.Post
	require.NoError(t, db.Preload("Club").Where("caption = ?", "Tech talk").First(&talk).Error)
	assert.Equal(t, "Association for Computing Machinery", talk.Club.Name, "club names match by substring")
	assert.True(t, now.Add(-24*time.Hour).Equal(talk.CreatedAt))

	var build models.Post
	require.NoError(t, db.Preload("Club").Where("caption = ?", "Build night").First(&build).Error)
	assert.True(t, build.Club.Verified)
	assert.True(t, build.Club.OfficerVerified)
	assert.Equal(t, "General Meeting", build.EventTitle)
	assert.Equal(t, "TBD", build.EventLocation)
	require.NotNil(t, build.EventDate)
	assert.True(t, now.Add(72*time.Hour).Equal(*build.EventDate))

	var talkLikes, buildLikes int64
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", talk.ID).Count(&talkLikes).Error)
	require.NoError(t, db.Model(&models.PostLike{}).Where("post_id = ?", build.ID).Count(&buildLikes).Error)
	assert.EqualValues(t, 3, talkLikes, "likes are capped by the number of likers")
	assert.EqualValues(t, 2, buildLikes)
}

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	csvPath := filepath.Join(t.TempDir(), "clubs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(clubsCSV), 0o600))

	s := NewSeeder(db, Options{ClubsCSV: csvPath, Students: 4, SkipBcrypt: true, Seed: 7, Reset: true})
	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Students)
	assert.Equal(t, 3, sum.Clubs)
	assert.Equal(t, 5, sum.DemoPosts)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@ucmerced.edu").First(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	var students int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleStudent).Count(&students).Error)
	assert.EqualValues(t, 4, students)
}

func TestSeeder_MissingCSVIsSkipped(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{ClubsCSV: filepath.Join(t.TempDir(), "nope.csv"), Students: 1, SkipBcrypt: true, Seed: 1})
	sum, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Clubs)
	assert.Equal(t, 5, sum.DemoPosts)
}
