package database

import (
	"context"
	"path/filepath"
	"testing"

	"clubhub/internal/config"
	"clubhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPersistentModels_IncludesInteractionTables(t *testing.T) {
	var rsvp, follow, like bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.RSVP:
			rsvp = true
		case *models.ClubFollower:
			follow = true
		case *models.PostLike:
			like = true
		}
	}
	assert.True(t, rsvp)
	assert.True(t, follow)
	assert.True(t, like)
}

func TestDialector_RejectsUnknownDriver(t *testing.T) {
	_, err := Dialector(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestConnect_SQLite(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: filepath.Join(t.TempDir(), "clubhub.db"),
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, Ping(context.Background(), db))

	for _, table := range []string{"users", "clubs", "posts", "rsvps", "club_followers", "post_likes"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.PostLike{}, "idx_post_likes_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.RSVP{}, "idx_rsvps_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.ClubFollower{}, "idx_club_followers_user_club"))
}

func TestConnect_DuplicateLikeIsTranslated(t *testing.T) {
	cfg := &config.Config{
		DBDriver:     "sqlite",
		DBSQLitePath: filepath.Join(t.TempDir(), "clubhub.db"),
	}
	db, err := Connect(cfg)
	require.NoError(t, err)

	user := models.User{Email: "a@b.edu", Password: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	club := models.Club{Name: "Chess Club"}
	require.NoError(t, db.Create(&club).Error)
	post := models.Post{ClubID: club.ID, Caption: "hi"}
	require.NoError(t, db.Create(&post).Error)

	require.NoError(t, db.Create(&models.PostLike{UserID: user.ID, PostID: post.ID}).Error)
	err = db.Create(&models.PostLike{UserID: user.ID, PostID: post.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
