// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"clubhub/internal/database"
	"clubhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a migrated SQLite database in a temp file. A file is used
// rather than :memory: so every pooled connection sees the same schema.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateClub inserts a club; owner may be nil.
func CreateClub(t *testing.T, db *gorm.DB, name string, verified bool, owner *models.User) *models.Club {
	t.Helper()
	club := &models.Club{Name: name, Category: "Academic", Verified: verified}
	if owner != nil {
		club.OwnerID = &owner.ID
	}
	require.NoError(t, db.Create(club).Error)
	return club
}

// CreatePost inserts a plain post for club.
func CreatePost(t *testing.T, db *gorm.DB, club *models.Club, caption string) *models.Post {
	t.Helper()
	post := &models.Post{ClubID: club.ID, Caption: caption}
	require.NoError(t, db.Create(post).Error)
	return post
}

// CreateEvent inserts an event post dated at when.
func CreateEvent(t *testing.T, db *gorm.DB, club *models.Club, title string, when time.Time) *models.Post {
	t.Helper()
	date := when.UTC()
	post := &models.Post{
		ClubID:        club.ID,
		Caption:       title + " details",
		IsEvent:       true,
		EventTitle:    title,
		EventDate:     &date,
		EventLocation: "COB 102",
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
