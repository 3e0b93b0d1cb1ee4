package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultClubImage is used when a club has no uploaded picture.
const DefaultClubImage = "default_club.jpg"

// Club is an organization that publishes posts.
//
// Ownership states:
//   - OwnerID nil: unclaimed (bulk imported)
//   - OwnerID set, OfficerVerified false: claimed, pending officer verification
//   - OwnerID set, OfficerVerified true: claimed and verified
//
// Verified controls visibility in the global feed and is independent of
// OfficerVerified.
type Club struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Category        string    `gorm:"size:100" json:"category"`
	Description     string    `gorm:"type:text" json:"description"`
	Verified        bool      `gorm:"not null;default:false" json:"verified"`
	OfficerVerified bool      `gorm:"not null;default:false" json:"officer_verified"`
	ImageFile       string    `gorm:"size:120;not null;default:'default_club.jpg'" json:"image_file"`
	OwnerID         *uint     `gorm:"uniqueIndex" json:"owner_id"`
	Owner           *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	MeetingTime     string    `gorm:"size:100" json:"meeting_time"`
	Location        string    `gorm:"size:100" json:"location"`
	MemberCount     int       `json:"member_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Club) TableName() string {
	return "clubs"
}

// BeforeCreate fills defaults that the database would otherwise supply.
func (c *Club) BeforeCreate(_ *gorm.DB) error {
	if c.ImageFile == "" {
		c.ImageFile = DefaultClubImage
	}
	return nil
}

// IsClaimed reports whether a user owns the club.
func (c *Club) IsClaimed() bool {
	return c.OwnerID != nil
}

// Slug is the URL form of the club name.
func (c *Club) Slug() string {
	return ClubSlug(c.Name)
}

// ClubSlug converts a club name into its URL form.
func ClubSlug(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// ClubNameFromSlug reverses ClubSlug.
func ClubNameFromSlug(slug string) string {
	return strings.ReplaceAll(slug, "_", " ")
}
