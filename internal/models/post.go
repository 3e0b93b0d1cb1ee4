package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultPostImage is used when a post has no uploaded picture.
const DefaultPostImage = "default.jpg"

// Post is a club update. When IsEvent is set the Event* fields describe the event.
type Post struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ClubID        uint       `gorm:"not null;index" json:"club_id"`
	Club          *Club      `gorm:"foreignKey:ClubID" json:"club,omitempty"`
	ImageFile     string     `gorm:"size:120;not null;default:'default.jpg'" json:"image_file"`
	Caption       string     `gorm:"type:text" json:"caption"`
	IsEvent       bool       `gorm:"not null;default:false" json:"is_event"`
	EventTitle    string     `gorm:"size:100" json:"event_title,omitempty"`
	EventDate     *time.Time `gorm:"index" json:"event_date,omitempty"`
	EventLocation string     `gorm:"size:100" json:"event_location,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// BeforeCreate fills defaults that the database would otherwise supply.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ImageFile == "" {
		p.ImageFile = DefaultPostImage
	}
	return nil
}

// IsUpcoming reports whether the post is an event dated at or after now.
func (p *Post) IsUpcoming(now time.Time) bool {
	return p.IsEvent && p.EventDate != nil && !p.EventDate.Before(now)
}
