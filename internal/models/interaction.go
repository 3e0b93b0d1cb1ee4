package models

import "time"

// Relation names one of the three toggleable user interactions.
type Relation string

const (
	// RelationFollow links a user to a club.
	RelationFollow Relation = "follow"
	// RelationRSVP links a user to an event post.
	RelationRSVP Relation = "rsvp"
	// RelationLike links a user to a post.
	RelationLike Relation = "like"
)

// Valid reports whether r is a known relation.
func (r Relation) Valid() bool {
	switch r {
	case RelationFollow, RelationRSVP, RelationLike:
		return true
	default:
		return false
	}
}

// RSVP records a user's commitment to an event post.
// The combination of UserID and PostID must be unique.
type RSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_rsvps_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_rsvps_user_post;index:idx_rsvps_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

// TableName specifies the table name for GORM
func (RSVP) TableName() string {
	return "rsvps"
}

// ClubFollower is a standing subscription from a user to a club.
// The combination of UserID and ClubID must be unique.
type ClubFollower struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_club_followers_user_club" json:"user_id"`
	ClubID    uint      `gorm:"not null;uniqueIndex:idx_club_followers_user_club;index:idx_club_followers_club" json:"club_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Club *Club `gorm:"foreignKey:ClubID" json:"club,omitempty"`
}

// TableName specifies the table name for GORM
func (ClubFollower) TableName() string {
	return "club_followers"
}

// PostLike represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_likes_user_post;index:idx_post_likes_post" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Post *Post `gorm:"foreignKey:PostID" json:"-"`
}

// TableName specifies the table name for GORM
func (PostLike) TableName() string {
	return "post_likes"
}
