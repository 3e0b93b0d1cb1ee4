// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	// RoleStudent browses feeds, follows clubs, RSVPs and likes.
	RoleStudent Role = "student"
	// RoleClub manages the one club it owns.
	RoleClub Role = "club"
	// RoleAdmin moderates users, clubs and posts.
	RoleAdmin Role = "admin"
)

// ParseRole converts raw input into a Role, rejecting anything outside the fixed set.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleStudent, RoleClub, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the fixed roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleClub, RoleAdmin:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// Value implements driver.Valuer so invalid roles never reach the database.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %q", string(r))
	}
	return string(r), nil
}

// Scan implements sql.Scanner.
func (r *Role) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		return fmt.Errorf("role is null")
	default:
		return fmt.Errorf("unsupported role type %T", src)
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
