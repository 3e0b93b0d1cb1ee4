package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ClubPageKeyPrefix = "club:page:%s"
	ClubListKey       = "club:list"
	TokenBlacklistKey = "blacklist:%s"
	AdminDashboardKey = "admin:dashboard"
)

const (
	ClubPageTTL       = 2 * time.Minute
	ClubListTTL       = 10 * time.Minute
	AdminDashboardTTL = 30 * time.Second
)

func ClubPageKey(slug string) string {
	return fmt.Sprintf(ClubPageKeyPrefix, slug)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistKey, jti)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateClub drops every cached view that embeds club data.
func InvalidateClub(ctx context.Context, slug string) {
	Invalidate(ctx, ClubPageKey(slug), ClubListKey, AdminDashboardKey)
}

// Revoke blacklists a token id until it would have expired anyway.
func Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was blacklisted. Redis errors are treated as not revoked.
func IsRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}
