package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix = "user:%d:profile"
	StatsKeyPrefix   = "user:%d:stats"
	FeedKey          = "feed:blog"
)

const (
	ProfileTTL = 5 * time.Minute
	StatsTTL   = time.Minute
	FeedTTL    = 10 * time.Minute
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func StatsKey(userID uint) string {
	return fmt.Sprintf(StatsKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached profile and stats for one user. Called on
// account writes; collection writes invalidate the stats key directly.
func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
	Invalidate(ctx, StatsKey(userID))
}
