package cache

import (
	"context"
	"fmt"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Cache key builders for the recommendation engine. Keeping them here
// makes invalidation sites grep-able.

// RecommendationsKey is per user only. The full candidate list is cached
// once and the requested limit is applied after the read, so a single
// delete invalidates every limit a client may ask for.
func RecommendationsKey(userID uint) string {
	return fmt.Sprintf("recs:%d", userID)
}

func MatchAnalysisKey(userID, jobID uint) string {
	return fmt.Sprintf("match:%d:%d", userID, jobID)
}
