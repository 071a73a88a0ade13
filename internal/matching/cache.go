package matching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ScoreCache memoizes expensive pairwise score computations. Every
// operation is advisory: a cache outage degrades to a miss or a no-op
// and never blocks or fails the scoring path.
type ScoreCache interface {
	GetScore(ctx context.Context, seekerID, candidateID int64) (*ScoreDetail, bool)
	SetScore(ctx context.Context, seekerID, candidateID int64, detail *ScoreDetail)
	InvalidateUser(ctx context.Context, userID int64)
}

type redisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache returns a Redis-backed score cache. A nil client is
// allowed and turns every operation into a no-op, matching the
// "continue without Redis" startup path.
func NewScoreCache(client *redis.Client, ttl time.Duration) ScoreCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisScoreCache{client: client, ttl: ttl}
}

func scoreKey(seekerID, candidateID int64) string {
	return fmt.Sprintf("match:score:%d:%d", seekerID, candidateID)
}

func profileKey(userID int64) string {
	return fmt.Sprintf("match:profile:%d", userID)
}

func (c *redisScoreCache) GetScore(ctx context.Context, seekerID, candidateID int64) (*ScoreDetail, bool) {
	if c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, scoreKey(seekerID, candidateID)).Bytes()
	if err != nil {
		RecordCacheMiss()
		return nil, false
	}

	var detail ScoreDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		RecordCacheMiss()
		return nil, false
	}

	RecordCacheHit()
	return &detail, true
}

func (c *redisScoreCache) SetScore(ctx context.Context, seekerID, candidateID int64, detail *ScoreDetail) {
	if c.client == nil || detail == nil {
		return
	}

	data, err := json.Marshal(detail)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, scoreKey(seekerID, candidateID), data, c.ttl).Err(); err != nil {
		log.Printf("score cache write failed for %d/%d: %v", seekerID, candidateID, err)
	}
}

// InvalidateUser deletes every cached score referencing the user on
// either side, plus the cached profile snapshot.
func (c *redisScoreCache) InvalidateUser(ctx context.Context, userID int64) {
	if c.client == nil {
		return
	}

	patterns := []string{
		fmt.Sprintf("match:score:%d:*", userID),
		fmt.Sprintf("match:score:*:%d", userID),
	}

	for _, pattern := range patterns {
		if err := c.deleteByPattern(ctx, pattern); err != nil {
			log.Printf("score cache invalidation failed for user %d: %v", userID, err)
		}
	}

	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil && err != redis.Nil {
		log.Printf("profile cache delete failed for user %d: %v", userID, err)
	}
}

func (c *redisScoreCache) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// noopScoreCache is used by tests and by deployments without Redis.
type noopScoreCache struct{}

// NewNoopScoreCache returns a cache that stores nothing.
func NewNoopScoreCache() ScoreCache {
	return noopScoreCache{}
}

func (noopScoreCache) GetScore(context.Context, int64, int64) (*ScoreDetail, bool) {
	return nil, false
}

func (noopScoreCache) SetScore(context.Context, int64, int64, *ScoreDetail) {}

func (noopScoreCache) InvalidateUser(context.Context, int64) {}
