package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-arena-service/internal/app"
	"quiz-arena-service/internal/domain"
)

// LeaderboardCache is a read-through cache of ranking pages. Queries that
// carry a requesting user bypass the cache (per-user ranks would explode the
// key space); anonymous pages are cached as JSON with TTL plus jitter.
// Redis failures degrade to the underlying aggregator.
type LeaderboardCache struct {
	client *redis.Client
	inner  app.Ranker
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, inner app.Ranker, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		inner:  inner,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) GetRanking(ctx context.Context, q domain.RankingQuery) (*domain.Ranking, error) {
	if q.RequestingUserID != "" {
		return c.inner.GetRanking(ctx, q)
	}

	key := c.key(q)
	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var ranking domain.Ranking
		if err := json.Unmarshal(cached, &ranking); err == nil {
			return &ranking, nil
		}
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var ranking domain.Ranking
			if err := json.Unmarshal(cached, &ranking); err == nil {
				return &ranking, nil
			}
		}

		ranking, err := c.inner.GetRanking(ctx, q)
		if err != nil {
			return nil, err
		}
		if data, err := json.Marshal(ranking); err == nil {
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return ranking, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Ranking), nil
}

func (c *LeaderboardCache) key(q domain.RankingQuery) string {
	category := q.CategoryID
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("leaderboard:%s:%s:%d:%d", q.Period, category, q.Limit, q.Offset)
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
