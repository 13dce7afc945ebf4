package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const peKeyPrefix = "valuation:pe:"

// RedisStore keeps conservative P/E estimates in Redis so repeated daily
// runs can reuse them. Entries expire after the configured TTL. Any Redis
// error degrades to a cache miss; the aggregator recomputes instead.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Entry
}

// NewRedisStore connects to Redis at addr
func NewRedisStore(addr string, ttl time.Duration, log *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		log:    log.WithField("component", "pe-cache"),
	}
}

func (r *RedisStore) Get(ctx context.Context, ticker string) (float64, bool) {
	ratio, err := r.client.Get(ctx, peKeyPrefix+ticker).Float64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.WithError(err).WithField("ticker", ticker).Debug("redis get failed")
		}
		return 0, false
	}
	return ratio, true
}

func (r *RedisStore) Set(ctx context.Context, ticker string, ratio float64) {
	if err := r.client.Set(ctx, peKeyPrefix+ticker, ratio, r.ttl).Err(); err != nil {
		r.log.WithError(err).WithField("ticker", ticker).Debug("redis set failed")
	}
}

// Ping verifies connectivity at startup
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (r *RedisStore) Close() error {
	return r.client.Close()
}
