package rankingsvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kunzatt/bookiki-sub000/model"
)

const rankingKey = "ranking:top10"

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *slog.Logger) Cache {
	return &redisCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *redisCache) Get(ctx context.Context) ([]model.BookRanking, bool) {
	raw, err := c.rdb.Get(ctx, rankingKey).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Error("ranking cache read failed", "err", err)
		}
		return nil, false
	}
	var rows []model.BookRanking
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		c.log.Error("ranking cache decode failed", "err", err)
		return nil, false
	}
	return rows, true
}

func (c *redisCache) Set(ctx context.Context, rows []model.BookRanking) {
	raw, err := json.Marshal(rows)
	if err != nil {
		c.log.Error("ranking cache encode failed", "err", err)
		return
	}
	if err := c.rdb.Set(ctx, rankingKey, raw, c.ttl).Err(); err != nil {
		c.log.Error("ranking cache write failed", "err", err)
	}
}
