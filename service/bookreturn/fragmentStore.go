package bookreturnsvc

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
)

const fragmentKeyPrefix = "scan:prev_ocr:"

// redisFragmentStore persists the per-scanner previous-fragment set in
// redis, keyed by scanner id.
type redisFragmentStore struct {
	rdb *redis.Client
}

func NewRedisFragmentStore(rdb *redis.Client) FragmentStore {
	return &redisFragmentStore{rdb: rdb}
}

func (s *redisFragmentStore) Previous(ctx context.Context, scannerID string) ([]string, error) {
	raw, err := s.rdb.Get(ctx, fragmentKeyPrefix+scannerID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *redisFragmentStore) Save(ctx context.Context, scannerID string, fragments []string) error {
	raw, err := json.Marshal(fragments)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, fragmentKeyPrefix+scannerID, raw, 0).Err()
}
