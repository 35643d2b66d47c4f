package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	jsoniter "github.com/json-iterator/go"

	"github.com/stackable-labs/stackable-backend/config"
	"github.com/stackable-labs/stackable-backend/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Service struct {
	cfg config.RedisConfig
	rp  *redis.Pool
}

func NewService(cfg config.RedisConfig, rp *redis.Pool) *Service {
	return &Service{cfg, rp}
}

func NewPool(cfg config.RedisConfig) *redis.Pool {
	return &redis.Pool{
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			return redis.DialURLContext(ctx, cfg.URL)
		},
		MaxIdle:     8,
		IdleTimeout: 5 * time.Minute,
	}
}

func (s *Service) ClassificationKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return s.cfg.KeyPrefix + hex.EncodeToString(sum[:])
}

func (s *Service) SaveCache(ctx context.Context, key string, v interface{}) error {
	c, err := s.rp.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("get redis conn: %w", err)
	}
	defer c.Close()
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	if s.cfg.TTL > 0 {
		_, err = c.Do("SET", key, b, "PX", s.cfg.TTL.Milliseconds())
	} else {
		_, err = c.Do("SET", key, b)
	}
	return err
}

func (s *Service) LoadCache(ctx context.Context, key string) ([]byte, error) {
	c, err := s.rp.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("get redis conn: %w", err)
	}
	defer c.Close()
	return redis.Bytes(c.Do("GET", key))
}

func (s *Service) SaveClassification(ctx context.Context, prompt string, v schema.ClassificationCache) error {
	return s.SaveCache(ctx, s.ClassificationKey(prompt), v)
}

// LoadClassification returns nil on a cache miss.
func (s *Service) LoadClassification(ctx context.Context, prompt string) (*schema.ClassificationCache, error) {
	b, err := s.LoadCache(ctx, s.ClassificationKey(prompt))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, nil
		}
		return nil, err
	}
	var v schema.ClassificationCache
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("unmarshal classification: %w", err)
	}
	return &v, nil
}
