package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

const (
	generationKey          = "availability:generation"
	DefaultAvailabilityTTL = 30 * time.Second
)

// AvailabilityCache は期間ごとの空き状況をキャッシュする
// 予約の書き込みごとに世代番号を進め、古い世代のキーは読まない
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// Get は期間の空き状況をキャッシュから取得する
func (c *AvailabilityCache) Get(ctx context.Context, startDate, endDate time.Time) (bool, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return false, err
	}
	val, err := c.client.Get(ctx, c.key(gen, startDate, endDate)).Bool()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, ErrCacheMiss
		}
		return false, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// Set は期間の空き状況をキャッシュに保存する
func (c *AvailabilityCache) Set(ctx context.Context, startDate, endDate time.Time, available bool) error {
	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(gen, startDate, endDate), available, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は世代番号を進めて全期間のキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("キャッシュ世代の取得に失敗: %w", err)
	}
	return gen, nil
}

func (c *AvailabilityCache) key(gen int64, startDate, endDate time.Time) string {
	return fmt.Sprintf("availability:%d:%d:%d", gen, startDate.UnixNano(), endDate.UnixNano())
}
