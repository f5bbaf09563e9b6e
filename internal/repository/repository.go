package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"storefront-service/internal/catalog"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrVersionConflict    = errors.New("version conflict - record was modified by another request")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPromotionExhausted = errors.New("promotion usage limit reached")
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute
	ProductListCacheTTL = 2 * time.Minute
	ContentCacheTTL     = 5 * time.Minute
	SettingsCacheTTL    = 10 * time.Minute
)

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(prefix string, params ...string) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// jsonCache is a thin JSON layer over redis. A nil client or any redis error
// behaves as a cache miss.
type jsonCache struct {
	redis *redis.Client
}

func (c jsonCache) get(ctx context.Context, key string, dest interface{}) bool {
	if c.redis == nil {
		return false
	}
	val, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

func (c jsonCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.redis.Set(ctx, key, data, ttl)
}

func (c jsonCache) delete(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	c.redis.Del(ctx, keys...)
}

// deletePattern removes every key matching pattern using SCAN
func (c jsonCache) deletePattern(ctx context.Context, pattern string) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == 100 {
			c.redis.Del(ctx, keys...)
			keys = keys[:0]
		}
	}
	if len(keys) > 0 {
		c.redis.Del(ctx, keys...)
	}
}

// containsPattern is a lower-cased LIKE pattern matching term anywhere, with
// the term's own % and _ matched literally
func containsPattern(term string) string {
	return "%" + catalog.EscapeLike(strings.ToLower(term)) + "%"
}

// normalizePage applies defaults to admin list paging
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
