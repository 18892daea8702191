package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"frigo/internal/config"
	"frigo/internal/domain"
	"frigo/internal/port"
)

const keyPrefix = "frigo:extraction:"

// RedisCache memoizes structuring results in Redis keyed by source
// fingerprint, so re-importing the same URL or photo skips the LLM call.
// When disabled it is a silent no-op. Implements port.ExtractionCache.
type RedisCache struct {
	client *redis.Client
	cfg    *config.CacheConfig
}

var _ port.ExtractionCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis when caching is enabled. A disabled config
// yields a working no-op cache, not an error.
func NewRedisCache(cfg *config.CacheConfig) (*RedisCache, error) {
	if !cfg.Enabled {
		return &RedisCache{cfg: cfg}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return &RedisCache{client: client, cfg: cfg}, nil
}

// Get returns a cached extraction for the fingerprint. Cache errors are
// logged and treated as misses; the pipeline never fails on the cache.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*domain.ExtractedRecipeData, bool) {
	if !c.cfg.Enabled || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, keyPrefix+fingerprint).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache.RedisCache: get %s: %v", fingerprint, err)
		}
		return nil, false
	}

	var out domain.ExtractedRecipeData
	if err := json.Unmarshal(data, &out); err != nil {
		log.Printf("cache.RedisCache: corrupt entry %s: %v", fingerprint, err)
		return nil, false
	}
	return &out, true
}

// Set stores an extraction under the fingerprint with the configured TTL.
func (c *RedisCache) Set(ctx context.Context, fingerprint string, data *domain.ExtractedRecipeData) {
	if !c.cfg.Enabled || c.client == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("cache.RedisCache: marshal %s: %v", fingerprint, err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+fingerprint, payload, c.cfg.TTL).Err(); err != nil {
		log.Printf("cache.RedisCache: set %s: %v", fingerprint, err)
	}
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Fingerprint derives the cache key for an import source. URL imports hash
// the URL string; photo imports hash the stored object coordinates, which are
// unique per upload.
func Fingerprint(job *domain.ImportJob) string {
	h := sha256.New()
	h.Write([]byte(string(job.SourceType)))
	h.Write([]byte{0})
	if job.SourceType == domain.SourceTypePhoto {
		h.Write([]byte(job.PhotoBucket + "/" + job.PhotoKey))
	} else {
		h.Write([]byte(job.SourceURL))
	}
	return hex.EncodeToString(h.Sum(nil))
}
