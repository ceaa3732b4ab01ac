package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
)

// ImageURLCacheRepository caches presigned read URLs in Redis, keyed by the
// image's blob key. The cache TTL must stay below the presign TTL so that a
// cached URL never outlives its signature.
type ImageURLCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for cached URLs
}

// NewImageURLCacheRepository creates a new repository instance with the given TTL.
func NewImageURLCacheRepository(client *redis.Client, expiration time.Duration) *ImageURLCacheRepository {
	return &ImageURLCacheRepository{
		client: client,
		exp:    expiration,
	}
}

// GetURL fetches a cached presigned URL for the blob key.
func (r *ImageURLCacheRepository) GetURL(ctx context.Context, uniqueName string) (string, error) {
	key := fmt.Sprintf("image_url:%s", uniqueName)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return "", fmt.Errorf("image url not found in cache for %s", uniqueName)
		}
		return "", err
	}

	logger.Log.Infow(
		"key", key,
		"result", "hit",
		"error", nil,
	)

	return val, nil
}

// SetURL caches a presigned URL with the configured expiration.
func (r *ImageURLCacheRepository) SetURL(ctx context.Context, uniqueName, url string) error {
	key := fmt.Sprintf("image_url:%s", uniqueName)
	err := r.client.Set(ctx, key, url, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"result", "ok",
		"error", err,
	)

	return err
}

// DeleteURL drops the cached URL for the blob key. Called when the image is
// removed so a dead URL does not linger until expiry.
func (r *ImageURLCacheRepository) DeleteURL(ctx context.Context, uniqueName string) error {
	key := fmt.Sprintf("image_url:%s", uniqueName)
	err := r.client.Del(ctx, key).Err()

	logger.Log.Infow(
		"key", key,
		"result", "deleted",
		"error", err,
	)

	return err
}
