package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/publink/publink-logs/internal/db/models"
	"github.com/publink/publink-logs/internal/telemetry"
)

// DefaultOrganizationsTTL is used when no positive TTL is configured
const DefaultOrganizationsTTL = 5 * time.Minute

// OrganizationCache stores the organisation directory as one JSON value
type OrganizationCache struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewOrganizationCache creates a cache storing the list under "<prefix>:organizations"
func NewOrganizationCache(client redis.Cmdable, prefix string, ttl time.Duration) *OrganizationCache {
	if ttl <= 0 {
		ttl = DefaultOrganizationsTTL
	}
	return &OrganizationCache{
		client: client,
		key:    organizationsKey(prefix),
		ttl:    ttl,
	}
}

func organizationsKey(prefix string) string {
	if prefix == "" {
		return "organizations"
	}
	return prefix + ":organizations"
}

// GetOrganizations returns the cached list. The bool is false on a miss.
func (c *OrganizationCache) GetOrganizations(ctx context.Context) ([]models.OrganizationItem, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		telemetry.OrganizationCacheRequestsTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		telemetry.OrganizationCacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("get cached organizations: %w", err)
	}

	items, err := decodeOrganizations(data)
	if err != nil {
		telemetry.OrganizationCacheRequestsTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}
	telemetry.OrganizationCacheRequestsTotal.WithLabelValues("hit").Inc()
	return items, true, nil
}

// SetOrganizations replaces the cached list and resets its TTL
func (c *OrganizationCache) SetOrganizations(ctx context.Context, items []models.OrganizationItem) error {
	data, err := encodeOrganizations(items)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache organizations: %w", err)
	}
	return nil
}

// Invalidate drops the cached list
func (c *OrganizationCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

func encodeOrganizations(items []models.OrganizationItem) ([]byte, error) {
	if items == nil {
		items = []models.OrganizationItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode organizations: %w", err)
	}
	return data, nil
}

func decodeOrganizations(data []byte) ([]models.OrganizationItem, error) {
	var items []models.OrganizationItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cached organizations: %w", err)
	}
	if items == nil {
		items = []models.OrganizationItem{}
	}
	return items, nil
}
