package caching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"licenseportal/internal/models"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "licenseportal"

type CacheService interface {
	// Dashboard caching. A miss returns (nil, nil).
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error)
	SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error

	// InvalidateTenantCache drops every cached value belonging to the tenant
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client redis.UniversalClient
}

func NewRedisCacheService(client redis.UniversalClient) CacheService {
	return &redisCacheService{client: client}
}

// NewRedisClient accepts either host:port or a redis:// URL
func NewRedisClient(addr, password string, db int) *redis.Client {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if opts, err := redis.ParseURL(addr); err == nil {
			if password != "" {
				opts.Password = password
			}
			return redis.NewClient(opts)
		}
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func tenantKey(tenantID uuid.UUID, kind string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID.String(), kind)
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (*models.DashboardStats, error) {
	data, err := r.client.Get(ctx, tenantKey(tenantID, "dashboard")).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var stats models.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats *models.DashboardStats, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, tenantKey(tenantID, "dashboard"), data, ttl).Err()
}

func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, tenantID.String())
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
