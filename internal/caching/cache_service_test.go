package caching

import (
	"context"
	"testing"
	"time"

	"licenseportal/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (CacheService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCacheService(client), mr
}

func TestDashboardStats_MissThenHit(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	got, err := cache.GetDashboardStats(ctx, tenantID)
	require.NoError(t, err)
	assert.Nil(t, got)

	stats := &models.DashboardStats{TenantID: tenantID, PendingApplications: 3, ActiveLicenses: 12, ExpiringSoon: 2}
	require.NoError(t, cache.SetDashboardStats(ctx, tenantID, stats, time.Minute))

	got, err = cache.GetDashboardStats(ctx, tenantID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.PendingApplications)
	assert.Equal(t, 12, got.ActiveLicenses)
}

func TestDashboardStats_Expires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	tenantID := uuid.New()

	require.NoError(t, cache.SetDashboardStats(ctx, tenantID, &models.DashboardStats{TenantID: tenantID}, time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := cache.GetDashboardStats(ctx, tenantID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInvalidateTenantCache_LeavesOtherTenants(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	require.NoError(t, cache.SetDashboardStats(ctx, tenantA, &models.DashboardStats{TenantID: tenantA}, time.Hour))
	require.NoError(t, cache.SetDashboardStats(ctx, tenantB, &models.DashboardStats{TenantID: tenantB}, time.Hour))

	require.NoError(t, cache.InvalidateTenantCache(ctx, tenantA))

	got, err := cache.GetDashboardStats(ctx, tenantA)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.GetDashboardStats(ctx, tenantB)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestPing(t *testing.T) {
	cache, mr := newTestCache(t)
	assert.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
