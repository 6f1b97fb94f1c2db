//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/confluence-export/internal/testutil"
	"github.com/Sternrassler/confluence-export/pkg/cache"
	"github.com/Sternrassler/confluence-export/pkg/confluence"
	"github.com/Sternrassler/confluence-export/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		redisContainer.Terminate(ctx)
	})

	return redisClient
}

// TestExportWithRedisCache runs two full exports against a real Redis:
// the first populates the cache, the second only requests the terminating
// empty page from Confluence.
func TestExportWithRedisCache(t *testing.T) {
	redisClient := setupRedisContainer(t)

	mock := testutil.NewMockConfluence(testutil.GeneratePages(60))
	defer mock.Close()

	store := cache.NewPageStore(cache.NewManager(redisClient), time.Minute, "token")
	client, err := confluence.New(confluence.Config{
		BaseURL:  mock.URL(),
		SpaceKey: "DOCS",
		Auth:     "token",
		Cache:    store,
	})
	if err != nil {
		t.Fatalf("confluence.New() error = %v", err)
	}

	driver := pagination.NewDriver[confluence.Page](client, pagination.DefaultConfig())
	ctx := context.Background()

	first, err := driver.FetchAll(ctx)
	if err != nil {
		t.Fatalf("first FetchAll() error = %v", err)
	}
	if len(first) != 60 || mock.GetRequestCount() != 4 {
		t.Fatalf("first run: items = %d, requests = %d; want 60, 4", len(first), mock.GetRequestCount())
	}
	mock.Reset()

	second, err := driver.FetchAll(ctx)
	if err != nil {
		t.Fatalf("second FetchAll() error = %v", err)
	}
	if len(second) != 60 {
		t.Errorf("second run items = %d, want 60", len(second))
	}
	if starts := mock.GetStarts(); len(starts) != 1 || starts[0] != 75 {
		t.Errorf("second run requested starts %v, want [75]", starts)
	}

	keys, err := redisClient.Keys(ctx, "confluence:*").Result()
	if err != nil {
		t.Fatalf("redis keys: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("cached keys = %d, want 3 (empty page is not cached)", len(keys))
	}
}
