//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/glp-lookup/internal/testutil"
	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/lookup"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newService wires a client against the mock upstream. A nil redis client
// disables caching.
func newService(t *testing.T, upstream *testutil.MockUpstream, redisClient *redis.Client, mutate func(*client.Config)) *lookup.Service {
	t.Helper()

	cfg := client.DefaultConfig("glp-lookup-integration/1.0")
	cfg.BaseURL = upstream.URL()
	if redisClient != nil {
		cfg.Redis = redisClient
		cfg.CacheTTL = time.Minute
	}
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	return lookup.NewService(c, c, lookup.Config{PageInterval: time.Millisecond},
		lookup.WithLogger(zerolog.Nop()),
		lookup.WithClock(func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }),
	)
}

func TestDeviceLookup_CacheHit(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	upstream := testutil.NewMockUpstream()
	defer upstream.Close()
	upstream.AddDevices(
		testutil.Device("SN1", "AA:01", "ws-1", "Default"),
		testutil.Device("SN2", "AA:02", "ws-1", "Default"),
	)

	svc := newService(t, upstream, redisClient, nil)
	ctx := context.Background()
	req := lookup.DeviceRequest{
		IDs:     []string{"SN1", "SN2", "SN3"},
		Headers: map[string]string{"Authorization": "Bearer one"},
	}

	first, err := svc.LookupDevices(ctx, req)
	if err != nil {
		t.Fatalf("First lookup failed: %v", err)
	}
	if upstream.GetRequestCount() != 1 {
		t.Fatalf("Expected 1 upstream request, got %d", upstream.GetRequestCount())
	}

	second, err := svc.LookupDevices(ctx, req)
	if err != nil {
		t.Fatalf("Second lookup failed: %v", err)
	}
	if upstream.GetRequestCount() != 1 {
		t.Errorf("Second lookup should be served from cache, upstream saw %d requests", upstream.GetRequestCount())
	}
	if first.Found != 2 || second.Found != first.Found || second.MissingCount != first.MissingCount {
		t.Errorf("Cached result differs: first %+v, second %+v", first, second)
	}

	// Other credentials never share cached pages.
	req.Headers = map[string]string{"Authorization": "Bearer two"}
	if _, err := svc.LookupDevices(ctx, req); err != nil {
		t.Fatalf("Third lookup failed: %v", err)
	}
	if upstream.GetRequestCount() != 2 {
		t.Errorf("Expected a fresh upstream request for new credentials, got %d total", upstream.GetRequestCount())
	}
}

func TestSubscriptionLookup_PaginatedCache(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	upstream := testutil.NewMockUpstream()
	defer upstream.Close()

	end := time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range 65 {
		upstream.AddSubscriptions("PAT", testutil.Subscription(fmt.Sprintf("PAT-%02d", i), "Q-1", "ws-1", end))
	}

	svc := newService(t, upstream, redisClient, nil)
	ctx := context.Background()
	req := lookup.SubscriptionRequest{Keys: []string{"PAT", "NOPE"}}

	result, err := svc.LookupSubscriptions(ctx, req)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if result.Valid != 65 || result.MissingCount != 1 || result.Total != 66 {
		t.Errorf("valid/missing/total = %d/%d/%d, want 65/1/66", result.Valid, result.MissingCount, result.Total)
	}
	// 3 pages for PAT, one empty page for NOPE
	if upstream.GetRequestCount() != 4 {
		t.Errorf("Expected 4 upstream requests, got %d", upstream.GetRequestCount())
	}

	upstream.Reset()
	if _, err := svc.LookupSubscriptions(ctx, req); err != nil {
		t.Fatalf("Cached lookup failed: %v", err)
	}
	if upstream.GetRequestCount() != 0 {
		t.Errorf("Expected every page from cache, upstream saw %d requests", upstream.GetRequestCount())
	}
}

func TestAuthErrorsNotCached(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	upstream := testutil.NewMockUpstream()
	defer upstream.Close()
	upstream.AddDevices(testutil.Device("SN1", "AA:01", "ws-1", "Default"))
	upstream.SetResponse(client.EndpointDevices, testutil.NewAuthErrorResponse(http.StatusForbidden))

	svc := newService(t, upstream, redisClient, nil)
	ctx := context.Background()
	req := lookup.DeviceRequest{IDs: []string{"SN1"}}

	_, err := svc.LookupDevices(ctx, req)
	authErr, ok := lookup.IsAuthError(err)
	if !ok || authErr.Status != http.StatusForbidden {
		t.Fatalf("Expected auth error 403, got %v", err)
	}

	// Restore default behavior: credentials fixed upstream.
	upstream.SetHandler(client.EndpointDevices, nil)
	result, err := svc.LookupDevices(ctx, req)
	if err != nil {
		t.Fatalf("Lookup after recovery failed: %v", err)
	}
	if result.Found != 1 {
		t.Errorf("Expected fresh result after auth failure, found %d", result.Found)
	}
}

func TestRetry5xxErrors(t *testing.T) {
	upstream := testutil.NewMockUpstream()
	defer upstream.Close()

	var calls atomic.Int32
	upstream.SetHandler(client.EndpointDevices, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"devices": [{"serial_number": "SN1", "mac_address": "AA:01", "platform_customer_id": "ws-1", "folder": {"folder_name": "Default"}}]}`))
	})

	svc := newService(t, upstream, nil, func(cfg *client.Config) {
		cfg.Retry = client.RetryConfig{
			MaxAttempts:       3,
			InitialBackoff:    10 * time.Millisecond,
			MaxBackoff:        50 * time.Millisecond,
			BackoffMultiplier: 2,
		}
	})

	result, err := svc.LookupDevices(context.Background(), lookup.DeviceRequest{IDs: []string{"SN1"}})
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls.Load())
	}
	if result.Found != 1 {
		t.Errorf("Expected SN1 found after retries, got %+v", result)
	}
}

func TestNoRetryByDefault(t *testing.T) {
	upstream := testutil.NewMockUpstream()
	defer upstream.Close()
	upstream.SetResponse(client.EndpointDevices, testutil.NewServerErrorResponse())

	svc := newService(t, upstream, nil, nil)

	result, err := svc.LookupDevices(context.Background(), lookup.DeviceRequest{IDs: []string{"SN1", "SN2"}})
	if err != nil {
		t.Fatalf("Server errors must not abort the run: %v", err)
	}
	if upstream.GetRequestCount() != 1 {
		t.Errorf("Expected a single attempt, got %d", upstream.GetRequestCount())
	}
	if result.MissingCount != 2 {
		t.Errorf("Failed batch should be missing, got %+v", result)
	}
}
