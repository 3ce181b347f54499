// Command glp-lookup serves the device and subscription lookup API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/glp-lookup/internal/api"
	"github.com/Sternrassler/glp-lookup/internal/config"
	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/logging"
	"github.com/Sternrassler/glp-lookup/pkg/lookup"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.Setup(cfg.Logging())

	handler, cleanup, err := newHandler(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize")
		os.Exit(1)
	}
	defer cleanup()

	httpServer := newHTTPServer(ctx, cfg.HTTPAddr, handler)

	logger.Info().
		Str("addr", httpServer.Addr).
		Str("upstream", cfg.UpstreamBaseURL).
		Bool("cache", cfg.CacheEnabled()).
		Msg("Server starting")
	if err := api.RunServer(ctx, httpServer, cfg.ShutdownTimeout, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
	logger.Info().Msg("Server stopped")
}

// newHTTPServer roots every request context in ctx so open streams stop
// when the process is signalled, before Shutdown waits on them.
func newHTTPServer(ctx context.Context, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// newHandler wires the upstream client, optional cache, pipeline and API.
func newHandler(ctx context.Context, cfg config.Config) (http.Handler, func(), error) {
	clientCfg := cfg.Client()

	redisClient, err := connectRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	clientCfg.Redis = redisClient

	upstream, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, nil, fmt.Errorf("create upstream client: %w", err)
	}

	cleanup := func() {
		upstream.Close()
		if redisClient != nil {
			redisClient.Close()
		}
	}

	svc := lookup.NewService(upstream, upstream, cfg.Lookup())
	return api.New(svc, logging.NewLogger("api"), cfg.StaticDir).Handler(), cleanup, nil
}

// connectRedis returns nil when caching is disabled.
func connectRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	log.Info().Str("addr", opts.Addr).Dur("ttl", cfg.CacheTTL).Msg("Response cache enabled")
	return redisClient, nil
}
