// Package client provides the HTTP client for the GreenLake support-assistant
// inventory API with header pass-through, error classification, optional
// retries and an optional response cache.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the production support-assistant API root.
const DefaultBaseURL = "https://aquila-user-api.common.cloud.hpe.com/support-assistant/v1alpha1"

// Upstream endpoints relative to the base URL.
const (
	EndpointDevices       = "/activate-devices"
	EndpointSubscriptions = "/subscriptions"
)

// Prometheus metrics for upstream client operations.
var (
	upstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glp_upstream_requests_total",
		Help: "Total upstream requests by endpoint and status",
	}, []string{"endpoint", "status"})

	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "glp_upstream_request_duration_seconds",
		Help:    "Upstream request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	upstreamErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "glp_upstream_errors_total",
		Help: "Total upstream errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, without trailing slash.
	BaseURL string

	// UserAgent is sent unless the caller passes its own User-Agent header.
	UserAgent string

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration

	// Retry controls re-attempts of server and network failures.
	Retry RetryConfig

	// Redis enables the response cache when non-nil and CacheTTL > 0.
	Redis *redis.Client

	// CacheTTL is how long successful upstream pages are cached.
	CacheTTL time.Duration
}

// DefaultConfig returns a safe default configuration without caching.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// Client is the upstream inventory API client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// New creates a new upstream client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    base,
		config:     cfg,
		logger:     log.With().Str("component", "upstream-client").Logger(),
	}

	if cfg.Redis != nil && cfg.CacheTTL > 0 {
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// FetchDevices queries one batch of devices. The result limit equals the batch
// size; the upstream returns the whole batch in a single page.
func (c *Client) FetchDevices(ctx context.Context, q DeviceQuery, headers map[string]string) ([]Device, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(len(q.IDs)))
	query.Set("page", "0")
	query.Set(q.By.queryParam(), strings.Join(q.IDs, ","))

	var out devicesResponse
	if err := c.getJSON(ctx, EndpointDevices, query, headers, &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// FetchSubscriptions queries one page of subscriptions matching key.
func (c *Client) FetchSubscriptions(ctx context.Context, key string, offset, limit int, headers map[string]string) ([]Subscription, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("subscription_key_pattern", key)

	var out subscriptionsResponse
	if err := c.getJSON(ctx, EndpointSubscriptions, query, headers, &out); err != nil {
		return nil, err
	}
	return out.Subscriptions, nil
}

// getJSON performs a GET and decodes a JSON body. Any status >= 400 becomes an
// *UpstreamError.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + endpoint
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Message:    strings.TrimSpace(resp.Status + " " + string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "decode response",
			Err:        err,
		}
	}
	return nil
}

// Do performs an HTTP request with caching, retries and error classification.
// Non-retriable error statuses are returned as a normal response so the
// caller can inspect them.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := path.Base(req.URL.Path)

	startTime := time.Now()
	defer func() {
		upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	var cacheKey cache.CacheKey
	useCache := c.cache != nil && req.Method == http.MethodGet
	if useCache {
		cacheKey = cache.CacheKey{
			Endpoint:    req.URL.Path,
			QueryParams: req.URL.Query(),
			Principal:   cache.Fingerprint(flattenHeader(req.Header)),
		}

		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("endpoint", endpoint).Msg("Serving upstream response from cache")
			upstreamRequestsTotal.WithLabelValues(endpoint, "cache_hit").Inc()
			return cache.EntryToResponse(entry, req), nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Cache get error")
		}
	}

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing upstream request")

	var resp *http.Response
	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() (ErrorClass, error) {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Warn().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			upstreamErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			upstreamRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return ErrorClassNetwork, &UpstreamError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        reqErr,
			}
		}

		upstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

		class := classifyStatus(resp.StatusCode)
		if class == "" {
			return "", nil
		}

		upstreamErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Upstream request error")

		if shouldRetry(class) && c.config.Retry.MaxAttempts > 1 {
			resp.Body.Close()
			return class, &UpstreamError{
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Message:    resp.Status,
			}
		}

		// Final status: let the caller inspect it.
		return "", nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if useCache && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp, c.config.CacheTTL)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		}
	}

	return resp, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// CacheEnabled reports whether responses are cached.
func (c *Client) CacheEnabled() bool {
	return c.cache != nil
}

func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		out[name] = strings.Join(values, ",")
	}
	return out
}
