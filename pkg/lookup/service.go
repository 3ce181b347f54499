package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/batch"
	"github.com/Sternrassler/glp-lookup/pkg/logging"
	"github.com/Sternrassler/glp-lookup/pkg/pagination"
	"github.com/Sternrassler/glp-lookup/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultConcurrency is the number of subscription keys fetched in parallel.
const DefaultConcurrency = 8

// Config holds pipeline tuning.
type Config struct {
	// DeviceBatchSize is the number of identifiers per device query.
	DeviceBatchSize int

	// DeviceInterval is the minimum delay between device queries of one run.
	DeviceInterval time.Duration

	// PageSize is the subscription page limit.
	PageSize int

	// PageInterval is the minimum delay between pages of one key.
	PageInterval time.Duration

	// MaxPages bounds pagination per key (0 = unbounded).
	MaxPages int

	// Concurrency is the subscription worker pool size; 1 runs keys in
	// order with PageInterval between them.
	Concurrency int
}

// DefaultConfig returns the upstream's batch and page sizes with the
// intervals it tolerates.
func DefaultConfig() Config {
	return Config{
		DeviceBatchSize: batch.DefaultSize,
		DeviceInterval:  ratelimit.DefaultDeviceInterval,
		PageSize:        pagination.DefaultPageSize,
		PageInterval:    ratelimit.DefaultPageInterval,
		Concurrency:     DefaultConcurrency,
	}
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used to decide subscription validity.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger replaces the component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Service runs device and subscription lookups.
type Service struct {
	devices       DeviceSource
	subscriptions SubscriptionSource
	config        Config
	now           func() time.Time
	logger        zerolog.Logger
}

// NewService creates a lookup service. Zero config values fall back to
// DefaultConfig; intervals are used as given so tests can disable pacing.
func NewService(devices DeviceSource, subscriptions SubscriptionSource, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.DeviceBatchSize <= 0 {
		cfg.DeviceBatchSize = def.DeviceBatchSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	s := &Service{
		devices:       devices,
		subscriptions: subscriptions,
		config:        cfg,
		now:           time.Now,
		logger:        logging.NewLogger("lookup"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run carries the per-run logger and bookkeeping.
type run struct {
	id      string
	flow    string
	started time.Time
	logger  zerolog.Logger
}

func (s *Service) newRun(flow string, total int) *run {
	id := uuid.NewString()
	r := &run{
		id:      id,
		flow:    flow,
		started: time.Now(),
		logger:  logging.RunLogger(s.logger, id, flow),
	}
	r.logger.Info().Int("total", total).Msg("Lookup run started")
	return r
}

// finish records the run outcome.
func (r *run) finish(outcome string) {
	runsTotal.WithLabelValues(r.flow, outcome).Inc()
	runDuration.WithLabelValues(r.flow).Observe(time.Since(r.started).Seconds())
}

// drain consumes a stream and returns its result, an *AuthError, or the
// context error when the stream was cut short.
func drain[R any](ctx context.Context, events <-chan Event) (R, error) {
	var (
		zero    R
		result  R
		gotDone bool
		authErr *AuthError
	)
	for ev := range events {
		switch ev.Type {
		case EventAuthError:
			authErr = &AuthError{Status: ev.Status, Message: ev.Message}
		case EventDone:
			if data, ok := ev.Data.(R); ok {
				result, gotDone = data, true
			}
		}
	}

	switch {
	case authErr != nil:
		return zero, authErr
	case gotDone:
		return result, nil
	case ctx.Err() != nil:
		return zero, ctx.Err()
	default:
		return zero, errStreamIncomplete
	}
}

// IsAuthError reports whether err aborted a run on upstream authentication.
func IsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
