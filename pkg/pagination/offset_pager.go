package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/ratelimit"
	"github.com/rs/zerolog/log"
)

// DefaultPageSize is the subscription endpoint page size.
const DefaultPageSize = 30

// Config holds offset pager configuration
type Config struct {
	// PageSize is the limit sent with every request
	PageSize int
	// PageInterval is the minimum delay between two page requests
	PageInterval time.Duration
	// MaxPages bounds a single walk (0 = unbounded)
	MaxPages int
}

// DefaultConfig returns the upstream's page size and inter-page delay
func DefaultConfig() Config {
	return Config{
		PageSize:     DefaultPageSize,
		PageInterval: ratelimit.DefaultPageInterval,
	}
}

// PageFunc fetches one page starting at offset.
type PageFunc[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// OffsetPager concatenates all pages returned by a PageFunc.
type OffsetPager[T any] struct {
	fetch  PageFunc[T]
	config Config
}

// NewOffsetPager creates a new offset pager
func NewOffsetPager[T any](fetch PageFunc[T], config Config) *OffsetPager[T] {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.PageInterval < 0 {
		config.PageInterval = 0
	}

	return &OffsetPager[T]{
		fetch:  fetch,
		config: config,
	}
}

// FetchAll walks pages until a short page. Any page error discards the pages
// already read and is returned as is, so callers can classify it.
func (p *OffsetPager[T]) FetchAll(ctx context.Context) ([]T, error) {
	pacer := ratelimit.NewPacer("subscription_page", p.config.PageInterval)

	var all []T
	offset := 0
	for page := 0; p.config.MaxPages == 0 || page < p.config.MaxPages; page++ {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}

		items, err := p.fetch(ctx, offset, p.config.PageSize)
		if err != nil {
			log.Debug().
				Err(err).
				Int("offset", offset).
				Int("pages_read", page).
				Msg("Page fetch failed")
			return nil, err
		}

		all = append(all, items...)
		if len(items) < p.config.PageSize {
			return all, nil
		}
		offset += p.config.PageSize
	}

	return all, fmt.Errorf("%w: stopped after %d pages", ErrTooManyPages, p.config.MaxPages)
}
