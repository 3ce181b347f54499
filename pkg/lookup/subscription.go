package lookup

import (
	"context"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/ratelimit"
	"golang.org/x/sync/errgroup"
)

// SubscriptionRequest is a subscription lookup. Keys are normalized and
// deduplicated ignoring case before any upstream call.
type SubscriptionRequest struct {
	Keys    []string
	Headers map[string]string
}

// keyOutcome is what a worker hands back for one key. Workers never touch
// run state.
type keyOutcome struct {
	key    string
	result BatchResult[SubscriptionRecord]
}

// StreamSubscriptions starts a subscription run and returns its event stream.
func (s *Service) StreamSubscriptions(ctx context.Context, req SubscriptionRequest) (<-chan Event, error) {
	keys := DedupeKeys(normalize(req.Keys))
	if len(keys) == 0 {
		return nil, ErrEmptyInput
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		s.runSubscriptions(ctx, keys, req.Headers, newEmitter(ctx, out))
	}()
	return out, nil
}

// LookupSubscriptions runs a subscription lookup to completion.
func (s *Service) LookupSubscriptions(ctx context.Context, req SubscriptionRequest) (*SubscriptionResult, error) {
	events, err := s.StreamSubscriptions(ctx, req)
	if err != nil {
		return nil, err
	}
	return drain[*SubscriptionResult](ctx, events)
}

func (s *Service) runSubscriptions(ctx context.Context, keys []string, headers map[string]string, em *emitter) {
	r := s.newRun(flowSubscription, len(keys))
	today := s.now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := s.dispatchKeys(runCtx, keys, headers, today)

	var (
		found     []SubscriptionRecord
		missing   []string
		completed int
	)
	total := len(keys)

	for o := range outcomes {
		if ctx.Err() != nil {
			r.cancelled(ctx)
			return
		}
		unitsTotal.WithLabelValues(flowSubscription, string(o.result.Status.Kind)).Inc()

		if o.result.Status.Kind == TransportAuthError {
			r.logger.Warn().Int("status", o.result.Status.Code).Str("key", o.key).Msg("Upstream rejected credentials, aborting run")
			cancel()
			em.authError(o.result.Status.Code)
			r.finish(outcomeAuthError)
			return
		}

		found = append(found, o.result.Found...)
		missing = append(missing, o.result.Missing...)
		completed++

		if !em.send(Event{
			Type:    EventProgress,
			Pct:     percent(completed, total),
			Queried: completed,
			Total:   total,
		}) {
			r.cancelled(ctx)
			return
		}
	}
	if ctx.Err() != nil {
		r.cancelled(ctx)
		return
	}

	result := newSubscriptionResult(found, missing)

	em.send(Event{Type: EventProgress, Pct: 100, Queried: total, Total: total})
	if !em.done(result) {
		r.cancelled(ctx)
		return
	}

	identifiersTotal.WithLabelValues(flowSubscription, "found").Add(float64(result.Found))
	identifiersTotal.WithLabelValues(flowSubscription, "missing").Add(float64(result.MissingCount))
	r.logger.Info().
		Int("total", result.Total).
		Int("valid", result.Valid).
		Int("expired", result.Expired).
		Int("missing", result.MissingCount).
		Msg("Lookup run finished")
	r.finish(outcomeDone)
}

// dispatchKeys fetches keys on a pool of s.config.Concurrency workers. The
// returned channel is closed once every started worker has finished. After
// ctx is cancelled no new key is started and pending sends are dropped.
// A single worker runs keys in input order, PageInterval apart.
func (s *Service) dispatchKeys(ctx context.Context, keys []string, headers map[string]string, today time.Time) <-chan keyOutcome {
	outcomes := make(chan keyOutcome)

	var keyPacer *ratelimit.Pacer
	if s.config.Concurrency == 1 {
		keyPacer = ratelimit.NewPacer("subscription_key", s.config.PageInterval)
	}

	go func() {
		defer close(outcomes)

		var g errgroup.Group
		g.SetLimit(s.config.Concurrency)

		for _, key := range keys {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := keyPacer.Wait(ctx); err != nil {
					return nil
				}
				o := s.fetchKeyOutcome(ctx, key, headers, today)
				select {
				case outcomes <- o:
				case <-ctx.Done():
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	return outcomes
}

func (s *Service) fetchKeyOutcome(ctx context.Context, key string, headers map[string]string, today time.Time) keyOutcome {
	items, status, _ := s.fetchKey(ctx, key, headers)
	switch status.Kind {
	case TransportAuthError:
		return keyOutcome{key: key, result: BatchResult[SubscriptionRecord]{Status: status}}
	case TransportNetworkError:
		return keyOutcome{key: key, result: failedBatch[SubscriptionRecord]([]string{key}, status)}
	}
	return keyOutcome{key: key, result: reconcileKey(key, items, today)}
}

// newSubscriptionResult deduplicates, sorts and counts. Counts are taken after
// deduplication.
func newSubscriptionResult(found []SubscriptionRecord, missing []string) *SubscriptionResult {
	records := dedupeSubscriptions(found)
	SortSubscriptions(records)
	missing = dedupeFirstSeen(missing)

	var valid, expired int
	for _, rec := range records {
		if rec.Status == StatusValid {
			valid++
		} else {
			expired++
		}
	}
	total := valid + expired + len(missing)

	return &SubscriptionResult{
		Total:         total,
		Found:         valid + expired,
		Valid:         valid,
		Expired:       expired,
		MissingCount:  len(missing),
		FoundPct:      percent1(valid+expired, total),
		ValidPct:      percent1(valid, total),
		ExpiredPct:    percent1(expired, total),
		MissingPct:    percent1(len(missing), total),
		Subscriptions: records,
		Missing:       missing,
	}
}
