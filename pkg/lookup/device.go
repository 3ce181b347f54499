package lookup

import (
	"context"

	"github.com/Sternrassler/glp-lookup/pkg/batch"
	"github.com/Sternrassler/glp-lookup/pkg/ratelimit"
)

// DeviceRequest is a device lookup. IDs are normalized but not deduplicated.
type DeviceRequest struct {
	IDs     []string
	By      LookupType
	Headers map[string]string
}

// StreamDevices starts a device run and returns its event stream. The channel
// is closed after the terminal event, or without one when ctx is cancelled.
func (s *Service) StreamDevices(ctx context.Context, req DeviceRequest) (<-chan Event, error) {
	ids := normalize(req.IDs)
	if len(ids) == 0 {
		return nil, ErrEmptyInput
	}
	if req.By == "" {
		req.By = LookupBySerial
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		s.runDevices(ctx, ids, req, newEmitter(ctx, out))
	}()
	return out, nil
}

// LookupDevices runs a device lookup to completion.
func (s *Service) LookupDevices(ctx context.Context, req DeviceRequest) (*DeviceResult, error) {
	events, err := s.StreamDevices(ctx, req)
	if err != nil {
		return nil, err
	}
	return drain[*DeviceResult](ctx, events)
}

func (s *Service) runDevices(ctx context.Context, ids []string, req DeviceRequest, em *emitter) {
	r := s.newRun(flowDevice, len(ids))
	size := s.config.DeviceBatchSize
	total := len(ids)
	totalBatches := batch.Count(total, size)
	pacer := ratelimit.NewPacer("device_batch", s.config.DeviceInterval)

	var (
		found   []DeviceRecord
		missing []string
	)

	for chunk := range batch.Chunks(ids, size) {
		num := chunk.Index + 1
		if !em.send(Event{
			Type:         EventProgress,
			Pct:          percent(chunk.Start, total),
			Queried:      chunk.Start,
			Total:        total,
			Found:        len(found),
			Batch:        num,
			TotalBatches: totalBatches,
		}) {
			r.cancelled(ctx)
			return
		}

		r.logger.Debug().
			Int("batch", num).
			Int("total_batches", totalBatches).
			Int("size", len(chunk.Items)).
			Msg("Processing device batch")

		items, status, _ := s.fetchDeviceBatch(ctx, pacer, chunk.Items, req.By, req.Headers)
		if ctx.Err() != nil {
			r.cancelled(ctx)
			return
		}
		unitsTotal.WithLabelValues(flowDevice, string(status.Kind)).Inc()

		var res BatchResult[DeviceRecord]
		switch status.Kind {
		case TransportAuthError:
			r.logger.Warn().Int("status", status.Code).Int("batch", num).Msg("Upstream rejected credentials, aborting run")
			em.authError(status.Code)
			r.finish(outcomeAuthError)
			return
		case TransportNetworkError:
			res = failedBatch[DeviceRecord](chunk.Items, status)
		default:
			res = reconcileDevices(chunk.Items, items, req.By)
		}
		found = append(found, res.Found...)
		missing = append(missing, res.Missing...)

		queried := chunk.Start + len(chunk.Items)
		if !em.send(Event{
			Type:         EventProgress,
			Pct:          percent(queried, total),
			Queried:      queried,
			Total:        total,
			Found:        len(found),
			Batch:        num,
			TotalBatches: totalBatches,
		}) {
			r.cancelled(ctx)
			return
		}

		r.logger.Debug().
			Int("batch", num).
			Int("found", len(res.Found)).
			Int("missing", len(res.Missing)).
			Msg("Finished device batch")
	}

	SortDevices(found)
	result := newDeviceResult(total, found, missing)

	em.send(Event{
		Type:         EventProgress,
		Pct:          100,
		Queried:      total,
		Total:        total,
		Found:        result.Found,
		Batch:        totalBatches,
		TotalBatches: totalBatches,
	})
	if !em.done(result) {
		r.cancelled(ctx)
		return
	}

	identifiersTotal.WithLabelValues(flowDevice, "found").Add(float64(result.Found))
	identifiersTotal.WithLabelValues(flowDevice, "missing").Add(float64(result.MissingCount))
	r.logger.Info().
		Int("total", result.Total).
		Int("found", result.Found).
		Int("missing", result.MissingCount).
		Msg("Lookup run finished")
	r.finish(outcomeDone)
}

// newDeviceResult computes counts against the original identifier count.
func newDeviceResult(total int, found []DeviceRecord, missing []string) *DeviceResult {
	if found == nil {
		found = []DeviceRecord{}
	}
	if missing == nil {
		missing = []string{}
	}
	return &DeviceResult{
		Total:        total,
		Found:        len(found),
		MissingCount: len(missing),
		FoundPct:     percent1(len(found), total),
		MissingPct:   percent1(len(missing), total),
		Devices:      found,
		Missing:      missing,
	}
}

// cancelled records a run cut short by its consumer.
func (r *run) cancelled(ctx context.Context) {
	r.logger.Info().Err(context.Cause(ctx)).Msg("Lookup run cancelled")
	r.finish(outcomeCancelled)
}
