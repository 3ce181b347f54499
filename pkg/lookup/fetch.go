package lookup

import (
	"context"

	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/pagination"
	"github.com/Sternrassler/glp-lookup/pkg/ratelimit"
)

// DeviceSource queries one device batch. *client.Client implements it.
type DeviceSource interface {
	FetchDevices(ctx context.Context, q client.DeviceQuery, headers map[string]string) ([]client.Device, error)
}

// SubscriptionSource queries one page of subscriptions for a key.
// *client.Client implements it.
type SubscriptionSource interface {
	FetchSubscriptions(ctx context.Context, key string, offset, limit int, headers map[string]string) ([]client.Subscription, error)
}

// classifyFetch maps a fetch error to a transport status. Only 401 and 403
// are auth errors; everything else demotes the unit to missing.
func classifyFetch(err error) TransportStatus {
	if err == nil {
		return TransportStatus{Kind: TransportOK}
	}
	if status, ok := client.AuthStatus(err); ok {
		return TransportStatus{Kind: TransportAuthError, Code: status}
	}
	return TransportStatus{Kind: TransportNetworkError}
}

// fetchDeviceBatch issues the single upstream query for a batch once the
// run's pacer allows it.
func (s *Service) fetchDeviceBatch(ctx context.Context, pacer *ratelimit.Pacer, ids []string, by LookupType, headers map[string]string) ([]client.Device, TransportStatus, error) {
	if err := pacer.Wait(ctx); err != nil {
		return nil, TransportStatus{Kind: TransportNetworkError}, err
	}

	devices, err := s.devices.FetchDevices(ctx, client.DeviceQuery{IDs: ids, By: by}, headers)
	status := classifyFetch(err)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int("batch_size", len(ids)).
			Str("status", string(status.Kind)).
			Msg("Device batch fetch failed")
		return nil, status, err
	}
	return devices, status, nil
}

// fetchKey pages through all subscriptions matching key.
func (s *Service) fetchKey(ctx context.Context, key string, headers map[string]string) ([]client.Subscription, TransportStatus, error) {
	pager := pagination.NewOffsetPager(func(ctx context.Context, offset, limit int) ([]client.Subscription, error) {
		return s.subscriptions.FetchSubscriptions(ctx, key, offset, limit, headers)
	}, pagination.Config{
		PageSize:     s.config.PageSize,
		PageInterval: s.config.PageInterval,
		MaxPages:     s.config.MaxPages,
	})

	subs, err := pager.FetchAll(ctx)
	status := classifyFetch(err)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("key", key).
			Str("status", string(status.Kind)).
			Msg("Subscription key fetch failed")
		return nil, status, err
	}
	return subs, status, nil
}
