// Package lookup runs batched device and subscription lookups against the
// inventory API, reconciles what came back against what was asked for and
// reports progress as a stream of events.
//
// A device run walks fixed-size batches strictly in order, pacing upstream
// calls. A subscription run pages each key independently on a bounded worker
// pool and folds the per-key outcomes on a single consumer. Either run ends in
// exactly one terminal event: done with the aggregate result, or auth_error
// when the upstream rejects the caller's credentials.
//
// Example usage:
//
//	svc := lookup.NewService(c, c, lookup.DefaultConfig())
//	events, err := svc.StreamDevices(ctx, lookup.DeviceRequest{
//		IDs:     lookup.ParseIdentifiers(blob),
//		By:      lookup.LookupBySerial,
//		Headers: headers,
//	})
//	for ev := range events {
//		// progress, then done or auth_error
//	}
package lookup
