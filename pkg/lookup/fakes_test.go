package lookup

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/rs/zerolog"
)

var errUnavailable = errors.New("connection reset")

func authErr(status int) error {
	return &client.UpstreamError{StatusCode: status, ErrorClass: client.ErrorClassAuth, Message: http.StatusText(status)}
}

// fakeDevices answers batches from a fixed inventory keyed by upper-cased
// serial or MAC. failures maps a 1-based call number to the error returned.
type fakeDevices struct {
	mu        sync.Mutex
	inventory []client.Device
	failures  map[int]error
	calls     [][]string
	headers   []map[string]string
}

func (f *fakeDevices) FetchDevices(ctx context.Context, q client.DeviceQuery, headers map[string]string) ([]client.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]string(nil), q.IDs...))
	f.headers = append(f.headers, headers)
	if err, ok := f.failures[len(f.calls)]; ok {
		return nil, err
	}

	want := make(map[string]bool, len(q.IDs))
	for _, id := range q.IDs {
		want[strings.ToUpper(id)] = true
	}
	var out []client.Device
	for _, d := range f.inventory {
		tracked := d.SerialNumber
		if q.By == client.LookupByMAC {
			tracked = d.MACAddress
		}
		if want[strings.ToUpper(tracked)] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDevices) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func device(serial, platform, folder string) client.Device {
	return client.Device{
		SerialNumber:       serial,
		MACAddress:         "mac-" + strings.ToLower(serial),
		DeviceType:         "AP",
		DeviceModel:        "AP-515",
		PartNumber:         "Q9H62A",
		PlatformCustomerID: platform,
		Folder:             client.Folder{FolderName: folder},
	}
}

// fakeSubscriptions serves pages per key and tracks concurrency.
type fakeSubscriptions struct {
	mu       sync.Mutex
	byKey    map[string][]client.Subscription
	errByKey map[string]error
	delay    time.Duration
	calls    map[string]int
	order    []string
	started  []time.Time

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSubscriptions) FetchSubscriptions(ctx context.Context, key string, offset, limit int, headers map[string]string) ([]client.Subscription, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
	if offset == 0 {
		f.order = append(f.order, key)
		f.started = append(f.started, time.Now())
	}

	if err, ok := f.errByKey[key]; ok {
		return nil, err
	}
	items := f.byKey[key]
	if offset >= len(items) {
		return nil, nil
	}
	return items[offset:min(offset+limit, len(items))], nil
}

func (f *fakeSubscriptions) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func subscription(key, quote, workspace string, endMillis int64) client.Subscription {
	return client.Subscription{
		SubscriptionKey:    key,
		ProductDescription: "Foundation AP",
		EvaluationType:     "NONE",
		Quantity:           "10",
		AvailableQuantity:  "4",
		Appointments: client.Appointments{
			SubscriptionStart: client.EpochMillis(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()),
			SubscriptionEnd:   client.EpochMillis(endMillis),
		},
		Quote:              client.FlexString(quote),
		ProductSKU:         "R3J18AAE",
		EndUserName:        "Acme",
		PlatformCustomerID: workspace,
	}
}

var fixedToday = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(devices DeviceSource, subs SubscriptionSource, mutate func(*Config)) *Service {
	cfg := DefaultConfig()
	cfg.DeviceInterval = 0
	cfg.PageInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}
	return NewService(devices, subs, cfg,
		WithClock(func() time.Time { return fixedToday }),
		WithLogger(zerolog.Nop()),
	)
}

func collect(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func countType(events []Event, typ EventType) int {
	n := 0
	for _, ev := range events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}
