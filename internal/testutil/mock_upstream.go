// Package testutil provides testing utilities for the lookup service.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/client"
)

// MockResponse defines the behavior for a mock upstream endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable in-memory inventory API for testing. By
// default it answers device queries from Devices and subscription queries
// from Subscriptions, paging by offset and limit.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	devices       []client.Device
	subscriptions map[string][]client.Subscription
	authHeader    string

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	LastQuery         map[string]string
}

// NewMockUpstream creates a new mock upstream server.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers:      make(map[string]func(w http.ResponseWriter, r *http.Request)),
		subscriptions: make(map[string][]client.Subscription),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = make(map[string]string)
		for k := range r.URL.Query() {
			mock.LastQuery[k] = r.URL.Query().Get(k)
		}
		authHeader := mock.authHeader
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if authHeader != "" && r.Header.Get("Authorization") != authHeader {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message": "Unauthorized"}`))
			return
		}

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case client.EndpointDevices:
			mock.devicesHandler(w, r)
		case client.EndpointSubscriptions:
			mock.subscriptionsHandler(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	return mock
}

// URL returns the mock server URL, usable as client base URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// AddDevices adds devices to the inventory.
func (m *MockUpstream) AddDevices(devices ...client.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = append(m.devices, devices...)
}

// AddSubscriptions makes subs the result set of key pattern.
func (m *MockUpstream) AddSubscriptions(key string, subs ...client.Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions[key] = append(m.subscriptions[key], subs...)
}

// RequireAuthorization rejects requests whose Authorization header differs
// from value with 401.
func (m *MockUpstream) RequireAuthorization(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authHeader = value
}

// SetHandler sets a custom handler for a specific path. A nil handler
// restores the inventory-backed default.
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if handler == nil {
		delete(m.handlers, path)
		return
	}
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockUpstream) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// LastHeader returns a header of the most recent request.
func (m *MockUpstream) LastHeader(name string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Get(name)
}

// LastQueryParam returns a query parameter of the most recent request and
// whether it was present.
func (m *MockUpstream) LastQueryParam(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.LastQuery[name]
	return v, ok
}

func (m *MockUpstream) devicesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, raw := "serial_number", q.Get("serial_number")
	if q.Has("mac_address") {
		field, raw = "mac_address", q.Get("mac_address")
	}

	want := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		want[strings.ToUpper(strings.TrimSpace(id))] = true
	}

	m.mu.RLock()
	out := make([]client.Device, 0)
	for _, d := range m.devices {
		tracked := d.SerialNumber
		if field == "mac_address" {
			tracked = d.MACAddress
		}
		if want[strings.ToUpper(tracked)] {
			out = append(out, d)
		}
	}
	m.mu.RUnlock()

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit < len(out) {
		out = out[:limit]
	}
	writeJSON(w, map[string]any{"devices": out})
}

func (m *MockUpstream) subscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	offset, _ := strconv.Atoi(q.Get("offset"))
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 30
	}

	m.mu.RLock()
	all := m.subscriptions[q.Get("subscription_key_pattern")]
	m.mu.RUnlock()

	page := make([]client.Subscription, 0)
	if offset < len(all) {
		page = all[offset:min(offset+limit, len(all))]
	}
	writeJSON(w, map[string]any{"subscriptions": page})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}

// NewAuthErrorResponse creates a 401 or 403 response.
func NewAuthErrorResponse(status int) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       `{"message": "Forbidden"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// Device returns a complete device record for tests.
func Device(serial, mac, platformID, folder string) client.Device {
	return client.Device{
		SerialNumber:       serial,
		MACAddress:         mac,
		DeviceType:         "AP",
		DeviceModel:        "AP-515",
		PartNumber:         "Q9H62A",
		PlatformCustomerID: platformID,
		Folder:             client.Folder{FolderName: folder},
	}
}

// Subscription returns a complete subscription record for tests.
func Subscription(key, quote, workspace string, end time.Time) client.Subscription {
	return client.Subscription{
		SubscriptionKey:    key,
		ProductDescription: "Foundation AP",
		EvaluationType:     "NONE",
		Quantity:           "10",
		AvailableQuantity:  "2",
		Appointments: client.Appointments{
			SubscriptionStart: client.EpochMillis(end.AddDate(-1, 0, 0).UnixMilli()),
			SubscriptionEnd:   client.EpochMillis(end.UnixMilli()),
		},
		Quote:              client.FlexString(quote),
		ProductSKU:         "R3J18AAE",
		EndUserName:        "Acme",
		PlatformCustomerID: workspace,
	}
}
