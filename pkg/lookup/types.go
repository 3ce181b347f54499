package lookup

import (
	"encoding/json"

	"github.com/Sternrassler/glp-lookup/pkg/client"
)

// LookupType selects the device field a lookup matches on.
type LookupType = client.LookupType

// Device lookup types.
const (
	LookupBySerial = client.LookupBySerial
	LookupByMAC    = client.LookupByMAC
)

// DeviceRecord is a complete device as returned to callers and exported.
type DeviceRecord struct {
	SerialNumber string `json:"Serial Number"`
	MACAddress   string `json:"MAC Address"`
	DeviceType   string `json:"Device Type"`
	DeviceModel  string `json:"Device Model"`
	PartNumber   string `json:"Part Number"`
	FolderName   string `json:"Folder Name"`
	PlatformID   string `json:"Platform ID"`
}

// Subscription validity values.
const (
	StatusValid   = "VALID"
	StatusExpired = "EXPIRED"
)

// SubscriptionRecord is a complete subscription with derived fields.
type SubscriptionRecord struct {
	SubscriptionKey string `json:"Subscription Key"`
	Description     string `json:"Key Description"`
	Type            string `json:"Type"`
	Quantity        string `json:"Quantity"`
	OpenSeats       string `json:"Open Seats"`
	StartDate       string `json:"Start Date"`
	EndDate         string `json:"End Date"`
	Status          string `json:"Valid/Expired"`
	OrderID         string `json:"Order ID"`
	ProductSKU      string `json:"Product SKU"`
	EndUserName     string `json:"EndUser Name"`
	Workspace       string `json:"Workspace"`
}

// TransportKind classifies the outcome of one upstream fetch.
type TransportKind string

const (
	TransportOK           TransportKind = "ok"
	TransportAuthError    TransportKind = "auth_error"
	TransportNetworkError TransportKind = "network_error"
)

// TransportStatus is the fetch outcome; Code is set for auth errors.
type TransportStatus struct {
	Kind TransportKind
	Code int
}

// BatchResult is the reconciled outcome of one batch or one key.
type BatchResult[R any] struct {
	Found   []R
	Missing []string
	Status  TransportStatus
}

// DeviceResult is the aggregate result of a device run.
type DeviceResult struct {
	Total        int            `json:"total"`
	Found        int            `json:"found"`
	MissingCount int            `json:"missing_count"`
	FoundPct     float64        `json:"found_pct"`
	MissingPct   float64        `json:"missing_pct"`
	Devices      []DeviceRecord `json:"devices"`
	Missing      []string       `json:"missing"`
}

// SubscriptionResult is the aggregate result of a subscription run. Total is
// valid + expired + missing after deduplication.
type SubscriptionResult struct {
	Total         int                  `json:"total"`
	Found         int                  `json:"found"`
	Valid         int                  `json:"valid"`
	Expired       int                  `json:"expired"`
	MissingCount  int                  `json:"missing_count"`
	FoundPct      float64              `json:"found_pct"`
	ValidPct      float64              `json:"valid_pct"`
	ExpiredPct    float64              `json:"expired_pct"`
	MissingPct    float64              `json:"missing_pct"`
	Subscriptions []SubscriptionRecord `json:"subscriptions"`
	Missing       []string             `json:"missing"`
}

// EventType tags an Event.
type EventType string

const (
	EventProgress  EventType = "progress"
	EventAuthError EventType = "auth_error"
	EventDone      EventType = "done"
)

// Terminal reports whether no event may follow one of this type.
func (t EventType) Terminal() bool {
	return t == EventAuthError || t == EventDone
}

// Event is one entry of a lookup stream.
//
// Progress events of a device run carry Found, Batch and TotalBatches; those
// of a subscription run only Pct, Queried and Total. Data holds a
// *DeviceResult or *SubscriptionResult on done.
type Event struct {
	Type EventType

	Pct          int
	Queried      int
	Total        int
	Found        int
	Batch        int
	TotalBatches int

	Status  int
	Message string

	Data any
}

type deviceProgressJSON struct {
	Type         EventType `json:"type"`
	Pct          int       `json:"pct"`
	Queried      int       `json:"queried"`
	Total        int       `json:"total"`
	Found        int       `json:"found"`
	Batch        int       `json:"batch"`
	TotalBatches int       `json:"total_batches"`
}

type keyProgressJSON struct {
	Type    EventType `json:"type"`
	Pct     int       `json:"pct"`
	Queried int       `json:"queried"`
	Total   int       `json:"total"`
}

type authErrorJSON struct {
	Type    EventType `json:"type"`
	Status  int       `json:"status"`
	Message string    `json:"message"`
}

type doneJSON struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// MarshalJSON encodes only the fields that belong to the event's type.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventAuthError:
		return json.Marshal(authErrorJSON{Type: e.Type, Status: e.Status, Message: e.Message})
	case EventDone:
		return json.Marshal(doneJSON{Type: e.Type, Data: e.Data})
	}

	if e.TotalBatches > 0 {
		return json.Marshal(deviceProgressJSON{
			Type:         e.Type,
			Pct:          e.Pct,
			Queried:      e.Queried,
			Total:        e.Total,
			Found:        e.Found,
			Batch:        e.Batch,
			TotalBatches: e.TotalBatches,
		})
	}
	return json.Marshal(keyProgressJSON{Type: e.Type, Pct: e.Pct, Queried: e.Queried, Total: e.Total})
}
