package api

import (
	"encoding/json"
	"net/http"

	"github.com/Sternrassler/glp-lookup/pkg/client"
	"github.com/Sternrassler/glp-lookup/pkg/lookup"
)

const (
	msgNoDevices = "No devices provided"
	msgNoKeys    = "No subscription keys provided."

	maxBodyBytes = 4 << 20
)

// deviceBody is the JSON body of the device endpoints. Devices is a free-text
// blob of serials or MAC addresses separated by commas or newlines.
type deviceBody struct {
	Devices       string            `json:"devices"`
	Type          string            `json:"type"`
	ParsedHeaders map[string]string `json:"parsed_headers"`
	Export        string            `json:"export"`
	Columns       []string          `json:"columns"`
}

func (b deviceBody) request() lookup.DeviceRequest {
	return lookup.DeviceRequest{
		IDs:     lookup.ParseIdentifiers(b.Devices),
		By:      client.ParseLookupType(b.Type),
		Headers: b.ParsedHeaders,
	}
}

// subscriptionBody is the JSON body of the subscription endpoints.
type subscriptionBody struct {
	Keys          string            `json:"keys"`
	ParsedHeaders map[string]string `json:"parsed_headers"`
	Export        string            `json:"export"`
	Columns       []string          `json:"columns"`
}

func (b subscriptionBody) request() lookup.SubscriptionRequest {
	return lookup.SubscriptionRequest{
		Keys:    lookup.ParseIdentifiers(b.Keys),
		Headers: b.ParsedHeaders,
	}
}

// decodeBody reads a JSON body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON payload")
		return false
	}
	return true
}
