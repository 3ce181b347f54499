package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LookupType selects which device identifier a query matches on.
type LookupType string

const (
	// LookupBySerial matches devices by serial number.
	LookupBySerial LookupType = "serial"

	// LookupByMAC matches devices by MAC address.
	LookupByMAC LookupType = "mac"
)

// ParseLookupType maps a user-supplied type to a LookupType. Anything other
// than "mac" is treated as a serial lookup.
func ParseLookupType(raw string) LookupType {
	if strings.EqualFold(strings.TrimSpace(raw), string(LookupByMAC)) {
		return LookupByMAC
	}
	return LookupBySerial
}

// queryParam returns the upstream query parameter name for the lookup type.
func (t LookupType) queryParam() string {
	if t == LookupByMAC {
		return "mac_address"
	}
	return "serial_number"
}

// DeviceQuery is one device batch request.
type DeviceQuery struct {
	// IDs are the serials or MAC addresses of the batch, in order.
	IDs []string

	// By selects the identifier field.
	By LookupType
}

// Device is one record of the activate-devices endpoint.
type Device struct {
	SerialNumber       string `json:"serial_number"`
	MACAddress         string `json:"mac_address"`
	DeviceType         string `json:"device_type"`
	DeviceModel        string `json:"device_model"`
	PartNumber         string `json:"part_number"`
	PlatformCustomerID string `json:"platform_customer_id"`
	Folder             Folder `json:"folder"`
}

// Folder is the device folder assignment.
type Folder struct {
	FolderName string `json:"folder_name"`
}

type devicesResponse struct {
	Devices []Device `json:"devices"`
}

// Subscription is one record of the subscriptions endpoint.
type Subscription struct {
	SubscriptionKey    string       `json:"subscription_key"`
	ProductDescription string       `json:"product_description"`
	EvaluationType     string       `json:"evaluation_type"`
	Quantity           FlexString   `json:"quantity"`
	AvailableQuantity  FlexString   `json:"available_quantity"`
	Appointments       Appointments `json:"appointments"`
	Quote              FlexString   `json:"quote"`
	ProductSKU         string       `json:"product_sku"`
	EndUserName        string       `json:"end_user_name"`
	PlatformCustomerID string       `json:"platform_customer_id"`
}

// Appointments holds the subscription term as epoch milliseconds.
type Appointments struct {
	SubscriptionStart EpochMillis `json:"subscription_start"`
	SubscriptionEnd   EpochMillis `json:"subscription_end"`
}

type subscriptionsResponse struct {
	Subscriptions []Subscription `json:"subscriptions"`
}

// FlexString accepts a JSON string, number or null.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// EpochMillis is a Unix timestamp in milliseconds; zero means absent.
type EpochMillis int64

// UnmarshalJSON accepts integer, float or numeric-string timestamps and null.
func (e *EpochMillis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*e = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("epoch millis: %w", err)
	}
	*e = EpochMillis(math.Trunc(v))
	return nil
}
