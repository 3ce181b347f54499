package lookup

import (
	"strings"
	"time"

	"github.com/Sternrassler/glp-lookup/pkg/client"
)

const (
	unknownIdentifier = "unknown"
	dateLayout        = "2006-01-02"
)

// reconcileDevices classifies a batch's items as found or missing. Requested
// identifiers absent from the response are appended to missing in request
// order.
func reconcileDevices(requested []string, items []client.Device, by LookupType) BatchResult[DeviceRecord] {
	res := BatchResult[DeviceRecord]{Status: TransportStatus{Kind: TransportOK}}
	received := make(map[string]struct{}, len(items))

	for _, d := range items {
		tracked := d.SerialNumber
		if by == LookupByMAC {
			tracked = d.MACAddress
		}
		if tracked != "" {
			received[strings.ToUpper(tracked)] = struct{}{}
		}

		if !deviceComplete(d) {
			if tracked == "" {
				tracked = unknownIdentifier
			}
			res.Missing = append(res.Missing, tracked)
			continue
		}
		res.Found = append(res.Found, DeviceRecord{
			SerialNumber: d.SerialNumber,
			MACAddress:   d.MACAddress,
			DeviceType:   d.DeviceType,
			DeviceModel:  d.DeviceModel,
			PartNumber:   d.PartNumber,
			FolderName:   d.Folder.FolderName,
			PlatformID:   d.PlatformCustomerID,
		})
	}

	for _, id := range requested {
		if _, ok := received[strings.ToUpper(id)]; !ok {
			res.Missing = append(res.Missing, id)
		}
	}
	return res
}

func deviceComplete(d client.Device) bool {
	return d.SerialNumber != "" && d.MACAddress != "" && d.PlatformCustomerID != "" && d.Folder.FolderName != ""
}

// failedBatch demotes every requested identifier to missing.
func failedBatch[R any](requested []string, status TransportStatus) BatchResult[R] {
	return BatchResult[R]{
		Missing: append([]string(nil), requested...),
		Status:  status,
	}
}

// reconcileKey classifies the items returned for one subscription key. A key
// with no items at all is missing as itself.
func reconcileKey(key string, items []client.Subscription, today time.Time) BatchResult[SubscriptionRecord] {
	res := BatchResult[SubscriptionRecord]{Status: TransportStatus{Kind: TransportOK}}
	if len(items) == 0 {
		res.Missing = []string{key}
		return res
	}

	for _, sub := range items {
		if sub.SubscriptionKey == "" || sub.Quote == "" {
			missing := sub.SubscriptionKey
			if missing == "" {
				missing = key
			}
			res.Missing = append(res.Missing, missing)
			continue
		}
		res.Found = append(res.Found, deriveSubscription(sub, today))
	}
	return res
}

func deriveSubscription(sub client.Subscription, today time.Time) SubscriptionRecord {
	evalType := sub.EvaluationType
	if evalType == "NONE" {
		evalType = "PAID"
	}

	end := formatEpochDate(sub.Appointments.SubscriptionEnd)
	status := StatusExpired
	// ISO dates compare lexically.
	if end != "" && today.UTC().Format(dateLayout) <= end {
		status = StatusValid
	}

	return SubscriptionRecord{
		SubscriptionKey: sub.SubscriptionKey,
		Description:     sub.ProductDescription,
		Type:            evalType,
		Quantity:        string(sub.Quantity),
		OpenSeats:       string(sub.AvailableQuantity),
		StartDate:       formatEpochDate(sub.Appointments.SubscriptionStart),
		EndDate:         end,
		Status:          status,
		OrderID:         string(sub.Quote),
		ProductSKU:      sub.ProductSKU,
		EndUserName:     sub.EndUserName,
		Workspace:       sub.PlatformCustomerID,
	}
}

// formatEpochDate renders epoch milliseconds as a UTC calendar date, or ""
// when absent.
func formatEpochDate(ms client.EpochMillis) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(int64(ms)).UTC().Format(dateLayout)
}
