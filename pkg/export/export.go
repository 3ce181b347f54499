// Package export renders lookup results as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/Sternrassler/glp-lookup/pkg/lookup"
)

// Kind selects which half of a result is exported.
type Kind string

const (
	KindFound   Kind = "found"
	KindMissing Kind = "missing"
)

// ParseKind maps user input to a Kind; anything but "missing" is found.
func ParseKind(raw string) Kind {
	if raw == string(KindMissing) {
		return KindMissing
	}
	return KindFound
}

// DeviceColumns is the fixed device column order.
var DeviceColumns = []string{
	"Serial Number",
	"MAC Address",
	"Device Type",
	"Device Model",
	"Part Number",
	"Folder Name",
	"Platform ID",
}

// SubscriptionColumns is the fixed subscription column order.
var SubscriptionColumns = []string{
	"Subscription Key",
	"Key Description",
	"Type",
	"Quantity",
	"Open Seats",
	"Start Date",
	"End Date",
	"Valid/Expired",
	"Order ID",
	"Product SKU",
	"EndUser Name",
	"Workspace",
}

// Missing-list column headers.
const (
	MissingDeviceColumn       = "Missing Device"
	MissingSubscriptionColumn = "Missing Subscription Key"
)

// SelectColumns returns the columns of order that appear in allow, in order.
// An empty allow-list or an empty intersection selects every column.
func SelectColumns(order, allow []string) []string {
	if len(allow) == 0 {
		return order
	}
	var out []string
	for _, c := range order {
		if slices.Contains(allow, c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return order
	}
	return out
}

func deviceValue(r lookup.DeviceRecord, column string) string {
	switch column {
	case "Serial Number":
		return r.SerialNumber
	case "MAC Address":
		return r.MACAddress
	case "Device Type":
		return r.DeviceType
	case "Device Model":
		return r.DeviceModel
	case "Part Number":
		return r.PartNumber
	case "Folder Name":
		return r.FolderName
	case "Platform ID":
		return r.PlatformID
	}
	return ""
}

func subscriptionValue(r lookup.SubscriptionRecord, column string) string {
	switch column {
	case "Subscription Key":
		return r.SubscriptionKey
	case "Key Description":
		return r.Description
	case "Type":
		return r.Type
	case "Quantity":
		return r.Quantity
	case "Open Seats":
		return r.OpenSeats
	case "Start Date":
		return r.StartDate
	case "End Date":
		return r.EndDate
	case "Valid/Expired":
		return r.Status
	case "Order ID":
		return r.OrderID
	case "Product SKU":
		return r.ProductSKU
	case "EndUser Name":
		return r.EndUserName
	case "Workspace":
		return r.Workspace
	}
	return ""
}

// WriteDevices writes a header row and one row per record. With no records
// nothing is written.
func WriteDevices(w io.Writer, records []lookup.DeviceRecord, allow []string) error {
	if len(records) == 0 {
		return nil
	}
	cols := SelectColumns(DeviceColumns, allow)
	return writeTable(w, cols, len(records), func(i int, col string) string {
		return deviceValue(records[i], col)
	})
}

// WriteSubscriptions writes a header row and one row per record. With no
// records nothing is written.
func WriteSubscriptions(w io.Writer, records []lookup.SubscriptionRecord, allow []string) error {
	if len(records) == 0 {
		return nil
	}
	cols := SelectColumns(SubscriptionColumns, allow)
	return writeTable(w, cols, len(records), func(i int, col string) string {
		return subscriptionValue(records[i], col)
	})
}

// WriteMissing writes a single-column table of identifiers. The header row is
// always written.
func WriteMissing(w io.Writer, header string, ids []string) error {
	return writeTable(w, []string{header}, len(ids), func(i int, _ string) string {
		return ids[i]
	})
}

func writeTable(w io.Writer, cols []string, rows int, value func(row int, col string) string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for i := 0; i < rows; i++ {
		for j, col := range cols {
			record[j] = value(i, col)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
