package lookup

import (
	"cmp"
	"slices"
	"strings"
)

// deviceRank orders folders for display. Rank 0 needs a folder that is exactly
// "default" and also contains "Aruba Factory", which never happens, so every
// default folder lands in rank 1.
func deviceRank(folder string) int {
	isDefault := folder == "default"
	isAruba := strings.Contains(folder, "Aruba Factory")
	switch {
	case isDefault && isAruba:
		return 0
	case isDefault:
		return 1
	default:
		return 2
	}
}

// SortDevices orders records by folder rank, then platform ID.
func SortDevices(records []DeviceRecord) {
	slices.SortStableFunc(records, func(a, b DeviceRecord) int {
		return cmp.Or(
			cmp.Compare(deviceRank(a.FolderName), deviceRank(b.FolderName)),
			strings.Compare(a.PlatformID, b.PlatformID),
		)
	})
}

// SortSubscriptions orders records by workspace, ignoring case. Records
// without a workspace sort first.
func SortSubscriptions(records []SubscriptionRecord) {
	slices.SortStableFunc(records, func(a, b SubscriptionRecord) int {
		return strings.Compare(strings.ToLower(a.Workspace), strings.ToLower(b.Workspace))
	})
}

// dedupeSubscriptions keeps the first record seen for each subscription key.
func dedupeSubscriptions(records []SubscriptionRecord) []SubscriptionRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]SubscriptionRecord, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.SubscriptionKey]; dup {
			continue
		}
		seen[r.SubscriptionKey] = struct{}{}
		out = append(out, r)
	}
	return out
}
