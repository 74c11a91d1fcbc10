package registry

import (
	"math"

	"github.com/nearlink-net/nearlink/internal/domain"
)

// defaultAccuracyMeters is assumed when a client reports no accuracy.
const defaultAccuracyMeters = 1000.0

// mergeRecords folds an incoming registration into the stored record for
// the same peer ID. Field rules:
//
//   - JoinedAt is immutable once set; the existing value always wins.
//   - MessageCount/ConnectionsCount are monotonic: the larger value wins,
//     so re-registration never resets them.
//   - Profile fields (username, avatar, location, status, LastSeen) come
//     from the incoming record.
//   - Activity is kept from the existing record when the incoming one
//     carries none.
func mergeRecords(existing, incoming domain.PeerRecord) domain.PeerRecord {
	merged := incoming

	if !existing.JoinedAt.IsZero() {
		merged.JoinedAt = existing.JoinedAt
	}
	merged.MessageCount = max(existing.MessageCount, incoming.MessageCount)
	merged.ConnectionsCount = max(existing.ConnectionsCount, incoming.ConnectionsCount)

	if incoming.Activity == "" {
		merged.Activity = existing.Activity
		merged.ActivityAt = existing.ActivityAt
	}
	return merged
}

// normalizeLocation rounds coordinates to 6 decimal places (~11 cm) and
// applies the default accuracy when the client reported none.
func normalizeLocation(c domain.Coordinate) domain.Coordinate {
	c.Latitude = round6(c.Latitude)
	c.Longitude = round6(c.Longitude)
	if c.Accuracy <= 0 {
		c.Accuracy = defaultAccuracyMeters
	}
	return c
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
