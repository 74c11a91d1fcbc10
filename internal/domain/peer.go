// Package domain holds the registry's core types.
// A Peer is a client that registered a profile and a self-reported
// geolocation; everything else in the system derives from PeerRecord.
package domain

import (
	"math"
	"time"
)

// Status is a peer's stored presence state, set via heartbeat or an
// explicit status update. Distinct from the liveness label derived
// during discovery.
type Status string

const (
	StatusOnline  Status = "online"
	StatusAway    Status = "away"
	StatusBusy    Status = "busy"
	StatusOffline Status = "offline"
)

// ValidStatus reports whether s is one of the four accepted states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

// Coordinate is a WGS84 point with an optional accuracy radius in meters.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// Valid reports whether the point lies within [-90,90] latitude and
// [-180,180] longitude. NaN fails both comparisons.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// PeerRecord is one registered peer. PeerID is the immutable key;
// JoinedAt never changes after first registration; the counters are
// monotonic and survive re-registration.
type PeerRecord struct {
	PeerID           string     `json:"peerId"`
	Username         string     `json:"username"`
	Avatar           string     `json:"avatar"`
	Location         Coordinate `json:"location"`
	Status           Status     `json:"status"`
	LastSeen         time.Time  `json:"lastSeen"`
	JoinedAt         time.Time  `json:"joinedAt"`
	MessageCount     int64      `json:"messageCount"`
	ConnectionsCount int64      `json:"connectionsCount"`
	Activity         string     `json:"activity,omitempty"`
	ActivityAt       time.Time  `json:"activityAt"`
}
