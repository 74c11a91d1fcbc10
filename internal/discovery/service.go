// Package discovery implements the registry-facing logic of the nearby
// service: registration validation, proximity ranking, and liveness
// bookkeeping on top of the in-memory store. It owns all time-based
// rules (staleness, activity windows) and returns derived views instead
// of leaking raw registry internals.
package discovery

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/nearlink-net/nearlink/internal/domain"
	"github.com/nearlink-net/nearlink/internal/geo"
	"github.com/nearlink-net/nearlink/internal/infra/metrics"
	"github.com/nearlink-net/nearlink/internal/registry"
)

// Liveness labels derived from LastSeen during discovery. These are
// computed per query and are independent of the stored status field.
const (
	LivenessOnline = "online"
	LivenessAway   = "away"
)

// Options are the tunable time windows and limits of the service.
type Options struct {
	// StaleTimeout is how long a silent peer stays visible before it is
	// treated as gone and becomes eligible for eviction.
	StaleTimeout time.Duration
	// ActiveWindow classifies a peer as active in discovery results.
	ActiveWindow time.Duration
	// OnlineWindow selects the "online" liveness label; beyond it (but
	// within ActiveWindow) the label is "away".
	OnlineWindow time.Duration
	// DefaultRangeMeters applies when a query carries no usable range.
	DefaultRangeMeters float64
	// MaxRangeMeters caps any requested range.
	MaxRangeMeters float64
	// MaxResults truncates the ranked peer list.
	MaxResults int
	// UsernameRadiusMeters is the exclusion zone for duplicate usernames.
	UsernameRadiusMeters float64
	// DistanceTieMeters: distance gaps at or below this are ranking ties.
	DistanceTieMeters float64
}

// DefaultOptions returns the production windows and limits.
func DefaultOptions() Options {
	return Options{
		StaleTimeout:         8 * time.Minute,
		ActiveWindow:         60 * time.Second,
		OnlineWindow:         30 * time.Second,
		DefaultRangeMeters:   5000,
		MaxRangeMeters:       50000,
		MaxResults:           100,
		UsernameRadiusMeters: 1000,
		DistanceTieMeters:    100,
	}
}

// MinPeerIDLength is the shortest accepted peer identifier.
const MinPeerIDLength = 10

// Service is the discovery engine. All methods are safe for concurrent
// use. Mutating operations hold mu for their whole scan-and-write span:
// the username uniqueness rule is checked against the full record set,
// so the check and the insert must not interleave across requests. Reads
// (Discover, Stats) work on store snapshots and skip mu.
type Service struct {
	mu    sync.Mutex
	store *registry.Store
	clock clock.Clock
	log   *logrus.Logger
	opts  Options
}

// New creates a discovery service on top of store.
func New(store *registry.Store, clk clock.Clock, log *logrus.Logger, opts Options) *Service {
	return &Service{store: store, clock: clk, log: log, opts: opts}
}

// ─── Registration ───────────────────────────────────────────────────────────

// Registration is the input of Register.
type Registration struct {
	PeerID   string
	Username string
	Avatar   string
	Location domain.Coordinate
}

// RegisterResult reports the outcome of a successful registration.
type RegisterResult struct {
	Record    domain.PeerRecord
	PeerCount int
	Timestamp time.Time
}

// Register validates reg, stores or merges the record, and evicts stale
// peers as a side effect so the registry stays self-cleaning. Validation
// short-circuits on the first failing check.
func (s *Service) Register(reg Registration) (RegisterResult, error) {
	if err := validateRegistration(&reg); err != nil {
		metrics.Registrations.WithLabelValues(domain.Code(err)).Inc()
		return RegisterResult{}, err
	}

	// The uniqueness scan and the insert must be one critical section:
	// two concurrent registrations of the same name could otherwise both
	// pass the scan before either record lands in the store.
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUsernameUnique(reg); err != nil {
		metrics.Registrations.WithLabelValues(domain.Code(err)).Inc()
		return RegisterResult{}, err
	}

	now := s.clock.Now()
	rec := s.store.Upsert(domain.PeerRecord{
		PeerID:   reg.PeerID,
		Username: reg.Username,
		Avatar:   reg.Avatar,
		Location: reg.Location,
		Status:   domain.StatusOnline,
		LastSeen: now,
		JoinedAt: now,
	})

	// Every successful registration doubles as an eviction sweep.
	if removed := s.store.EvictStale(now, s.opts.StaleTimeout); removed > 0 {
		metrics.PeersEvicted.Add(float64(removed))
		s.log.WithFields(logrus.Fields{
			"component": "discovery",
			"evicted":   removed,
		}).Info("evicted stale peers during registration")
	}

	metrics.Registrations.WithLabelValues("ok").Inc()
	metrics.PeersRegistered.Set(float64(s.store.Len()))

	s.log.WithFields(logrus.Fields{
		"component": "discovery",
		"peer_id":   rec.PeerID,
		"username":  rec.Username,
	}).Debug("peer registered")

	return RegisterResult{
		Record:    rec,
		PeerCount: s.store.Len(),
		Timestamp: now,
	}, nil
}

// checkUsernameUnique scans every stored peer for a case-insensitive
// username match within the exclusion radius, excluding the caller's own
// record so re-registration under the same name always passes. Callers
// must hold mu so the scan stays valid until the matching insert.
func (s *Service) checkUsernameUnique(reg Registration) error {
	for _, other := range s.store.All() {
		if other.PeerID == reg.PeerID {
			continue
		}
		if !strings.EqualFold(other.Username, reg.Username) {
			continue
		}
		if geo.DistanceMeters(other.Location, reg.Location) <= s.opts.UsernameRadiusMeters {
			return fmt.Errorf("%q: %w", reg.Username, domain.ErrUsernameTaken)
		}
	}
	return nil
}

// ─── Discovery ──────────────────────────────────────────────────────────────

// NearbyPeer is the derived per-peer view returned by Discover.
type NearbyPeer struct {
	PeerID          string
	Username        string
	Avatar          string
	DistanceMeters  float64
	IsActive        bool
	Liveness        string // derived label, LivenessOnline or LivenessAway
	Status          domain.Status
	AccuracyMeters  float64
	Activity        string
	LastSeenSeconds float64
	JoinedAt        time.Time
}

// Stats are aggregate registry numbers included in discovery and health
// responses.
type Stats struct {
	TotalPeers  int
	ActivePeers int
}

// DiscoverResult is the ranked answer to a nearby-peer query.
type DiscoverResult struct {
	Peers       []NearbyPeer
	Total       int     // matches before truncation
	RangeMeters float64 // effective range after default/cap
	Stats       Stats
}

// Discover returns peers within rangeMeters of the requester, ranked
// active-first, then by distance (gaps within DistanceTieMeters tie),
// then by newest JoinedAt. Peers past the staleness timeout are skipped
// but not removed here; eviction happens on registration and in the
// background sweep.
func (s *Service) Discover(peerID string, rangeMeters float64) (DiscoverResult, error) {
	start := time.Now()
	defer func() {
		metrics.DiscoveryLatency.Observe(time.Since(start).Seconds())
	}()
	metrics.DiscoveryRequests.Inc()

	self, ok := s.store.Get(peerID)
	if !ok {
		return DiscoverResult{}, fmt.Errorf("%s: %w", peerID, domain.ErrPeerNotFound)
	}

	effRange := s.effectiveRange(rangeMeters)
	now := s.clock.Now()

	var matches []NearbyPeer
	for _, rec := range s.store.All() {
		if rec.PeerID == self.PeerID {
			continue
		}
		idle := now.Sub(rec.LastSeen)
		if idle > s.opts.StaleTimeout {
			continue
		}
		d := geo.DistanceMeters(self.Location, rec.Location)
		if d > effRange {
			// +Inf from malformed records lands here too.
			continue
		}

		liveness := LivenessAway
		if idle < s.opts.OnlineWindow {
			liveness = LivenessOnline
		}
		matches = append(matches, NearbyPeer{
			PeerID:          rec.PeerID,
			Username:        rec.Username,
			Avatar:          rec.Avatar,
			DistanceMeters:  d,
			IsActive:        idle < s.opts.ActiveWindow,
			Liveness:        liveness,
			Status:          rec.Status,
			AccuracyMeters:  rec.Location.Accuracy,
			Activity:        rec.Activity,
			LastSeenSeconds: idle.Seconds(),
			JoinedAt:        rec.JoinedAt,
		})
	}

	total := len(matches)
	metrics.DiscoveryMatches.Observe(float64(total))

	s.rank(matches)
	if len(matches) > s.opts.MaxResults {
		matches = matches[:s.opts.MaxResults]
	}

	return DiscoverResult{
		Peers:       matches,
		Total:       total,
		RangeMeters: effRange,
		Stats:       s.statsAt(now),
	}, nil
}

// effectiveRange applies the default for missing or non-positive values
// and clamps to the cap. A bad range never fails a query.
func (s *Service) effectiveRange(rangeMeters float64) float64 {
	if math.IsNaN(rangeMeters) || rangeMeters <= 0 {
		return s.opts.DefaultRangeMeters
	}
	if rangeMeters > s.opts.MaxRangeMeters {
		return s.opts.MaxRangeMeters
	}
	return rangeMeters
}

// rank sorts peers active-first, then nearest-first with sub-tie-gap
// distances treated as equal, then newest joiners first.
func (s *Service) rank(peers []NearbyPeer) {
	sort.SliceStable(peers, func(i, j int) bool {
		a, b := peers[i], peers[j]
		if a.IsActive != b.IsActive {
			return a.IsActive
		}
		if gap := a.DistanceMeters - b.DistanceMeters; math.Abs(gap) > s.opts.DistanceTieMeters {
			return gap < 0
		}
		return a.JoinedAt.After(b.JoinedAt)
	})
}

// ─── Liveness updates ───────────────────────────────────────────────────────

// Beat is an optional heartbeat payload. Counter fields carry the
// client's running totals; they only ever raise the stored values.
type Beat struct {
	Activity         string
	MessageCount     int64
	ConnectionsCount int64
}

// Heartbeat refreshes the peer's liveness: LastSeen moves to now and the
// stored status is forced back to online.
func (s *Service) Heartbeat(peerID string, beat Beat) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(peerID)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", peerID, domain.ErrPeerNotFound)
	}

	now := s.clock.Now()
	rec.LastSeen = now
	rec.Status = domain.StatusOnline
	if beat.Activity != "" {
		rec.Activity = beat.Activity
		rec.ActivityAt = now
	}
	if beat.MessageCount > rec.MessageCount {
		rec.MessageCount = beat.MessageCount
	}
	if beat.ConnectionsCount > rec.ConnectionsCount {
		rec.ConnectionsCount = beat.ConnectionsCount
	}
	s.store.Upsert(rec)

	metrics.Heartbeats.Inc()
	return now, nil
}

// SetStatus stores an explicit presence state and refreshes LastSeen.
func (s *Service) SetStatus(peerID string, status domain.Status) (time.Time, error) {
	if !domain.ValidStatus(status) {
		return time.Time{}, fmt.Errorf("%q: %w", status, domain.ErrInvalidStatus)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.store.Get(peerID)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", peerID, domain.ErrPeerNotFound)
	}

	now := s.clock.Now()
	rec.Status = status
	rec.LastSeen = now
	s.store.Upsert(rec)

	metrics.StatusUpdates.WithLabelValues(string(status)).Inc()
	return now, nil
}

// ─── Stats ──────────────────────────────────────────────────────────────────

// Stats returns the current registry size and the count of peers seen
// within the active window.
func (s *Service) Stats() Stats {
	return s.statsAt(s.clock.Now())
}

func (s *Service) statsAt(now time.Time) Stats {
	st := Stats{}
	for _, rec := range s.store.All() {
		st.TotalPeers++
		if now.Sub(rec.LastSeen) < s.opts.ActiveWindow {
			st.ActivePeers++
		}
	}
	return st
}
