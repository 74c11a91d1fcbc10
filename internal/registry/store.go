// Package registry is the in-memory peer store.
// It is the single source of truth for registered peers: a mutex-guarded
// map keyed by peer ID with full-scan queries. Cardinality stays small
// enough that no spatial index is warranted.
package registry

import (
	"sync"
	"time"

	"github.com/nearlink-net/nearlink/internal/domain"
)

// Store maps peer IDs to records. All mutations are serialized under one
// mutex; reads copy records out so callers never observe a torn write.
type Store struct {
	mu    sync.Mutex
	peers map[string]domain.PeerRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{peers: make(map[string]domain.PeerRecord)}
}

// Upsert inserts the record or merges it into an existing one with the
// same PeerID (see mergeRecords for the field-preservation rules).
// Coordinates are normalized before storing. Returns the stored record.
func (s *Store) Upsert(rec domain.PeerRecord) domain.PeerRecord {
	rec.Location = normalizeLocation(rec.Location)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.peers[rec.PeerID]; ok {
		rec = mergeRecords(existing, rec)
	}
	s.peers[rec.PeerID] = rec
	return rec
}

// Get returns the record for id, if present.
func (s *Store) Get(id string) (domain.PeerRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.peers[id]
	return rec, ok
}

// All returns a snapshot of every record. Order is not significant.
func (s *Store) All() []domain.PeerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.PeerRecord, 0, len(s.peers))
	for _, rec := range s.peers {
		out = append(out, rec)
	}
	return out
}

// Remove deletes the record for id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.peers, id)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// EvictStale removes every record whose LastSeen is older than timeout
// relative to now, and returns how many were removed. Eviction is hard
// removal: there is no soft-deleted state.
func (s *Store) EvictStale(now time.Time, timeout time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.peers {
		if now.Sub(rec.LastSeen) > timeout {
			delete(s.peers, id)
			removed++
		}
	}
	return removed
}
