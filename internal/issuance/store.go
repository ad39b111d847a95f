package issuance

import (
	"sync"
	"time"
)

// Store is the keyed, time-bounded in-memory table of certificate requests.
// It is the only shared mutable state in the orchestrator: one mutex, whole
// entries swapped in and out, deep copies on both sides so a reader can
// never observe a half-updated request.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]CertificateRequest
	retention time.Duration
	now       func() time.Time
}

// NewStore creates a request store that evicts entries older than retention.
// The now function is injectable for tests; pass nil for the wall clock.
func NewStore(retention time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		entries:   make(map[string]CertificateRequest),
		retention: retention,
		now:       now,
	}
}

// Put stores or replaces a request. Every write also sweeps expired
// entries, so the table cannot grow without bound even if the background
// sweeper is disabled.
func (s *Store) Put(req CertificateRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	s.entries[req.ID] = req.clone()
}

// Get returns a copy of the request, or false if the id is unknown or the
// entry has expired. Expired entries are invisible even before a sweep
// physically removes them.
func (s *Store) Get(id string) (CertificateRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.entries[id]
	if !ok || s.expired(req) {
		return CertificateRequest{}, false
	}
	return req.clone(), true
}

// Delete removes a request. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Sweep removes all expired entries and returns how many were purged.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) sweepLocked() int {
	purged := 0
	for id, req := range s.entries {
		if s.expired(req) {
			delete(s.entries, id)
			purged++
		}
	}
	return purged
}

// expired is unconditional on status: an in-flight request past retention
// simply disappears.
func (s *Store) expired(req CertificateRequest) bool {
	return req.CreatedAt.Before(s.now().Add(-s.retention))
}
