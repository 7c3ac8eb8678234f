// Package store holds the ephemeral correlation store that bridges the
// asynchronous AI webhook and the client's short polling. Entries live in
// process memory only; a restart drops them by design.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/AmonApolonio/lookchat/internal/domain"
)

// Entry is one stored AI response awaiting consumption, stamped with the
// conversation id it was stored under and its ingestion time.
type Entry struct {
	domain.Payload
	StoredAt time.Time `json:"timestamp"`
}

// ResponseStore maps a conversation id to the latest undelivered AI
// payload. At most one entry exists per id: a second Put before the first
// Take overwrites it (last-write-wins, no queueing). Put and Take for the
// same id are serialized by the store's lock, so two racing pollers can
// never both consume one entry.
type ResponseStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a store whose entries expire after ttl. The TTL is purely
// defensive: it bounds memory held for abandoned conversation ids. A zero
// ttl disables expiry.
func New(ttl time.Duration) *ResponseStore {
	return &ResponseStore{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores the payload for the given conversation id, unconditionally
// replacing any undelivered predecessor. The id is stamped onto the
// payload so consumers can verify attribution after a chat reset.
func (s *ResponseStore) Put(chatID string, p domain.Payload) {
	p.ChatID = chatID

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chatID] = Entry{Payload: p, StoredAt: s.now()}
}

// Take atomically removes and returns the entry for the given conversation
// id. Exactly one caller observes ok=true per stored entry.
func (s *ResponseStore) Take(chatID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[chatID]
	if !ok {
		return Entry{}, false
	}
	delete(s.entries, chatID)

	if s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl {
		return Entry{}, false
	}
	return e, true
}

// Len reports the number of undelivered entries.
func (s *ResponseStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops entries older than the TTL and returns how many were removed.
func (s *ResponseStore) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.StoredAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries on a fixed cadence until ctx is cancelled.
// Meant to be started once from main as a background goroutine.
func (s *ResponseStore) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
