package handlers

import (
	"sync"
	"time"

	"github.com/diewo77/invoice-pay/internal/checkout"
)

// Session is one open checkout, the server-side counterpart of a payment modal.
type Session struct {
	ID   string
	Flow *checkout.Flow

	lastSeen time.Time
}

// Sessions is the in-memory registry of open checkouts. Sessions idle for
// longer than the TTL are closed and dropped by Sweep.
type Sessions struct {
	mu    sync.RWMutex
	items map[string]*Session
	ttl   time.Duration
	now   func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		items: make(map[string]*Session),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Add registers flow under id.
func (s *Sessions) Add(id string, flow *checkout.Flow) *Session {
	sess := &Session{ID: id, Flow: flow, lastSeen: s.now()}
	s.mu.Lock()
	s.items[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session and marks it as used.
func (s *Sessions) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

func (s *Sessions) Remove(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep closes and removes sessions not used since now minus the TTL.
// A session with a submission in flight is kept until it settles.
// It returns the number of sessions removed.
func (s *Sessions) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var stale []*Session
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) && sess.Flow.State() != checkout.StateSubmitting {
			stale = append(stale, sess)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		_ = sess.Flow.Close()
	}
	return len(stale)
}
