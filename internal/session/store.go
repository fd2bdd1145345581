package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// ErrNotFound is returned for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// Store keeps sessions in memory and expires them after a period of inactivity.
type Store struct {
	cache *ttlcache.Cache[string, *Session]
	opt   Options
}

// NewStore creates a store whose sessions expire ttl after their last access.
// onExpire, if non-nil, is called with the id of every evicted session.
func NewStore(ttl time.Duration, opt Options, onExpire func(id string)) *Store {
	c := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](ttl),
	)
	if onExpire != nil {
		c.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Session]) {
			if reason == ttlcache.EvictionReasonExpired {
				onExpire(item.Key())
			}
		})
	}
	return &Store{cache: c, opt: opt}
}

// Start runs the expiry loop until Stop is called.
func (s *Store) Start() { go s.cache.Start() }

// Stop halts the expiry loop.
func (s *Store) Stop() { s.cache.Stop() }

// Create registers a new empty session.
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.opt)
	s.cache.Set(sess.ID, sess, ttlcache.DefaultTTL)
	return sess
}

// Get returns a session and extends its lifetime.
func (s *Store) Get(id string) (*Session, error) {
	item := s.cache.Get(id)
	if item == nil {
		return nil, ErrNotFound
	}
	return item.Value(), nil
}

// Delete removes a session. Deleting an unknown id returns ErrNotFound.
func (s *Store) Delete(id string) error {
	if s.cache.Get(id) == nil {
		return ErrNotFound
	}
	s.cache.Delete(id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Len() }

// DeleteExpired evicts expired sessions immediately.
func (s *Store) DeleteExpired() { s.cache.DeleteExpired() }
