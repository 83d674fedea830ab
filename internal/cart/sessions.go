package cart

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrSessionNotFound indicates the cart session expired or never existed.
var ErrSessionNotFound = errors.New("cart session not found")

// ErrInvalidSessionID is returned by Open for ids that are not UUIDs.
var ErrInvalidSessionID = errors.New("invalid cart session id")

// Sessions owns one Store per shopper session. Idle sessions expire after TTL;
// nothing is persisted across process restarts.
type Sessions struct {
	mu    sync.Mutex
	store *gocache.Cache
	ttl   time.Duration
}

// NewSessions constructs a session registry.
func NewSessions(ttl, cleanup time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return &Sessions{store: gocache.New(ttl, cleanup), ttl: ttl}
}

// New mints a session id with an empty cart.
func (s *Sessions) New() (string, *Store) {
	id := uuid.NewString()
	st := NewStore()
	s.store.Set(id, st, s.ttl)
	return id, st
}

// Get returns the cart for id and extends its idle deadline.
func (s *Sessions) Get(id string) (*Store, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st := v.(*Store)
	s.store.Set(id, st, s.ttl)
	return st, nil
}

// Open returns the cart for id, creating it when the id is well formed but unknown.
// Shoppers keep their cart id client-side, so a cart expired or lost in a restart
// comes back empty under the same id.
func (s *Sessions) Open(id string) (*Store, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSessionID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.store.Get(id); ok {
		st := v.(*Store)
		s.store.Set(id, st, s.ttl)
		return st, nil
	}
	st := NewStore()
	s.store.Set(id, st, s.ttl)
	return st, nil
}

// Drop forgets the session.
func (s *Sessions) Drop(id string) {
	s.store.Delete(strings.TrimSpace(id))
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	return s.store.ItemCount()
}
