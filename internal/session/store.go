// Package session owns the bearer credential and is the single source of
// truth for "is logged in". Views subscribe to it instead of polling
// storage; only the gateway and the login flow mutate it.
package session

import "sync"

type Event int

const (
	EventLogin Event = iota
	EventLogout
)

type Store interface {
	// Token returns the stored credential, or false when logged out.
	Token() (string, bool)
	SetToken(token string) error
	Clear() error
	// Subscribe registers an observer for login/logout transitions and
	// returns its unsubscribe function. Observers run synchronously on the
	// mutating call.
	Subscribe(fn func(Event)) func()
}

// notifier implements the Subscribe half of Store for every backend.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func (n *notifier) Subscribe(fn func(Event)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func(Event))
	}

	id := n.nextID
	n.nextID++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) notify(event Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))

	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(event)
	}
}

// MemoryStore keeps the token in process memory. Used in tests and as the
// fallback when no durable backend is configured.
type MemoryStore struct {
	notifier

	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	s.notify(EventLogin)

	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	s.mu.Unlock()

	if had {
		s.notify(EventLogout)
	}

	return nil
}
