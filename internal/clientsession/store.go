// Package clientsession is the client half of the system: a single in-memory
// authority for "current user", with change notification to subscribers and
// persistence across restarts. The server never imports it.
package clientsession

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Snapshot is the public-safe identity shape held on the client: id,
// username, and the names of linked providers. Never credentials.
type Snapshot struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Memberships []string `json:"memberships"`
}

// Store holds the current snapshot (or nil when logged out). There is one
// instance per client process; construct it explicitly and pass it to
// whatever needs it.
type Store struct {
	// replaceMu serializes whole Replace calls, notification included, so a
	// subscriber never observes an interleaved update mid-notification.
	replaceMu sync.Mutex

	// mu guards current and subs; held only briefly so subscribers may call
	// Read from inside their callback.
	mu      sync.Mutex
	current *Snapshot
	subs    map[int]func()
	nextSub int

	storage Storage
}

// New builds a Store whose initial value is restored from durable storage.
// Corrupt stored state is treated as absent, not fatal.
func New(storage Storage) (*Store, error) {
	s := &Store{
		subs:    make(map[int]func()),
		storage: storage,
	}

	data, ok, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("clientsession: restore: %w", err)
	}
	if ok {
		var snap Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			s.current = &snap
		}
	}

	return s, nil
}

// Read returns the current snapshot, or nil when no user is logged in.
// Synchronous; safe to call from a subscriber callback.
func (s *Store) Read() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil
	}
	snap := *s.current
	return &snap
}

// Replace overwrites the snapshot wholesale, persists the new value (or
// clears storage when snap is nil), then synchronously notifies every
// subscriber. Subscribers receive no arguments; they re-read via Read.
func (s *Store) Replace(snap *Snapshot) error {
	s.replaceMu.Lock()
	defer s.replaceMu.Unlock()

	var persistErr error
	if snap == nil {
		persistErr = s.storage.Clear()
	} else {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("clientsession: marshal: %w", err)
		}
		persistErr = s.storage.Save(data)
	}

	s.mu.Lock()
	if snap == nil {
		s.current = nil
	} else {
		copied := *snap
		s.current = &copied
	}
	callbacks := make([]func(), 0, len(s.subs))
	for _, cb := range s.subs {
		callbacks = append(callbacks, cb)
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}

	if persistErr != nil {
		return fmt.Errorf("clientsession: persist: %w", persistErr)
	}
	return nil
}

// Subscribe registers a callback invoked on every Replace. The returned
// function deregisters it and is safe to call multiple times.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
