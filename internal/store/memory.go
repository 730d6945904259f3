package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store enforcing the same uniqueness constraints as
// Postgres. Used by tests and local development without a database.
type Memory struct {
	mu          sync.Mutex
	users       map[string]User             // by id
	memberships map[string]SocialMembership // by id
}

func NewMemory() *Memory {
	return &Memory{
		users:       make(map[string]User),
		memberships: make(map[string]SocialMembership),
	}
}

func (m *Memory) CreateUser(_ context.Context, username, passwordHash string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
	}

	u := User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	return &u, nil
}

func (m *Memory) UserByID(_ context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) UserByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.users, id)
	for mid, mem := range m.memberships {
		if mem.UserID == id {
			delete(m.memberships, mid)
		}
	}
	return nil
}

func (m *Memory) CreateMembership(_ context.Context, mem SocialMembership) (*SocialMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.memberships {
		if existing.Provider == mem.Provider && existing.ProviderUserID == mem.ProviderUserID {
			return nil, ErrMembershipExists
		}
	}

	mem.ID = uuid.NewString()
	mem.CreatedAt = time.Now()
	m.memberships[mem.ID] = mem
	return &mem, nil
}

func (m *Memory) MembershipByProviderID(_ context.Context, provider, providerUserID string) (*SocialMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mem := range m.memberships {
		if mem.Provider == provider && mem.ProviderUserID == providerUserID {
			mem := mem
			return &mem, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) MembershipByUserAndProvider(_ context.Context, userID, provider string) (*SocialMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mem := range m.memberships {
		if mem.UserID == userID && mem.Provider == provider {
			mem := mem
			return &mem, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) MembershipsByUser(_ context.Context, userID string) ([]SocialMembership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []SocialMembership
	for _, mem := range m.memberships {
		if mem.UserID == userID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *Memory) UpdateCredential(_ context.Context, id string, cred Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mem, ok := m.memberships[id]
	if !ok {
		return ErrNotFound
	}
	mem.Credential = cred
	m.memberships[id] = mem
	return nil
}
