package store

import (
	"context"
	"sync"

	"github.com/roach88/storefront/internal/state"
)

// Memory is an in-process session mirror with the same surface as Store.
//
// Thread-safety: Memory is safe for concurrent use via internal mutex.
type Memory struct {
	mu    sync.Mutex
	token string
	user  *state.User

	// FailWrites makes SaveSession and ClearSession return this error.
	FailWrites error
}

// NewMemory creates an empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// SaveSession stores the token and user.
func (m *Memory) SaveSession(_ context.Context, token string, user state.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.token = token
	m.user = &user
	return nil
}

// LoadSession returns the stored token and a copy of the user.
func (m *Memory) LoadSession(context.Context) (string, *state.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return m.token, nil, nil
	}
	u := *m.user
	return m.token, &u, nil
}

// ClearSession removes the token and user.
func (m *Memory) ClearSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.token = ""
	m.user = nil
	return nil
}

// Token returns the stored token, or "".
func (m *Memory) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}
