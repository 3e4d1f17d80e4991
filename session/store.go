package session

import (
	"strconv"
	"sync"
	"time"
)

// Store persists the credential and the pending-login marker.
type Store interface {
	Credential() (string, bool)
	SetCredential(credential string) error
	ClearCredential() error

	PendingUntil() (time.Time, bool)
	SetPendingUntil(deadline time.Time) error
	ClearPending() error
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	credential string
	pending    time.Time
	writes     int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential, m.credential != ""
}

func (m *MemoryStore) SetCredential(credential string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = credential
	m.writes++
	return nil
}

func (m *MemoryStore) ClearCredential() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = ""
	return nil
}

func (m *MemoryStore) PendingUntil() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending, !m.pending.IsZero()
}

func (m *MemoryStore) SetPendingUntil(deadline time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = deadline
	return nil
}

func (m *MemoryStore) ClearPending() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = time.Time{}
	return nil
}

// CredentialWrites returns how many times SetCredential has been called.
func (m *MemoryStore) CredentialWrites() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

func formatDeadline(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

func parseDeadline(s string) (time.Time, bool) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, 0), true
}
