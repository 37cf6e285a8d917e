package guard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"retail-saas/internal/domain/identity"
)

// IdentityKey is the store key of the cached identity snapshot.
const IdentityKey = "user"

// SnapshotStore is the key/value contract the cached identity lives in.
type SnapshotStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

var ErrNoIdentity = errors.New("no cached identity")

// LoadIdentity reads the cached snapshot. A missing, undecodable or invalid
// snapshot is ErrNoIdentity; the caller redirects to login.
func LoadIdentity(ctx context.Context, s SnapshotStore) (*identity.Identity, error) {
	raw, ok, err := s.Get(ctx, IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if !ok || raw == "" {
		return nil, ErrNoIdentity
	}
	var id identity.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil || !id.Valid() {
		return nil, ErrNoIdentity
	}
	return &id, nil
}

func SaveIdentity(ctx context.Context, s SnapshotStore, id identity.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return s.Set(ctx, IdentityKey, string(raw))
}

// ClearIdentity is the logout path.
func ClearIdentity(ctx context.Context, s SnapshotStore) error {
	return s.Remove(ctx, IdentityKey)
}
