package authzinfra

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// InMemorySnapshotStore is the process-scoped snapshot store: state survives
// within the process and is gone on restart. It backs the authorization
// context, which is refetched on every new session anyway.
type InMemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewInMemorySnapshotStore creates an empty in-memory snapshot store.
func NewInMemorySnapshotStore() *InMemorySnapshotStore {
	return &InMemorySnapshotStore{
		data: make(map[string][]byte),
	}
}

func (s *InMemorySnapshotStore) Save(_ context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = payload
	return nil
}

func (s *InMemorySnapshotStore) Load(_ context.Context, key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	payload, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		// Corrupt state reads as absent, never as an error.
		logx.WithField("key", key).WithError(err).Debug("discarding corrupt snapshot")
		return false, nil
	}
	return true, nil
}

func (s *InMemorySnapshotStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

var _ authz.SnapshotStore = (*InMemorySnapshotStore)(nil)
