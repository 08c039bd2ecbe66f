package definition

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("value not found")

// InMemoryStorage implements the types.Storage using only memory,
// nothing survives a restart. The delivery log of a replica is kept
// here when no other storage is configured.
type InMemoryStorage struct {
	// Mutex for operations executions
	mutex *sync.Mutex

	// The in-memory storage
	kv map[string][]byte
}

// Set implements the types.Storage interface. The value is copied.
func (s *InMemoryStorage) Set(key []byte, value []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.kv[string(key)] = append([]byte(nil), value...)
	return nil
}

// Get implements the types.Storage interface, returning
// ErrNotFound for a missing key.
func (s *InMemoryStorage) Get(key []byte) ([]byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	value, ok := s.kv[string(key)]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNotFound, string(key))
	}
	return value, nil
}

// Len returns how many keys are stored.
func (s *InMemoryStorage) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.kv)
}

// NewInMemoryStorage creates a new storage using memory only.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		mutex: &sync.Mutex{},
		kv:    make(map[string][]byte),
	}
}
