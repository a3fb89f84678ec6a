package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const writeTimeout = 5 * time.Second

// Backend is a remote key/value home for credentials (Redis, MongoDB).
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// WriteThrough serves reads from a snapshot taken at open and writes every
// change to the backend before updating the snapshot.
type WriteThrough struct {
	backend Backend

	mu     sync.RWMutex
	values map[string]string
}

// OpenWriteThrough loads the backend snapshot once.
func OpenWriteThrough(ctx context.Context, backend Backend) (*WriteThrough, error) {
	values, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credential snapshot: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return &WriteThrough{backend: backend, values: values}, nil
}

func (s *WriteThrough) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *WriteThrough) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.backend.Put(ctx, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	s.values[key] = value
	return nil
}

func (s *WriteThrough) Clear(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	delete(s.values, key)
	return nil
}

func (s *WriteThrough) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}
