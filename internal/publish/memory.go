package publish

import (
	"context"
	"sync"
)

// Object is a stored blob.
type Object struct {
	Body        []byte
	ContentType string
}

// MemoryStore implements ObjectStore in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	puts    int
}

// NewMemoryStore creates an empty in-memory object store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

var _ ObjectStore = (*MemoryStore)(nil)

// Put stores a copy of body under key.
func (s *MemoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
	s.puts++
	return nil
}

// Get returns a copy of the object under key.
func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return Object{}, false
	}
	obj.Body = append([]byte(nil), obj.Body...)
	return obj, true
}

// Puts returns the number of Put calls.
func (s *MemoryStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}
