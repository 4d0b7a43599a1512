package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type memoryObject struct {
	body []byte
	tags []Tag
}

// MemoryStore is an in-memory ObjectStore used by tests and the one-shot
// CLI dry-run mode.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string]memoryObject
	region  string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{buckets: make(map[string]map[string]memoryObject), region: "local"}
}

func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return append([]byte(nil), obj.body...), nil
}

func (s *MemoryStore) Put(ctx context.Context, bucket, key string, body []byte, tags ...Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string]memoryObject)
	}
	s.buckets[bucket][key] = memoryObject{
		body: append([]byte(nil), body...),
		tags: append([]Tag(nil), tags...),
	}
	return nil
}

func (s *MemoryStore) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string, tags ...Tag) error {
	body, err := s.Get(ctx, srcBucket, srcKey)
	if err != nil {
		return err
	}
	return s.Put(ctx, dstBucket, dstKey, body, tags...)
}

func (s *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets[bucket], key)
	return nil
}

func (s *MemoryStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for key := range s.buckets[bucket] {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Tags(ctx context.Context, bucket, key string) ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return append([]Tag(nil), obj.tags...), nil
}

func (s *MemoryStore) Locate(ctx context.Context, bucket string) (string, error) {
	return s.region, nil
}

// Exists reports whether an object is present.
func (s *MemoryStore) Exists(bucket, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.buckets[bucket][key]
	return ok
}
