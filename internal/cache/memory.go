package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Entries expire after the TTL and are
// dropped lazily on read or eagerly by Purge.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	pages map[string]map[int]entry
}

// NewMemoryStore creates a MemoryStore; a non-positive ttl means DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		pages: make(map[string]map[int]entry),
	}
}

// WithClock replaces the time source. It is meant for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string, page int) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPage, ok := s.pages[key]
	if !ok {
		return nil, false, nil
	}
	e, ok := byPage[page]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		s.deleteLocked(key, page)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, page int, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byPage, ok := s.pages[key]
	if !ok {
		byPage = make(map[int]entry)
		s.pages[key] = byPage
	}
	buf := make([]byte, len(value))
	copy(buf, value)
	byPage[page] = entry{value: buf, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, key)
	return nil
}

// Purge drops every expired entry and returns how many were removed.
func (s *MemoryStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, byPage := range s.pages {
		for page, e := range byPage {
			if !now.Before(e.expiresAt) {
				delete(byPage, page)
				removed++
			}
		}
		if len(byPage) == 0 {
			delete(s.pages, key)
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, byPage := range s.pages {
		n += len(byPage)
	}
	return n
}

// RunJanitor purges expired entries every interval until ctx is done.
func (s *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Purge()
		}
	}
}

func (s *MemoryStore) deleteLocked(key string, page int) {
	byPage := s.pages[key]
	delete(byPage, page)
	if len(byPage) == 0 {
		delete(s.pages, key)
	}
}
