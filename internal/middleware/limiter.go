package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// limiterSet keeps one token bucket per key and drops buckets unused for limiterTTL.
type limiterSet struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry
	cleanup sync.Once
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limit:   limit,
		burst:   burst,
		entries: make(map[string]*limiterEntry),
	}
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.cleanup.Do(func() { go s.cleanupLoop() })

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.entries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (s *limiterSet) allow(key string) bool {
	return s.get(key).Allow()
}

func (s *limiterSet) evict(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(s.entries, k)
		}
	}
}

func (s *limiterSet) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for now := range ticker.C {
		s.evict(now)
	}
}
