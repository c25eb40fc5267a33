package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySource is an in-process ExpiredSource for tests and the demo host.
type MemorySource struct {
	mu      sync.Mutex
	active  map[uuid.UUID]Subscription
	expired map[uuid.UUID]Subscription
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		active:  make(map[uuid.UUID]Subscription),
		expired: make(map[uuid.UUID]Subscription),
	}
}

// Add registers an active subscription.
func (s *MemorySource) Add(sub Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[sub.ID] = sub
}

func (s *MemorySource) ListExpired(_ context.Context, now time.Time) ([]Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Subscription
	for _, sub := range s.active {
		if !sub.ExpiresAt.After(now) {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *MemorySource) MarkExpired(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub, ok := s.active[id]; ok {
		delete(s.active, id)
		s.expired[id] = sub
	}
	return nil
}

// ExpiredCount reports how many subscriptions have been marked expired.
func (s *MemorySource) ExpiredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expired)
}
