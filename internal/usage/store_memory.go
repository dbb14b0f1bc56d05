package usage

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.RWMutex
	data map[string]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Usage)}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.RLock()
	u, ok := s.data[userID]
	s.mu.RUnlock()
	if ok && time.Now().UTC().Before(u.ResetsAt) {
		return u, nil
	}
	return s.ensure(ctx, userID)
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.ensure(ctx, userID)
}

func (s *memoryStore) ensure(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data[userID]
	if !ok {
		u = newUsage(PlanFree, now)
	}
	if !now.Before(u.ResetsAt) {
		u = newUsage(u.Plan, now)
	}
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Consume(ctx context.Context, userID string, kind Kind, n int) (Usage, error) {
	if n <= 0 {
		return s.ensure(ctx, userID)
	}
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u, ok := s.data[userID]
	if !ok {
		u = newUsage(PlanFree, now)
	}
	if !now.Before(u.ResetsAt) {
		u = newUsage(u.Plan, now)
	}
	m := u.meter(kind)
	if m.Used+n > m.Limit {
		return Usage{}, ErrLimitReached
	}
	u.addUsed(kind, n)
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	plan := PlanFree
	if u, ok := s.data[userID]; ok {
		plan = u.Plan
	}
	u := newUsage(plan, now)
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) SetPlan(ctx context.Context, userID, plan string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.data[userID]
	u := newUsage(plan, now)
	if ok && now.Before(existing.ResetsAt) {
		// Keep consumption and window; only the limits change.
		u.Analyses.Used = existing.Analyses.Used
		u.Enhancements.Used = existing.Enhancements.Used
		u.ResetsAt = existing.ResetsAt
	}
	s.data[userID] = u
	return u, nil
}
