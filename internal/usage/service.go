package usage

import "context"

type store interface {
	Get(ctx context.Context, userID string) (Usage, error)
	EnsurePeriod(ctx context.Context, userID string) (Usage, error)
	Consume(ctx context.Context, userID string, kind Kind, n int) (Usage, error)
	Reset(ctx context.Context, userID string) (Usage, error)
	SetPlan(ctx context.Context, userID, plan string) (Usage, error)
}

// Service manages per-user quotas via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService() *Service {
	return &Service{store: newMemoryStore()}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Get returns the current usage for a user, initializing defaults if absent.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.Get(ctx, userID)
}

// EnsurePeriod resets the meters if the period has expired.
func (s *Service) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.store.EnsurePeriod(ctx, userID)
}

// CanConsume reports whether the user has n units of kind left.
func (s *Service) CanConsume(ctx context.Context, userID string, kind Kind, n int) (bool, Usage, error) {
	u, err := s.store.EnsurePeriod(ctx, userID)
	if err != nil {
		return false, Usage{}, err
	}
	if n <= 0 {
		return true, u, nil
	}
	m := u.meter(kind)
	if m.Used+n > m.Limit {
		return false, u, nil
	}
	return true, u, nil
}

// Consume increments the kind meter by n if within its limit.
func (s *Service) Consume(ctx context.Context, userID string, kind Kind, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, kind, n)
}

// Reset zeroes both meters and restarts the window.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID)
}

// SetPlan switches the user's plan and applies the new limits.
func (s *Service) SetPlan(ctx context.Context, userID, plan string) (Usage, error) {
	return s.store.SetPlan(ctx, userID, plan)
}
