package llm

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"cvstudio-backend/internal/shared/telemetry"
)

// breakerClient wraps a Client so a misbehaving provider sheds load
// instead of tying up every request in retry loops.
type breakerClient struct {
	base Client
	cb   *gobreaker.CircuitBreaker[string]
}

// WithBreaker decorates base with a circuit breaker. The breaker trips
// after at least five requests in the rolling interval fail at a 60%
// ratio, and probes again after 30 seconds.
func WithBreaker(base Client, name string) Client {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Info("llm.breaker_state", map[string]any{
				"name": name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	}
	return &breakerClient{
		base: base,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerClient) Complete(ctx context.Context, req Request) (string, error) {
	return b.cb.Execute(func() (string, error) {
		return b.base.Complete(ctx, req)
	})
}
