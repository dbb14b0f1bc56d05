package llm

import (
	"context"
	"errors"
	"time"

	"cvstudio-backend/internal/shared/metrics"
	"cvstudio-backend/internal/shared/telemetry"
)

const defaultMaxAttempts = 3

// Completion is the outcome of one retry loop: the raw content accepted
// and the 1-based attempt that produced it.
type Completion struct {
	Content    string
	Attempt    int
	GatePassed bool
	GateReason string
}

// GateFunc judges a raw completion. It returns pass and, on failure, a
// short reason for logging.
type GateFunc func(raw string) (bool, string)

// RetryOptions tunes CompleteWithRetry. Zero values fall back to three
// attempts with a one-second backoff base (2s, 4s, 8s between attempts).
type RetryOptions struct {
	MaxAttempts int
	BackoffBase time.Duration
	Gate        GateFunc
	RequestID   string
}

// CompleteWithRetry drives the completion loop: request, gate, backoff.
// Transport failures are retried with exponential backoff and become
// fatal only when every attempt failed. A gate failure is never fatal:
// once attempts run out the last content is returned anyway, flagged via
// GatePassed=false, because a lower-quality result beats no result.
// Each retry issues a fresh completion; nothing is repaired mid-loop.
func CompleteWithRetry(ctx context.Context, client Client, req Request, opts RetryOptions) (Completion, error) {
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	base := opts.BackoffBase
	if base <= 0 {
		base = time.Second
	}

	var last Completion
	for attempt := 1; attempt <= attempts; attempt++ {
		content, err := client.Complete(ctx, req)
		if err != nil {
			telemetry.Error("llm.attempt_failed", map[string]any{
				"request_id": opts.RequestID,
				"attempt":    attempt,
				"error":      err.Error(),
			})
			// A missing credential cannot heal between attempts.
			if errors.Is(err, ErrNotConfigured) {
				return Completion{}, err
			}
			if attempt == attempts {
				return Completion{}, err
			}
			metrics.IncLLMRetry()
			if sleepErr := backoff(ctx, attempt, base); sleepErr != nil {
				return Completion{}, sleepErr
			}
			continue
		}

		comp := Completion{Content: content, Attempt: attempt}
		if opts.Gate == nil {
			comp.GatePassed = true
			return comp, nil
		}

		pass, reason := opts.Gate(content)
		if pass {
			comp.GatePassed = true
			return comp, nil
		}
		comp.GateReason = reason
		last = comp
		metrics.IncLLMQualityRejected()
		if attempt == attempts {
			telemetry.Warn("llm.quality_accepted_with_warning", map[string]any{
				"request_id": opts.RequestID,
				"attempt":    attempt,
				"reason":     reason,
			})
			return comp, nil
		}
		metrics.IncLLMRetry()
		telemetry.Info("llm.quality_retry", map[string]any{
			"request_id": opts.RequestID,
			"attempt":    attempt,
			"reason":     reason,
		})
	}
	return last, nil
}

func backoff(ctx context.Context, attempt int, base time.Duration) error {
	delay := base << uint(attempt)
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
