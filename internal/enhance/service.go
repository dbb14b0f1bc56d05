package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvstudio-backend/internal/llm"
	"cvstudio-backend/internal/shared/metrics"
	"cvstudio-backend/internal/shared/storage/object"
	"cvstudio-backend/internal/shared/telemetry"
	"cvstudio-backend/internal/usage"
)

// Hard ceiling on one enhancement request, enforced via context deadline.
const completionTimeout = 60 * time.Second

// Service runs CV enhancements through the retry loop and quality gate.
type Service struct {
	Usage *usage.Service
	Store object.ObjectStore
	LLM   llm.Client

	// Timeout and Backoff override the defaults; zero keeps them.
	Timeout time.Duration
	Backoff time.Duration
}

// Enhance applies reviewer recommendations to a CV. Transport failures
// are retried and become fatal only when exhausted; every other failure
// mode degrades to returning the best available document, down to the
// unmodified original.
func (s *Service) Enhance(ctx context.Context, userID, requestID string, req EnhanceRequest) (EnhanceResponse, error) {
	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, usage.KindEnhancement, 1)
		if err != nil {
			return EnhanceResponse{}, err
		}
		if !ok {
			return EnhanceResponse{}, usage.ErrLimitReached
		}
	}
	client := s.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}

	implementable, skipped := FilterImplementable(req.Recommendations)
	if len(implementable) == 0 {
		return EnhanceResponse{
			UpdatedCV:              req.CurrentCV,
			SkippedRecommendations: skipped,
			Message:                "No applicable recommendations to apply",
		}, nil
	}

	documentJSON, err := json.Marshal(req.CurrentCV)
	if err != nil {
		return EnhanceResponse{}, fmt.Errorf("serialize cv: %w", err)
	}
	texts := make([]string, len(implementable))
	for i, rec := range implementable {
		texts[i] = strings.TrimSpace(rec.Section + ": " + rec.Recommendation)
	}

	metrics.IncEnhancementStarted()
	startedAt := time.Now().UTC()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = completionTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	original := req.CurrentCV
	completion, err := llm.CompleteWithRetry(callCtx, client,
		llm.BuildEnhancementRequest(string(documentJSON), texts),
		llm.RetryOptions{
			RequestID:   requestID,
			BackoffBase: s.Backoff,
			Gate: func(raw string) (bool, string) {
				verdict := AssessQuality(raw, original)
				return verdict.Pass, verdict.Reason
			},
		})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return EnhanceResponse{}, ErrNoCredential
		}
		return EnhanceResponse{}, fmt.Errorf("llm enhance: %w", err)
	}

	s.archiveRaw(ctx, userID, completion.Content)

	doc, fellBack, detail := mergeDocument(completion.Content, original)

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, usage.KindEnhancement, 1); err != nil {
			return EnhanceResponse{}, err
		}
	}

	resp := EnhanceResponse{
		UpdatedCV:              doc,
		AppliedRecommendations: len(implementable),
		SkippedRecommendations: skipped,
		QualityAttempt:         completion.Attempt,
	}
	switch {
	case fellBack:
		resp.UpdatedCV = original
		resp.AppliedRecommendations = 0
		resp.Message = "Enhancement could not be applied; returning the original CV (" + detail + ")"
		resp.Error = detail
		metrics.IncEnhancementFallback()
	case !completion.GatePassed:
		resp.Message = "CV enhanced with warnings: " + completion.GateReason
	default:
		resp.Message = "CV enhanced successfully"
	}

	metrics.IncEnhancementCompleted()
	metrics.ObserveEnhancementDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("enhancement.completed", map[string]any{
		"request_id":  requestID,
		"user_id":     userID,
		"attempt":     completion.Attempt,
		"gate_passed": completion.GatePassed,
		"fell_back":   fellBack,
		"applied":     resp.AppliedRecommendations,
		"skipped":     skipped,
	})
	return resp, nil
}

// archiveRaw stores the raw completion for later inspection, best-effort.
func (s *Service) archiveRaw(ctx context.Context, userID, raw string) {
	if s.Store == nil {
		return
	}
	name := "enhancement_" + uuid.NewString() + ".raw.json"
	if _, _, _, err := s.Store.Save(ctx, userID, name, strings.NewReader(raw)); err != nil {
		telemetry.Warn("enhancement.raw_archive_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
