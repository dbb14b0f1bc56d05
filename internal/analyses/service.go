package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvstudio-backend/internal/cv"
	"cvstudio-backend/internal/llm"
	"cvstudio-backend/internal/shared/metrics"
	"cvstudio-backend/internal/shared/storage/object"
	"cvstudio-backend/internal/shared/telemetry"
	"cvstudio-backend/internal/usage"
)

// AnalyzeRequest is the analysis endpoint payload.
type AnalyzeRequest struct {
	CVData         cv.Document `json:"cvData" binding:"required"`
	AnalysisTypes  []string    `json:"analysisTypes"`
	JobDescription string      `json:"jobDescription"`
	Industry       string      `json:"industry"`
}

// AnalyzeResponse is the analysis endpoint envelope.
type AnalyzeResponse struct {
	Success bool    `json:"success"`
	Results *Report `json:"results,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Service runs CV analyses against the model and keeps user history.
type Service struct {
	Repo     Repo
	Usage    *usage.Service
	Store    object.ObjectStore
	LLM      llm.Client
	Provider string
	Model    string

	// Backoff overrides the retry backoff base; zero keeps the default.
	Backoff time.Duration
}

// Analyze extracts the CV text, requests a completion with transport
// retries, normalizes the report and persists it. The report's length
// analysis always carries the locally computed word count.
func (s *Service) Analyze(ctx context.Context, userID, requestID string, req AnalyzeRequest) (Analysis, error) {
	text := cv.ExtractText(req.CVData)
	if len(strings.TrimSpace(text)) < minExtractedLen {
		return Analysis{}, ErrCVTooShort
	}

	if s.Usage != nil {
		ok, _, err := s.Usage.CanConsume(ctx, userID, usage.KindAnalysis, 1)
		if err != nil {
			return Analysis{}, err
		}
		if !ok {
			return Analysis{}, usage.ErrLimitReached
		}
	}
	client := s.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}

	metrics.IncAnalysisStarted()
	startedAt := time.Now().UTC()
	analysisID := uuid.NewString()

	completion, err := llm.CompleteWithRetry(ctx, client,
		llm.BuildAnalysisRequest(text, req.JobDescription, req.Industry, req.AnalysisTypes),
		llm.RetryOptions{RequestID: requestID, BackoffBase: s.Backoff})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return Analysis{}, ErrNoCredential
		}
		metrics.IncAnalysisFailed()
		s.logStatus(requestID, userID, analysisID, "failed", startedAt)
		return Analysis{}, fmt.Errorf("llm analyze: %w", err)
	}

	rawKey := s.archiveRaw(ctx, userID, analysisID, completion.Content)

	report, err := ParseReport(completion.Content)
	if err != nil {
		metrics.IncAnalysisFailed()
		s.logStatus(requestID, userID, analysisID, "failed", startedAt)
		return Analysis{}, err
	}
	Normalize(&report, cv.WordCount(text))

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, usage.KindAnalysis, 1); err != nil {
			return Analysis{}, err
		}
	}

	analysis := Analysis{
		ID:             analysisID,
		UserID:         userID,
		JobDescription: req.JobDescription,
		Industry:       req.Industry,
		AnalysisTypes:  req.AnalysisTypes,
		Provider:       s.Provider,
		Model:          s.Model,
		WordCount:      report.LengthAnalysis.WordCount,
		Attempts:       completion.Attempt,
		Report:         &report,
		RawKey:         rawKey,
		CreatedAt:      time.Now().UTC(),
	}
	if s.Repo != nil {
		if err := s.Repo.Create(ctx, analysis); err != nil {
			metrics.IncAnalysisFailed()
			return Analysis{}, fmt.Errorf("persist analysis: %w", err)
		}
	}

	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)
	s.logStatus(requestID, userID, analysisID, "completed", startedAt)
	return analysis, nil
}

// Get returns an analysis owned by the user.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, errors.New("analysisID is required")
	}
	return s.Repo.GetByID(ctx, userID, analysisID)
}

// List returns a user's analyses ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// archiveRaw stores the raw completion for later inspection. Archival is
// best-effort: a storage failure must not fail the analysis.
func (s *Service) archiveRaw(ctx context.Context, userID, analysisID, raw string) string {
	if s.Store == nil {
		return ""
	}
	key, _, _, err := s.Store.Save(ctx, userID, "analysis_"+analysisID+".raw.json", strings.NewReader(raw))
	if err != nil {
		telemetry.Warn("analysis.raw_archive_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       sanitizeError(err),
		})
		return ""
	}
	return key
}

func (s *Service) logStatus(requestID, userID, analysisID, status string, startedAt time.Time) {
	telemetry.Info("analysis.status", map[string]any{
		"request_id":  requestID,
		"user_id":     userID,
		"analysis_id": analysisID,
		"status":      status,
		"duration_ms": float64(time.Since(startedAt).Microseconds()) / 1000.0,
	})
}

func classifyFailure(err error) string {
	if err == nil {
		return ErrorCodeInternal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeLLMTimeout
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return ErrorCodeLLMTimeout
	case strings.Contains(msg, "llm output invalid"):
		return ErrorCodeLLMSchemaMismatch
	case strings.Contains(msg, "persist analysis"):
		return ErrorCodeStorage
	case llm.IsTransportError(err):
		return ErrorCodeLLMTimeout
	}
	return ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
