package enhance

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"cvstudio-backend/internal/llm"
	"cvstudio-backend/internal/usage"
)

type fakeLLM struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.Request) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected extra call")
}

func newTestService(client llm.Client) *Service {
	return &Service{
		Usage:   usage.NewService(),
		LLM:     client,
		Backoff: time.Millisecond,
	}
}

func passingCandidate(t *testing.T) string {
	t.Helper()
	return buildCandidate(t,
		"Led a cross-functional team of 9 engineers, delivering a 30% performance improvement across three product lines.",
		[]string{"Drove the settlement pipeline end to end, processing millions of transactions daily and cutting incident response time in half through better tooling and alerting."},
		[]string{"Python", "Go", "SQL", "Kubernetes"},
	)
}

func applicableRecs() []Recommendation {
	return []Recommendation{
		{Section: "summary", Recommendation: "Quantify your achievements"},
		{Section: "experience", Recommendation: "Use stronger action verbs"},
	}
}

func TestEnhanceAppliesRecommendations(t *testing.T) {
	client := &fakeLLM{responses: []string{passingCandidate(t)}}
	svc := newTestService(client)

	resp, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV:       originalDocument(),
		Recommendations: applicableRecs(),
	})
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if resp.QualityAttempt != 1 {
		t.Fatalf("expected first-attempt acceptance, got %d", resp.QualityAttempt)
	}
	if resp.AppliedRecommendations != 2 || resp.SkippedRecommendations != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if resp.Error != "" {
		t.Fatalf("unexpected error field: %q", resp.Error)
	}
	if !strings.Contains(resp.UpdatedCV.PersonalInfo.Summary, "cross-functional") {
		t.Fatalf("summary not updated: %q", resp.UpdatedCV.PersonalInfo.Summary)
	}
	if len(resp.UpdatedCV.Skills) != 4 {
		t.Fatalf("skills not updated: %+v", resp.UpdatedCV.Skills)
	}
}

func TestEnhanceNeverFailsOnQualityAlone(t *testing.T) {
	// Valid JSON every time but the summary never grows.
	weak := buildCandidate(t, "Led a team.", nil, nil)
	client := &fakeLLM{responses: []string{weak, weak, weak}}
	svc := newTestService(client)

	resp, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV:       originalDocument(),
		Recommendations: applicableRecs(),
	})
	if err != nil {
		t.Fatalf("quality shortfall must not be fatal: %v", err)
	}
	if client.calls != 3 {
		t.Fatalf("expected all attempts spent, got %d", client.calls)
	}
	if resp.QualityAttempt != 3 {
		t.Fatalf("expected final attempt returned, got %d", resp.QualityAttempt)
	}
	if !strings.Contains(resp.Message, "warnings") {
		t.Fatalf("expected warning message, got %q", resp.Message)
	}
}

func TestEnhanceFallsBackToOriginalOnProse(t *testing.T) {
	prose := strings.Repeat("I am sorry, I cannot produce JSON today. ", 60)
	client := &fakeLLM{responses: []string{prose, prose, prose}}
	svc := newTestService(client)
	original := originalDocument()

	resp, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV:       original,
		Recommendations: applicableRecs(),
	})
	if err != nil {
		t.Fatalf("malformed output must not be fatal: %v", err)
	}
	if !reflect.DeepEqual(resp.UpdatedCV, original) {
		t.Fatalf("expected original document back, got %+v", resp.UpdatedCV)
	}
	if resp.Error == "" {
		t.Fatal("fallback must carry a diagnostic")
	}
	if resp.AppliedRecommendations != 0 {
		t.Fatalf("fallback cannot claim applied recommendations: %d", resp.AppliedRecommendations)
	}
}

func TestEnhanceTransportFailureIsFatal(t *testing.T) {
	transportErr := &llm.StatusError{StatusCode: 502, Body: "bad gateway"}
	client := &fakeLLM{errs: []error{transportErr, transportErr, transportErr}}
	svc := newTestService(client)

	_, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV:       originalDocument(),
		Recommendations: applicableRecs(),
	})
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls)
	}
}

func TestEnhanceSkipsUnapplicableRecommendations(t *testing.T) {
	client := &fakeLLM{}
	svc := newTestService(client)
	original := originalDocument()

	resp, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV: original,
		Recommendations: []Recommendation{
			{Recommendation: "Save as PDF"},
			{Recommendation: "Use Helvetica font throughout"},
		},
	})
	if err != nil {
		t.Fatalf("Enhance: %v", err)
	}
	if client.calls != 0 {
		t.Fatal("model must not be called without applicable recommendations")
	}
	if resp.SkippedRecommendations != 2 || resp.AppliedRecommendations != 0 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	if !reflect.DeepEqual(resp.UpdatedCV, original) {
		t.Fatal("document must be returned unchanged")
	}
}

func TestEnhanceEnforcesUsageLimit(t *testing.T) {
	client := &fakeLLM{responses: []string{passingCandidate(t)}}
	svc := newTestService(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Usage.Consume(ctx, "user-1", usage.KindEnhancement, 1); err != nil {
			t.Fatalf("seed consume %d: %v", i, err)
		}
	}

	_, err := svc.Enhance(ctx, "user-1", "req-1", EnhanceRequest{
		CurrentCV:       originalDocument(),
		Recommendations: applicableRecs(),
	})
	if !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if client.calls != 0 {
		t.Fatal("model must not be called when over the limit")
	}
}

func TestEnhanceWithoutCredentialReportsNotConfigured(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Enhance(context.Background(), "user-1", "req-1", EnhanceRequest{
		CurrentCV:       originalDocument(),
		Recommendations: applicableRecs(),
	})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}

	u, err := svc.Usage.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if u.Enhancements.Used != 0 {
		t.Fatalf("expected no quota consumed, got %d", u.Enhancements.Used)
	}
}
