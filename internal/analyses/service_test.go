package analyses

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"cvstudio-backend/internal/cv"
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

func testDocument(t *testing.T) cv.Document {
	t.Helper()
	return cv.Document{
		PersonalInfo: cv.PersonalInfo{
			Name:    "Ada Lovelace",
			Title:   "Backend Engineer",
			Email:   "ada@example.com",
			Summary: "Backend engineer with eight years of experience building payment systems and distributed services.",
		},
		Experience: []cv.Experience{
			{
				ID:          "exp-1",
				Title:       "Engineer",
				Company:     "Acme",
				StartDate:   "2018-01",
				Current:     true,
				Description: "Built and operated the settlement pipeline processing millions of daily transactions.",
			},
		},
		Skills: []string{"Go", "PostgreSQL", "AWS"},
	}
}

func newTestService(client llm.Client) *Service {
	return &Service{
		Repo:     NewMemoryRepo(),
		Usage:    usage.NewService(),
		LLM:      client,
		Provider: "openai",
		Model:    "gpt-4o-mini",
		Backoff:  time.Millisecond,
	}
}

const modelReport = `{
  "atsCompatibility": {"score": 82, "breakdown": {"formatting": 80, "keywords": 75, "structure": 85, "readability": 90, "completeness": 70}, "issues": []},
  "contentQuality": {"grammarIssues": [], "weakVerbs": [], "missingQuantification": [], "passiveVoice": [], "clarity": {"avgSentenceLength": 18.2}},
  "lengthAnalysis": {"wordCount": 9999, "pageEstimate": 20, "isOptimal": true, "recommendation": "trim"},
  "industryFit": {"matchedKeywords": ["Go"], "missingKeywords": ["Kubernetes"], "recommendations": ["mention container orchestration"]}
}`

func TestAnalyzeOverridesModelWordCount(t *testing.T) {
	client := &fakeLLM{responses: []string{modelReport}}
	svc := newTestService(client)
	doc := testDocument(t)

	analysis, err := svc.Analyze(context.Background(), "user-1", "req-1", AnalyzeRequest{CVData: doc})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	want := cv.WordCount(cv.ExtractText(doc))
	got := analysis.Report.LengthAnalysis
	if got.WordCount != want {
		t.Fatalf("word count not recomputed: got %d want %d", got.WordCount, want)
	}
	if got.PageEstimate != 1 {
		t.Fatalf("page estimate not recomputed: %d", got.PageEstimate)
	}
	if got.IsOptimal {
		t.Fatalf("short CV reported optimal: %+v", got)
	}
	if got.Recommendation != "trim" {
		t.Fatalf("model recommendation lost: %+v", got)
	}
	if analysis.Report.IndustryFit == nil || analysis.Report.IndustryFit.MissingKeywords[0] != "Kubernetes" {
		t.Fatalf("industry fit lost: %+v", analysis.Report.IndustryFit)
	}
}

func TestAnalyzeRejectsShortCV(t *testing.T) {
	svc := newTestService(&fakeLLM{})
	_, err := svc.Analyze(context.Background(), "user-1", "req-1", AnalyzeRequest{
		CVData: cv.Document{PersonalInfo: cv.PersonalInfo{Name: "Ada"}},
	})
	if !errors.Is(err, ErrCVTooShort) {
		t.Fatalf("expected ErrCVTooShort, got %v", err)
	}
}

func TestAnalyzeEnforcesUsageLimit(t *testing.T) {
	client := &fakeLLM{responses: []string{modelReport}}
	svc := newTestService(client)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if _, err := svc.Usage.Consume(ctx, "user-1", usage.KindAnalysis, 1); err != nil {
			t.Fatalf("seed consume %d: %v", i, err)
		}
	}

	_, err := svc.Analyze(ctx, "user-1", "req-1", AnalyzeRequest{CVData: testDocument(t)})
	if !errors.Is(err, usage.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if client.calls != 0 {
		t.Fatal("model must not be called when over the limit")
	}
}

func TestAnalyzeRecoversFromTruncatedOutput(t *testing.T) {
	truncated := strings.TrimSuffix(modelReport, "\n}")
	truncated = truncated[:strings.LastIndex(truncated, `"industryFit"`)-1]
	client := &fakeLLM{responses: []string{truncated}}
	svc := newTestService(client)

	analysis, err := svc.Analyze(context.Background(), "user-1", "req-1", AnalyzeRequest{CVData: testDocument(t)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis.Report.ATSCompatibility.Score != 82 {
		t.Fatalf("repaired report lost ATS score: %+v", analysis.Report.ATSCompatibility)
	}
}

func TestAnalyzePropagatesExhaustedTransportFailure(t *testing.T) {
	transportErr := &llm.StatusError{StatusCode: 503, Body: "overloaded"}
	client := &fakeLLM{errs: []error{transportErr, transportErr, transportErr}}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), "user-1", "req-1", AnalyzeRequest{CVData: testDocument(t)})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var statusErr *llm.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if client.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", client.calls)
	}
}

func TestAnalyzePersistsHistory(t *testing.T) {
	client := &fakeLLM{responses: []string{modelReport}}
	svc := newTestService(client)
	ctx := context.Background()

	created, err := svc.Analyze(ctx, "user-1", "req-1", AnalyzeRequest{CVData: testDocument(t)})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	listed, err := svc.List(ctx, "user-1", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("history not persisted: %+v", listed)
	}

	if _, err := svc.Get(ctx, "other-user", created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestAnalyzeWithoutCredentialReportsNotConfigured(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.Analyze(context.Background(), "user-1", "req-1", AnalyzeRequest{CVData: testDocument(t)})
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}

	u, err := svc.Usage.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("usage get: %v", err)
	}
	if u.Analyses.Used != 0 {
		t.Fatalf("expected no quota consumed, got %d", u.Analyses.Used)
	}
}

func TestClassifyFailure(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, ErrorCodeLLMTimeout},
		{"timeout text", errors.New("Client.Timeout exceeded"), ErrorCodeLLMTimeout},
		{"schema mismatch", errors.New("llm output invalid: no JSON object in completion"), ErrorCodeLLMSchemaMismatch},
		{"storage", errors.New("persist analysis: connection lost"), ErrorCodeStorage},
		{"transport", &llm.StatusError{StatusCode: 502, Body: "bad gateway"}, ErrorCodeLLMTimeout},
		{"other", errors.New("something else"), ErrorCodeInternal},
	}
	for _, tc := range cases {
		if got := classifyFailure(tc.err); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
