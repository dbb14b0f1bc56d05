package analyses

import "testing"

func TestNormalizeOverridesLengthAnalysis(t *testing.T) {
	report := Report{
		LengthAnalysis: LengthAnalysis{
			WordCount:    9999,
			PageEstimate: 12,
			IsOptimal:    false,
		},
	}
	Normalize(&report, 420)

	if report.LengthAnalysis.WordCount != 420 {
		t.Fatalf("model word count not overridden: %d", report.LengthAnalysis.WordCount)
	}
	if report.LengthAnalysis.PageEstimate != 1 {
		t.Fatalf("expected 1 page for 420 words, got %d", report.LengthAnalysis.PageEstimate)
	}
	if !report.LengthAnalysis.IsOptimal {
		t.Fatal("420 words must be optimal")
	}
}

func TestNormalizeOptimalBounds(t *testing.T) {
	cases := []struct {
		words   int
		optimal bool
		pages   int
	}{
		{0, false, 1},
		{199, false, 1},
		{200, true, 1},
		{600, true, 2},
		{601, false, 2},
		{1001, false, 3},
	}
	for _, tc := range cases {
		var report Report
		Normalize(&report, tc.words)
		if report.LengthAnalysis.IsOptimal != tc.optimal {
			t.Errorf("words=%d: optimal=%v, want %v", tc.words, report.LengthAnalysis.IsOptimal, tc.optimal)
		}
		if report.LengthAnalysis.PageEstimate != tc.pages {
			t.Errorf("words=%d: pages=%d, want %d", tc.words, report.LengthAnalysis.PageEstimate, tc.pages)
		}
	}
}

func TestNormalizeClampsScores(t *testing.T) {
	report := Report{
		ATSCompatibility: ATSCompatibility{
			Score: 140,
			Breakdown: ATSBreakdown{
				Formatting:   -5,
				Keywords:     101,
				Structure:    100,
				Readability:  0,
				Completeness: 55,
			},
		},
	}
	Normalize(&report, 300)

	if report.ATSCompatibility.Score != 100 {
		t.Fatalf("score not clamped: %d", report.ATSCompatibility.Score)
	}
	b := report.ATSCompatibility.Breakdown
	if b.Formatting != 0 || b.Keywords != 100 || b.Structure != 100 || b.Readability != 0 || b.Completeness != 55 {
		t.Fatalf("breakdown not clamped: %+v", b)
	}
}

func TestParseReportRepairsTruncatedPayload(t *testing.T) {
	raw := "```json\n" + `{"atsCompatibility":{"score":88,"breakdown":{"formatting":90,"keywords":85,"structure":80,"readability":95,"completeness":70},"issues":["dense tables"]},"contentQuality":{"grammarIssues":[],"weakVerbs":[{"verb":"helped","sugg`

	report, err := ParseReport(raw)
	if err != nil {
		t.Fatalf("ParseReport: %v", err)
	}
	if report.ATSCompatibility.Score != 88 {
		t.Fatalf("score lost in repair: %+v", report.ATSCompatibility)
	}
	if len(report.ATSCompatibility.Issues) != 1 || report.ATSCompatibility.Issues[0] != "dense tables" {
		t.Fatalf("issues lost in repair: %+v", report.ATSCompatibility.Issues)
	}
}

func TestParseReportRejectsNonJSON(t *testing.T) {
	if _, err := ParseReport("I could not produce a report today."); err == nil {
		t.Fatal("expected parse failure")
	}
}
