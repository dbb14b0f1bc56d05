package analyses

import (
	"encoding/json"
	"fmt"

	"cvstudio-backend/internal/jsonrepair"
)

const (
	wordsPerPage    = 500
	optimalWordsMin = 200
	optimalWordsMax = 600
	minExtractedLen = 50
)

// ParseReport decodes a raw completion into a Report. A direct parse is
// tried first; if the payload is damaged it is run through the repair
// scanner and parsed again before giving up.
func ParseReport(raw string) (Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err == nil {
		return report, nil
	}
	repaired := jsonrepair.Repair(raw)
	if repaired == "{}" {
		return Report{}, fmt.Errorf("llm output invalid: no JSON object in completion")
	}
	if err := json.Unmarshal([]byte(repaired), &report); err != nil {
		return Report{}, fmt.Errorf("llm output invalid: %w", err)
	}
	return report, nil
}

// Normalize enforces the report invariants before it leaves the service:
// every score is clamped to [0, 100] and the length analysis is replaced
// with locally computed values. The model's word count is never trusted.
func Normalize(report *Report, wordCount int) {
	report.ATSCompatibility.Score = clampScore(report.ATSCompatibility.Score)
	b := &report.ATSCompatibility.Breakdown
	b.Formatting = clampScore(b.Formatting)
	b.Keywords = clampScore(b.Keywords)
	b.Structure = clampScore(b.Structure)
	b.Readability = clampScore(b.Readability)
	b.Completeness = clampScore(b.Completeness)

	report.LengthAnalysis.WordCount = wordCount
	report.LengthAnalysis.PageEstimate = pageEstimate(wordCount)
	report.LengthAnalysis.IsOptimal = wordCount >= optimalWordsMin && wordCount <= optimalWordsMax
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func pageEstimate(wordCount int) int {
	pages := (wordCount + wordsPerPage - 1) / wordsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}
