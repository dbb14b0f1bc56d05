package llm

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/enhancement.txt
	enhancementTemplate string
)

const (
	systemPromptAnalysis    = "You are a CV analysis engine. Respond with JSON only. Output must match the schema exactly."
	systemPromptEnhancement = "You are a CV enhancement engine. Respond with JSON only. Return the complete updated CV document."

	completionTokenCeiling = 4096
)

// BuildAnalysisRequest assembles the completion request for the analysis
// path from the extracted CV text.
func BuildAnalysisRequest(cvText, jobDescription, industry string, analysisTypes []string) Request {
	types := strings.Join(analysisTypes, ", ")
	if types == "" {
		types = "full"
	}
	provided := "true"
	if strings.TrimSpace(jobDescription) == "" {
		provided = "false"
	}
	replacer := strings.NewReplacer(
		"{{ANALYSIS_TYPES}}", types,
		"{{JOB_DESCRIPTION_PROVIDED}}", provided,
		"{{INDUSTRY}}", orNA(industry),
	)

	user := fmt.Sprintf("%s\n\nCV Text:\n%s\n\nJob Description:\n%s",
		replacer.Replace(analysisTemplate), cvText, orNA(jobDescription))

	return Request{
		System:    systemPromptAnalysis,
		User:      user,
		MaxTokens: completionTokenCeiling,
	}
}

// BuildEnhancementRequest assembles the completion request for the
// enhancement path. documentJSON is the serialized current CV and
// recommendations are the pre-filtered reviewer instructions.
func BuildEnhancementRequest(documentJSON string, recommendations []string) Request {
	var b strings.Builder
	b.WriteString(enhancementTemplate)
	b.WriteString("\nRecommendations:\n")
	for i, rec := range recommendations {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\nCurrent CV JSON:\n")
	b.WriteString(documentJSON)

	return Request{
		System:     systemPromptEnhancement,
		User:       b.String(),
		MaxTokens:  completionTokenCeiling,
		JSONObject: true,
	}
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}
