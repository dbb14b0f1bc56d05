package analyses

import "time"

// Analysis is one completed analysis run kept for the user's history.
type Analysis struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	JobDescription string    `json:"jobDescription,omitempty"`
	Industry       string    `json:"industry,omitempty"`
	AnalysisTypes  []string  `json:"analysisTypes,omitempty"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	WordCount      int       `json:"wordCount"`
	Attempts       int       `json:"attempts"`
	Report         *Report   `json:"report,omitempty"`
	RawKey         string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Report is the structured analysis output returned to the caller.
type Report struct {
	ATSCompatibility ATSCompatibility `json:"atsCompatibility"`
	ContentQuality   ContentQuality   `json:"contentQuality"`
	LengthAnalysis   LengthAnalysis   `json:"lengthAnalysis"`
	IndustryFit      *IndustryFit     `json:"industryFit,omitempty"`
}

type ATSCompatibility struct {
	Score     int          `json:"score"`
	Breakdown ATSBreakdown `json:"breakdown"`
	Issues    []string     `json:"issues"`
}

type ATSBreakdown struct {
	Formatting   int `json:"formatting"`
	Keywords     int `json:"keywords"`
	Structure    int `json:"structure"`
	Readability  int `json:"readability"`
	Completeness int `json:"completeness"`
}

type ContentQuality struct {
	GrammarIssues         []GrammarIssue `json:"grammarIssues"`
	WeakVerbs             []WeakVerb     `json:"weakVerbs"`
	MissingQuantification []string       `json:"missingQuantification"`
	PassiveVoice          []string       `json:"passiveVoice"`
	Clarity               Clarity        `json:"clarity"`
}

type GrammarIssue struct {
	Text       string `json:"text"`
	Suggestion string `json:"suggestion,omitempty"`
}

type WeakVerb struct {
	Verb       string `json:"verb"`
	Suggestion string `json:"suggestion,omitempty"`
}

type Clarity struct {
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	ReadabilityNote   string  `json:"readabilityNote,omitempty"`
}

type LengthAnalysis struct {
	WordCount      int    `json:"wordCount"`
	PageEstimate   int    `json:"pageEstimate"`
	IsOptimal      bool   `json:"isOptimal"`
	Recommendation string `json:"recommendation,omitempty"`
}

type IndustryFit struct {
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
	Recommendations []string `json:"recommendations"`
}
