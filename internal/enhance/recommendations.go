package enhance

import "strings"

// Instructions the model cannot act on inside a structured document:
// file-format directives and font or printing directives. Everything
// else is passed through as implementable.
var denylist = []string{
	"save as",
	"save the file",
	"save your",
	"file format",
	"export as",
	"export to",
	"font",
	"typeface",
	"print",
	"page margin",
	"paper size",
}

// FilterImplementable splits recommendations into the ones worth sending
// to the model and a count of dropped ones.
func FilterImplementable(recs []Recommendation) ([]Recommendation, int) {
	kept := make([]Recommendation, 0, len(recs))
	skipped := 0
	for _, rec := range recs {
		if isImplementable(rec.Recommendation) {
			kept = append(kept, rec)
		} else {
			skipped++
		}
	}
	return kept, skipped
}

func isImplementable(text string) bool {
	lowered := strings.ToLower(text)
	for _, pattern := range denylist {
		if strings.Contains(lowered, pattern) {
			return false
		}
	}
	return true
}
