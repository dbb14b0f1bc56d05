package enhance

import (
	"encoding/json"

	"cvstudio-backend/internal/cv"
)

// Product-tuned thresholds. Carried over as-is; do not re-derive.
const (
	minRawLength         = 2000
	minSummaryGrowth     = 50
	minDescriptionGrowth = 100
)

// Verdict is the quality gate outcome for one raw completion.
type Verdict struct {
	Pass   bool
	Reason string
}

// AssessQuality judges a raw enhancement completion against the original
// document. Checks run in order and short-circuit on the first failure:
// raw length, JSON validity, summary growth, per-entry description
// growth, skill-count growth. The candidate is read tolerantly; a
// malformed section counts as no content rather than a parse error.
func AssessQuality(raw string, original cv.Document) Verdict {
	if len(raw) < minRawLength {
		return Verdict{Reason: "Response too short"}
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Verdict{Reason: "Invalid JSON"}
	}
	cand := newCandidate(parsed)

	origSummary := len(original.PersonalInfo.Summary)
	newSummary := len(cand.summary())
	if origSummary == 0 {
		if newSummary < minSummaryGrowth {
			return Verdict{Reason: "Summary not sufficiently expanded"}
		}
	} else if newSummary <= origSummary+minSummaryGrowth {
		return Verdict{Reason: "Summary not sufficiently expanded"}
	}

	if len(original.Experience) > 0 {
		descriptions := cand.experienceDescriptions()
		grown := false
		for i, exp := range original.Experience {
			if i >= len(descriptions) {
				break
			}
			if len(descriptions[i]) > len(exp.Description)+minDescriptionGrowth {
				grown = true
				break
			}
		}
		if !grown {
			return Verdict{Reason: "Experience descriptions not sufficiently expanded"}
		}
	}

	if len(original.Skills) > 0 && cand.skillCount() <= len(original.Skills) {
		return Verdict{Reason: "Skill list not expanded"}
	}

	return Verdict{Pass: true}
}

// candidate reads fields out of a loosely parsed completion. The model
// may return any shape for any key; absent or mistyped sections yield
// zero values.
type candidate struct {
	fields map[string]json.RawMessage
}

func newCandidate(fields map[string]json.RawMessage) candidate {
	return candidate{fields: fields}
}

func (c candidate) summary() string {
	raw, ok := c.fields["personalInfo"]
	if !ok {
		return ""
	}
	var info struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return ""
	}
	return info.Summary
}

func (c candidate) experienceDescriptions() []string {
	raw, ok := c.fields["experience"]
	if !ok {
		return nil
	}
	var entries []struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	out := make([]string, len(entries))
	for i, entry := range entries {
		out[i] = entry.Description
	}
	return out
}

func (c candidate) skillCount() int {
	raw, ok := c.fields["skills"]
	if !ok {
		return 0
	}
	var skills []any
	if err := json.Unmarshal(raw, &skills); err != nil {
		return 0
	}
	return len(skills)
}
