package cv

import (
	"regexp"
	"strings"
)

var nonWordRunes = regexp.MustCompile(`[^\w\s]`)

// ExtractText flattens a Document into a single plain-text blob with
// section markers, in the order the builder renders them. Absent fields
// contribute nothing. The output feeds the model prompt and WordCount.
func ExtractText(doc Document) string {
	var b strings.Builder

	writeJoined(&b, " ",
		doc.PersonalInfo.Name,
		doc.PersonalInfo.Title,
		doc.PersonalInfo.Email,
		doc.PersonalInfo.Phone,
		doc.PersonalInfo.Location,
		doc.PersonalInfo.Summary,
	)

	if len(doc.Experience) > 0 {
		b.WriteString("\nExperience:\n")
		for _, exp := range doc.Experience {
			start := orPlaceholder(exp.StartDate, "Start")
			end := orPlaceholder(exp.EndDate, "End")
			if exp.Current {
				end = "Present"
			}
			writeJoined(&b, " ", exp.Title, exp.Company, exp.Location, start, end, exp.Description)
			b.WriteString("\n")
		}
	}

	if len(doc.Education) > 0 {
		b.WriteString("\nEducation:\n")
		for _, edu := range doc.Education {
			start := orPlaceholder(edu.StartDate, "Start")
			end := orPlaceholder(edu.EndDate, "End")
			if edu.Current {
				end = "Present"
			}
			writeJoined(&b, " ", edu.Degree, edu.Institution, edu.Location, start, end, edu.Description)
			b.WriteString("\n")
		}
	}

	if len(doc.Certifications) > 0 {
		b.WriteString("\nCertifications:\n")
		for _, cert := range doc.Certifications {
			writeJoined(&b, " ", cert.Name, cert.Issuer, cert.Date, cert.Description)
			b.WriteString("\n")
		}
	}

	if len(doc.Skills) > 0 {
		b.WriteString("\nSkills: ")
		b.WriteString(strings.Join(doc.Skills, ", "))
	}

	return strings.TrimSpace(b.String())
}

// WordCount implements the canonical tokenization: punctuation becomes
// whitespace, the text splits on whitespace, and empty tokens are dropped.
// The same count gates the minimum-content check and is the word count
// reported in every analysis, regardless of what the model said.
func WordCount(text string) int {
	cleaned := nonWordRunes.ReplaceAllString(text, " ")
	return len(strings.Fields(cleaned))
}

func writeJoined(b *strings.Builder, sep string, parts ...string) {
	first := true
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if !first {
			b.WriteString(sep)
		}
		b.WriteString(p)
		first = false
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
