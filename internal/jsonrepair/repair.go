// Package jsonrepair recovers parseable JSON from raw model output that
// may be fenced, prefixed with prose, or truncated mid-completion.
package jsonrepair

import "strings"

// scanState tracks where the scanner is relative to string literals.
type scanState int

const (
	stateNormal scanState = iota
	stateInString
	stateEscaped
)

// Repair returns a best-effort parseable JSON object extracted from raw.
// It is total: any input yields a string, worst case "{}". The caller is
// responsible for attempting a standard parse on the result and treating
// a failure there as a failed attempt.
//
// Strategy: strip code fences and preamble, then scan forward tracking
// string state and container nesting. If the object closes, return it as
// is. If the text ran out mid-object, cut back to the last object-level
// comma or opening brace outside any string and close every container
// still open at that point.
func Repair(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "{}"
	}
	text = text[start:]

	state := stateNormal
	var stack []byte

	// Last position where a cut leaves a structurally complete prefix:
	// an object-level comma (exclusive) or an opening brace (inclusive).
	cutEnd := -1
	var cutStack []byte

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateEscaped:
			state = stateInString
		case stateInString:
			switch c {
			case '\\':
				state = stateEscaped
			case '"':
				state = stateNormal
			}
		default:
			switch c {
			case '"':
				state = stateInString
			case '{':
				stack = append(stack, '{')
				cutEnd = i + 1
				cutStack = append(cutStack[:0], stack...)
			case '[':
				stack = append(stack, '[')
			case '}':
				if len(stack) > 0 && stack[len(stack)-1] == '{' {
					stack = stack[:len(stack)-1]
				}
				if len(stack) == 0 {
					return text[:i+1]
				}
			case ']':
				if len(stack) > 0 && stack[len(stack)-1] == '[' {
					stack = stack[:len(stack)-1]
				}
			case ',':
				if len(stack) > 0 && stack[len(stack)-1] == '{' {
					cutEnd = i
					cutStack = append(cutStack[:0], stack...)
				}
			}
		}
	}

	// Truncated completion: cut to the last complete field and close
	// whatever was open there.
	if cutEnd < 0 {
		return "{}"
	}
	repaired := strings.TrimRight(text[:cutEnd], " \t\r\n")
	repaired = strings.TrimRight(repaired, ",")
	repaired = strings.TrimRight(repaired, " \t\r\n")

	var closers strings.Builder
	for i := len(cutStack) - 1; i >= 0; i-- {
		if cutStack[i] == '{' {
			closers.WriteByte('}')
		} else {
			closers.WriteByte(']')
		}
	}
	return repaired + closers.String()
}
