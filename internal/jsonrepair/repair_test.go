package jsonrepair

import (
	"encoding/json"
	"strings"
	"testing"
)

func mustParse(t *testing.T, repaired string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		t.Fatalf("repaired output does not parse: %v\n%s", err, repaired)
	}
	return out
}

func TestRepairWellFormed(t *testing.T) {
	in := `{"summary": "fine", "score": 87}`
	if got := Repair(in); got != in {
		t.Fatalf("well-formed input changed: %q", got)
	}
}

func TestRepairStripsFencesAndPreamble(t *testing.T) {
	in := "Here is the result:\n```json\n{\"a\": 1}\n```"
	got := Repair(in)
	obj := mustParse(t, got)
	if obj["a"] != float64(1) {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestRepairDiscardsTrailingProse(t *testing.T) {
	got := Repair(`{"a": 1} I hope this helps!`)
	if got != `{"a": 1}` {
		t.Fatalf("trailing prose kept: %q", got)
	}
}

func TestRepairTruncatedMidString(t *testing.T) {
	got := Repair(`{"name": "Ada", "skills": ["Python", "Go`)
	obj := mustParse(t, got)
	if obj["name"] != "Ada" {
		t.Fatalf("expected name retained, got %v", obj)
	}
	if _, ok := obj["skills"]; ok {
		t.Fatalf("truncated skills field should be dropped: %v", obj)
	}
}

func TestRepairTruncatedNestedObject(t *testing.T) {
	got := Repair(`{"outer": {"kept": 1, "partial": {"x"`)
	obj := mustParse(t, got)
	outer, ok := obj["outer"].(map[string]any)
	if !ok {
		t.Fatalf("outer object lost: %v", obj)
	}
	if outer["kept"] != float64(1) {
		t.Fatalf("kept field lost: %v", outer)
	}
}

func TestRepairEscapedQuotes(t *testing.T) {
	in := `{"quote": "she said \"go\"", "brace": "look {at} this"}`
	got := Repair(in)
	obj := mustParse(t, got)
	if obj["quote"] != `she said "go"` || obj["brace"] != "look {at} this" {
		t.Fatalf("string contents mangled: %v", obj)
	}
}

func TestRepairBracesInsideStringsDoNotCount(t *testing.T) {
	got := Repair(`{"a": "{{{", "b": "}}}"`)
	obj := mustParse(t, got)
	if obj["a"] != "{{{" {
		t.Fatalf("unexpected object: %v", obj)
	}
}

func TestRepairNoJSONAtAll(t *testing.T) {
	for _, in := range []string{"", "plain prose, nothing else", "]]]"} {
		got := Repair(in)
		mustParse(t, got)
	}
}

func TestRepairTruncationRoundTrip(t *testing.T) {
	full := `{"summary": "Led a team, shipped {things}", "score": 87, "details": {"grammar": ["a", "b"], "verbs": 3}, "skills": ["Go", "SQL"], "ok": true}`
	if !json.Valid([]byte(full)) {
		t.Fatal("fixture must be valid JSON")
	}
	var reference map[string]any
	if err := json.Unmarshal([]byte(full), &reference); err != nil {
		t.Fatal(err)
	}

	// Any truncation past the first key's opening quote must repair into
	// a parseable object whose keys are a subset of the original's.
	firstKey := strings.IndexByte(full, '"')
	for cut := firstKey + 1; cut <= len(full); cut++ {
		repaired := Repair(full[:cut])
		var obj map[string]any
		if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
			t.Fatalf("cut=%d: repaired output unparseable: %v\n%s", cut, err, repaired)
		}
		for key := range obj {
			if _, ok := reference[key]; !ok {
				t.Fatalf("cut=%d: invented key %q", cut, key)
			}
		}
	}
}

func TestRepairBraceBalance(t *testing.T) {
	inputs := []string{
		`{"a": {"b": {"c": 1`,
		`{"a": 1, "b": {"c": "unterminated`,
		"```json\n{\"a\": [1, 2, 3\n",
		`{"a": "\"}{\"", "b":`,
	}
	for _, in := range inputs {
		repaired := Repair(in)
		depth := 0
		state := stateNormal
		for i := 0; i < len(repaired); i++ {
			c := repaired[i]
			switch state {
			case stateEscaped:
				state = stateInString
			case stateInString:
				if c == '\\' {
					state = stateEscaped
				} else if c == '"' {
					state = stateNormal
				}
			default:
				if c == '"' {
					state = stateInString
				} else if c == '{' {
					depth++
				} else if c == '}' {
					depth--
				}
			}
		}
		if depth != 0 {
			t.Fatalf("unbalanced braces in %q -> %q", in, repaired)
		}
	}
}
