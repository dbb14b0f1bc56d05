package enhance

import (
	"bytes"
	"encoding/json"

	"cvstudio-backend/internal/cv"
	"cvstudio-backend/internal/jsonrepair"
)

// mergeDocument turns a raw completion into the document returned to the
// caller. An unparseable completion or one without personalInfo falls
// back to the original document wholesale; a missing or non-array
// experience, education or skills section is individually replaced by
// the original's rather than failing the whole request. The returned
// detail explains a fallback for the response message.
func mergeDocument(raw string, original cv.Document) (doc cv.Document, fellBack bool, detail string) {
	parsed, ok := parseObject(raw)
	if !ok {
		return original, true, "model output could not be parsed as JSON"
	}
	if _, present := parsed["personalInfo"]; !present {
		return original, true, "model output missing personalInfo"
	}

	if !isJSONArray(parsed["experience"]) {
		parsed["experience"] = mustMarshal(original.Experience)
	}
	if !isJSONArray(parsed["education"]) {
		parsed["education"] = mustMarshal(original.Education)
	}
	if !isJSONArray(parsed["skills"]) {
		parsed["skills"] = mustMarshal(original.Skills)
	}
	if !isJSONArray(parsed["certifications"]) {
		parsed["certifications"] = mustMarshal(original.Certifications)
	}

	payload, err := json.Marshal(parsed)
	if err != nil {
		return original, true, "model output could not be reassembled"
	}
	if err := json.Unmarshal(payload, &doc); err != nil {
		return original, true, "model output shape is incompatible"
	}
	return doc, false, ""
}

// parseObject attempts a direct parse first and runs the repair scanner
// only when that fails.
func parseObject(raw string) (map[string]json.RawMessage, bool) {
	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, true
	}
	repaired := jsonrepair.Repair(raw)
	if err := json.Unmarshal([]byte(repaired), &parsed); err != nil {
		return nil, false
	}
	return parsed, true
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func mustMarshal(value any) json.RawMessage {
	payload, err := json.Marshal(value)
	if err != nil {
		return json.RawMessage("null")
	}
	return payload
}
