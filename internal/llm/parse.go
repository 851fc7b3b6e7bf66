package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ParseJSON decodes a model answer into an object. A fenced ``` block wins
// over the surrounding text. Anything that does not decode to a JSON object
// comes back as {"raw": text}.
func ParseJSON(text string) map[string]any {
	candidate := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &out); err != nil || out == nil {
		return map[string]any{"raw": text}
	}
	return out
}
