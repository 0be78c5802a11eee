package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeJSON unmarshals a model answer into v. Models often wrap JSON in
// markdown fences or add a sentence around it; the outermost JSON object or
// array is extracted first.
func DecodeJSON(raw string, v any) error {
	s := StripFences(raw)
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	if inner, ok := outermostJSON(s); ok {
		if err := json.Unmarshal([]byte(inner), v); err == nil {
			return nil
		}
	}
	return fmt.Errorf("AI response is not valid JSON: %.120q", s)
}

// StripFences removes a leading ```lang line and a trailing ``` fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func outermostJSON(s string) (string, bool) {
	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return "", false
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
