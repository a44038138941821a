package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// StripFences removes a surrounding Markdown code fence, with or without a
// language tag.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeList parses model output that should be a JSON array of T. It
// accepts a fenced block, a single object (wrapped into a list) and one
// object per line, in that order.
func DecodeList[T any](raw string) ([]T, error) {
	body := StripFences(raw)
	if body == "" {
		return nil, errors.New("empty model output")
	}
	var list []T
	if err := json.Unmarshal([]byte(body), &list); err == nil {
		return list, nil
	}
	var one T
	if strings.HasPrefix(body, "{") {
		if err := json.Unmarshal([]byte(body), &one); err == nil {
			return []T{one}, nil
		}
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ","))
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(line), &item); err == nil {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return nil, errors.New("no JSON objects in model output")
	}
	return list, nil
}
