package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider serves search results from a local JSON file for offline runs
// and tests. The file is either an array of {"title": "..."} objects, used for
// every query, or an object mapping query -> array of such objects.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []Result
	if err := json.Unmarshal(b, &raw); err != nil {
		var byQuery map[string][]Result
		if jerr := json.Unmarshal(b, &byQuery); jerr != nil {
			return nil, err
		}
		raw = byQuery[query]
		if raw == nil {
			raw = byQuery[strings.ToLower(strings.TrimSpace(query))]
		}
	}
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r.Title) == "" {
			continue
		}
		r.Source = f.Name()
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
