package search

import (
	"context"
	"errors"
)

// Result is a single search hit. Only Title is needed downstream; the rest
// is kept for observability.
type Result struct {
	Title  string `json:"title"`
	PageID int64  `json:"pageid,omitempty"`
	Source string `json:"-"` // provider name
}

// Provider is a minimal interface for search backends.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// ErrEmptyQuery is returned when a provider is asked to search for nothing.
var ErrEmptyQuery = errors.New("empty search query")

// Titles projects results onto their titles, preserving order.
func Titles(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Title)
	}
	return out
}
