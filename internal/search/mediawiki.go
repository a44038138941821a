package search

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/fetch"
)

// DefaultAPIURL is the English Wikipedia action API.
const DefaultAPIURL = "https://en.wikipedia.org/w/api.php"

// MediaWiki implements Provider against the action API list=search module,
// asking for relevance ordering and no snippet properties.
type MediaWiki struct {
	APIURL string
	Client *fetch.Client
}

func (m *MediaWiki) Name() string { return "mediawiki" }

func (m *MediaWiki) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = 10
	}
	endpoint := m.APIURL
	if endpoint == "" {
		endpoint = DefaultAPIURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("srlimit", strconv.Itoa(limit))
	q.Set("srsort", "relevance")
	q.Set("srprop", "")
	u.RawQuery = q.Encode()

	client := m.Client
	if client == nil {
		client = &fetch.Client{}
	}
	var sr searchResponse
	if err := client.GetJSON(ctx, u.String(), &sr); err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		title := strings.TrimSpace(hit.Title)
		if title == "" {
			continue
		}
		out = append(out, Result{Title: title, PageID: hit.PageID, Source: m.Name()})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title  string `json:"title"`
			PageID int64  `json:"pageid"`
		} `json:"search"`
	} `json:"query"`
}
