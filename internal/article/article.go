// Package article fetches full article content for ranked titles and
// orders the resulting documents.
package article

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/fetch"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/pageviews"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/search"
)

// Document is an article as fetched. Text is the plain-text extract exactly
// as the API returned it; every offset computed later refers to it, so it is
// never re-encoded or whitespace-normalized.
type Document struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Requested is the ranked title the document was fetched for; it differs
	// from Title when the API followed a redirect or normalized the title.
	Requested string   `json:"requested,omitempty"`
	URL       string   `json:"url"`
	Summary   string   `json:"summary"`
	Text      string   `json:"content"`
	ImageURL  string   `json:"image,omitempty"`
	Views     *int64   `json:"views"` // nil when the popularity sample was absent
	Score     int      `json:"score"`
	Topics    []string `json:"topics"`
}

// Fetcher retrieves documents through the action API, one request per title.
type Fetcher struct {
	Client        *fetch.Client
	APIURL        string
	MaxConcurrent int
}

// Fetch returns one entry per title in the same order; an entry is nil when
// the title is missing, unresolvable or its request failed.
func (f *Fetcher) Fetch(ctx context.Context, titles []string) []*Document {
	docs := make([]*Document, len(titles))
	g, gctx := errgroup.WithContext(ctx)
	if f.MaxConcurrent > 0 {
		g.SetLimit(f.MaxConcurrent)
	}
	for i, title := range titles {
		g.Go(func() error {
			doc, err := f.fetchOne(gctx, title)
			if err != nil {
				log.Warn().Err(err).Str("title", title).Msg("article fetch failed; dropping")
				return nil
			}
			if doc == nil {
				log.Warn().Str("title", title).Msg("article missing; dropping")
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

func (f *Fetcher) pageURL(title string) (string, error) {
	endpoint := f.APIURL
	if endpoint == "" {
		endpoint = search.DefaultAPIURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("prop", "extracts|info|pageimages")
	q.Set("explaintext", "1")
	q.Set("redirects", "1")
	q.Set("inprop", "url")
	q.Set("piprop", "original")
	q.Set("titles", title)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type pageResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID   int64   `json:"pageid"`
			Title    string  `json:"title"`
			FullURL  string  `json:"fullurl"`
			Extract  string  `json:"extract"`
			Missing  *string `json:"missing"`
			Invalid  *string `json:"invalid"`
			Original *struct {
				Source string `json:"source"`
			} `json:"original"`
		} `json:"pages"`
	} `json:"query"`
}

func (f *Fetcher) fetchOne(ctx context.Context, title string) (*Document, error) {
	u, err := f.pageURL(title)
	if err != nil {
		return nil, err
	}
	client := f.Client
	if client == nil {
		client = &fetch.Client{}
	}
	var resp pageResponse
	if err := client.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	for _, p := range resp.Query.Pages {
		if p.PageID == 0 || p.Missing != nil || p.Invalid != nil {
			return nil, nil
		}
		doc := &Document{
			ID:        p.PageID,
			Title:     p.Title,
			Requested: title,
			URL:       p.FullURL,
			Summary:   SummaryOf(p.Extract),
			Text:      p.Extract,
		}
		if p.Original != nil {
			doc.ImageURL = p.Original.Source
		}
		return doc, nil
	}
	return nil, nil
}

// SummaryOf returns the lead paragraph: text up to the first blank line.
func SummaryOf(text string) string {
	if i := strings.Index(text, "\n\n"); i >= 0 {
		return text[:i]
	}
	return text
}

// Score counts how many topic keywords occur, case-insensitively, as
// substrings of title, summary and text together. It is a cheap lexical
// proxy for relevance and nothing more.
func Score(doc Document, topics []string) int {
	fold := cases.Fold()
	haystack := fold.String(strings.Join([]string{doc.Title, doc.Summary, doc.Text}, " "))
	n := 0
	for _, kw := range topics {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(haystack, fold.String(kw)) {
			n++
		}
	}
	return n
}

// Assemble drops absent documents, attaches view counts and relevance
// scores, and returns them in display order.
func Assemble(fetched []*Document, samples map[string]pageviews.Sample, topics []string) []Document {
	out := make([]Document, 0, len(fetched))
	for _, d := range fetched {
		if d == nil {
			continue
		}
		doc := *d
		doc.Topics = append([]string(nil), topics...)
		doc.Score = Score(doc, topics)
		if s, ok := lookupSample(samples, doc.Requested, doc.Title); ok && s.Present {
			v := s.Views
			doc.Views = &v
		}
		out = append(out, doc)
	}
	Order(out)
	return out
}

// lookupSample finds the sample ranked for a document: by the requested
// title, then by the returned title, then by a case-folded returned title.
func lookupSample(samples map[string]pageviews.Sample, requested, title string) (pageviews.Sample, bool) {
	if s, ok := samples[requested]; ok && requested != "" {
		return s, true
	}
	if s, ok := samples[title]; ok {
		return s, true
	}
	for k, s := range samples {
		if strings.EqualFold(k, title) {
			return s, true
		}
	}
	return pageviews.Sample{}, false
}

// Order sorts documents by views descending with absent counts last, then
// by score descending. The sort is stable on the incoming order.
func Order(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		vi, vj := docs[i].Views, docs[j].Views
		switch {
		case vi != nil && vj == nil:
			return true
		case vi == nil && vj != nil:
			return false
		case vi != nil && vj != nil && *vi != *vj:
			return *vi > *vj
		}
		return docs[i].Score > docs[j].Score
	})
}
