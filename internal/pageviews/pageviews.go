// Package pageviews fetches daily view counts from the Wikimedia metrics API.
package pageviews

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/fetch"
)

const (
	DefaultBaseURL = "https://wikimedia.org/api/rest_v1/metrics/pageviews/per-article"
	DefaultProject = "en.wikipedia"
	DefaultAccess  = "all-access"
	DefaultAgent   = "user"
	granularity    = "daily"
	dateLayout     = "20060102"
)

// Sample is one title's view count for one day. Present is false when the
// count could not be obtained; that is not the same as zero views.
type Sample struct {
	Title   string
	Date    time.Time
	Views   int64
	Present bool
}

// Absent builds the fallback sample for a failed fetch.
func Absent(title string, date time.Time) Sample {
	return Sample{Title: title, Date: date}
}

// Of builds a present sample.
func Of(title string, date time.Time, views int64) Sample {
	return Sample{Title: title, Date: date, Views: views, Present: true}
}

// HasViews reports whether the sample is present and strictly positive.
func (s Sample) HasViews() bool { return s.Present && s.Views > 0 }

// Fetcher issues one request per title, all in flight together up to
// MaxConcurrent.
type Fetcher struct {
	Client  *fetch.Client
	BaseURL string
	Project string
	Access  string
	Agent   string
	// MaxConcurrent bounds the fan-out. Zero launches every title at once.
	MaxConcurrent int
}

// Fetch returns a sample for every title. Failures, timeouts and cancellation
// resolve to absent samples; Fetch itself never fails.
func (f *Fetcher) Fetch(ctx context.Context, titles []string, date time.Time) map[string]Sample {
	samples := make([]Sample, len(titles))
	g, gctx := errgroup.WithContext(ctx)
	if f.MaxConcurrent > 0 {
		g.SetLimit(f.MaxConcurrent)
	}
	for i, title := range titles {
		samples[i] = Absent(title, date)
		g.Go(func() error {
			views, err := f.fetchOne(gctx, title, date)
			if err != nil {
				log.Warn().Err(err).Str("title", title).Msg("pageviews unavailable")
				return nil
			}
			samples[i] = Of(title, date, views)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]Sample, len(titles))
	for _, s := range samples {
		out[s.Title] = s
	}
	return out
}

// URL builds the per-article endpoint for a single day.
func (f *Fetcher) URL(title string, date time.Time) string {
	day := date.Format(dateLayout)
	return strings.Join([]string{
		strings.TrimRight(pick(f.BaseURL, DefaultBaseURL), "/"),
		pick(f.Project, DefaultProject),
		pick(f.Access, DefaultAccess),
		pick(f.Agent, DefaultAgent),
		EscapeTitle(title),
		granularity,
		day,
		day,
	}, "/")
}

// EscapeTitle converts a display title to its path segment form.
func EscapeTitle(title string) string {
	return url.PathEscape(strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}

func (f *Fetcher) fetchOne(ctx context.Context, title string, date time.Time) (int64, error) {
	client := f.Client
	if client == nil {
		client = &fetch.Client{}
	}
	var resp struct {
		Items []struct {
			Views int64 `json:"views"`
		} `json:"items"`
	}
	if err := client.GetJSON(ctx, f.URL(title, date), &resp); err != nil {
		return 0, err
	}
	if len(resp.Items) == 0 {
		return 0, fmt.Errorf("no pageview items for %q", title)
	}
	return resp.Items[0].Views, nil
}

// TargetDate parses a YYYY/MM/DD date. An empty or invalid value yields
// yesterday (UTC) relative to now, the latest day with complete counts.
func TargetDate(value string, now time.Time) time.Time {
	yesterday := now.UTC().AddDate(0, 0, -1)
	yesterday = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, time.UTC)
	value = strings.TrimSpace(value)
	if value == "" {
		return yesterday
	}
	d, err := time.Parse("2006/01/02", value)
	if err != nil {
		log.Warn().Str("date", value).Msg("invalid date; using yesterday")
		return yesterday
	}
	return d
}

func pick(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
