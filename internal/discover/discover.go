// Package discover turns topics into a deduplicated list of candidate
// article titles using a search provider.
package discover

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/search"
)

// Discoverer runs one search per topic, sequentially.
type Discoverer struct {
	Provider search.Provider
}

// PerTopicLimit spreads target evenly over topics with a floor of five, then
// doubles it so ranking by popularity has headroom.
func PerTopicLimit(target int, topics int) int {
	if topics <= 0 {
		return 0
	}
	n := target / topics
	if n < 5 {
		n = 5
	}
	return n * 2
}

// Cap is the overall number of candidates gathered for a target of top-k
// documents.
func Cap(target int) int {
	return target * 2
}

// Discover searches each topic for up to perTopicLimit titles and appends
// unseen titles in first-seen order, stopping once maxTotal titles are
// collected (maxTotal <= 0 means no cap). A failed search contributes no
// titles and does not stop the remaining topics.
func (d *Discoverer) Discover(ctx context.Context, topics []string, perTopicLimit int, maxTotal int) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 64)
	full := func() bool { return maxTotal > 0 && len(out) >= maxTotal }
	if d.Provider == nil {
		log.Warn().Msg("no search provider configured")
		return out
	}
	for _, topic := range topics {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("discovery cancelled")
			break
		}
		results, err := d.Provider.Search(ctx, topic, perTopicLimit)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Str("provider", d.Provider.Name()).Msg("search failed; skipping topic")
			continue
		}
		log.Debug().Str("topic", topic).Int("results", len(results)).Msg("search done")
		for _, title := range search.Titles(results) {
			if _, ok := seen[title]; ok {
				continue
			}
			seen[title] = struct{}{}
			out = append(out, title)
			if full() {
				break
			}
		}
		if full() {
			break
		}
	}
	return out
}
