// Package rank picks the top-k candidate titles by popularity.
package rank

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/pageviews"
)

// Rank orders titles (given in discovery order) for selection.
//
// Titles whose sample is present with a positive count are sorted by views,
// descending, stable on discovery order, and the first topK returned. When no
// title has views the first topK titles in discovery order are returned
// instead.
func Rank(titles []string, samples map[string]pageviews.Sample, topK int) []string {
	if topK <= 0 || len(titles) == 0 {
		return nil
	}
	withViews := make([]pageviews.Sample, 0, len(titles))
	seen := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if s, ok := samples[t]; ok && s.HasViews() {
			withViews = append(withViews, s)
		}
	}

	if len(withViews) == 0 {
		log.Warn().Int("candidates", len(titles)).Msg("no candidate has views; falling back to discovery order")
		out := make([]string, 0, topK)
		for _, t := range titles {
			if _, ok := seen[t]; !ok {
				continue
			}
			delete(seen, t)
			out = append(out, t)
			if len(out) == topK {
				break
			}
		}
		return out
	}

	sort.SliceStable(withViews, func(i, j int) bool {
		return withViews[i].Views > withViews[j].Views
	})
	if len(withViews) > topK {
		withViews = withViews[:topK]
	}
	out := make([]string, len(withViews))
	for i, s := range withViews {
		out[i] = s.Title
	}
	log.Debug().Int("with_views", len(out)).Msg("ranked by views")
	return out
}
