// Package neutralize rewrites subjective sentences in neutral wording with
// a chat model.
package neutralize

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
)

// minRewriteLen is the shortest rewrite, in characters, that is accepted.
const minRewriteLen = 5

const systemMessage = "You rewrite biased or subjective sentences from encyclopedia articles so they are neutral and objective. Keep the factual information; remove opinions, value judgments and emotionally charged language. Respond with the rewritten text only."

// Neutralizer wraps the rewrite collaborator.
type Neutralizer struct {
	Chat          *llm.Chat
	MaxConcurrent int
}

func userPrompt(text string) string {
	return "Original text: \"" + text + "\"\n\nNeutralized text:"
}

// Neutralize returns a neutral rewrite of text. Blank input, an
// unconfigured model and a rewrite shorter than five characters all yield
// "" without error.
func (n *Neutralizer) Neutralize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" || n == nil || !n.Chat.Configured() {
		return "", nil
	}
	out, err := n.Chat.Complete(ctx, systemMessage, userPrompt(strings.TrimSpace(text)))
	if err != nil {
		return "", err
	}
	out = strings.Trim(strings.TrimSpace(out), "\"")
	if utf8.RuneCountInString(out) < minRewriteLen {
		return "", nil
	}
	return out, nil
}

// NeutralizeMany rewrites texts concurrently and returns original -> rewrite.
// Blank inputs are skipped; a failed rewrite maps to "".
func (n *Neutralizer) NeutralizeMany(ctx context.Context, texts []string) map[string]string {
	var inputs []string
	seen := map[string]bool{}
	for _, t := range texts {
		if strings.TrimSpace(t) == "" || seen[t] {
			continue
		}
		seen[t] = true
		inputs = append(inputs, t)
	}
	rewrites := make([]string, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		g.SetLimit(n.MaxConcurrent)
	}
	for i, t := range inputs {
		g.Go(func() error {
			out, err := n.Neutralize(gctx, t)
			if err != nil {
				log.Warn().Err(err).Int("len", len(t)).Msg("neutralize failed")
			}
			rewrites[i] = out
			return nil
		})
	}
	_ = g.Wait()
	out := make(map[string]string, len(inputs))
	for i, t := range inputs {
		out[t] = rewrites[i]
	}
	return out
}
