package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
)

const classifierSystem = "You label sentences from encyclopedia articles as SUBJECTIVE (opinionated, loaded or promotional wording) or NEUTRAL (factual, impartial). Respond with a JSON array only, one object per input sentence in the same order: {\"label\": \"SUBJECTIVE\"|\"NEUTRAL\", \"confidence\": number between 0 and 1}."

// LLMClassifier asks a chat model to label sentences.
type LLMClassifier struct {
	Chat *llm.Chat
}

type llmVerdict struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func (c *LLMClassifier) Classify(ctx context.Context, texts []string) ([]Prediction, error) {
	var sb strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(t))
	}
	raw, err := c.Chat.Complete(ctx, classifierSystem, sb.String())
	if err != nil {
		return nil, err
	}
	verdicts, err := llm.DecodeList[llmVerdict](raw)
	if err != nil {
		return nil, fmt.Errorf("parse classifier output: %w", err)
	}
	out := make([]Prediction, 0, len(verdicts))
	for _, v := range verdicts {
		label, ok := ParseLabel(v.Label)
		if !ok {
			out = append(out, Prediction{Label: Error})
			continue
		}
		out = append(out, Prediction{Label: label, Confidence: v.Confidence})
	}
	return out, nil
}
