package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/cache"
)

// ErrNotConfigured is returned when no client or model is set.
var ErrNotConfigured = errors.New("llm not configured")

// Chat is a single-turn prompt runner with an optional response cache.
type Chat struct {
	Client      Client
	Model       string
	Temperature float32
	MaxTokens   int
	Cache       *cache.LLMCache
}

// Configured reports whether Complete can reach a model.
func (c *Chat) Configured() bool {
	return c != nil && c.Client != nil && strings.TrimSpace(c.Model) != ""
}

// Complete sends system+user and returns the trimmed content of the first
// choice. Cached responses keyed by model and prompt are returned without a
// call.
func (c *Chat) Complete(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	key := cache.KeyFrom(c.Model, system+"\n\n"+user)
	if c.Cache != nil {
		if raw, ok, _ := c.Cache.Get(ctx, key); ok {
			return string(raw), nil
		}
	}
	log.Debug().Str("model", c.Model).Int("system_len", len(system)).Int("user_len", len(user)).Msg("llm prompt")
	resp, err := c.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices")
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if c.Cache != nil && out != "" {
		_ = c.Cache.Save(ctx, key, []byte(out))
	}
	return out, nil
}
