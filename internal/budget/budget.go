// Package budget estimates prompt sizes and trims article excerpts so LLM
// requests stay inside the model's context window.
package budget

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultOutputTokens is reserved for the completion when the caller does
// not set a limit.
const DefaultOutputTokens = 1024

// EstimateTokensFromChars converts a character count into an estimated token
// count (~4 chars per token in English, rounded up).
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(utf8.RuneCountInString(s))
}

// ModelContextTokens returns an estimated context window for a model name.
// Unknown models fall back to 8192.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"), strings.Contains(name, "-mini"):
		return 128_000
	case strings.HasSuffix(name, "32k"):
		return 32_768
	}
	return 8192
}

// HeadroomTokens is the larger of 5% of the context window and 512 tokens,
// covering tokenizer drift and message framing.
func HeadroomTokens(modelName string) int {
	return max(512, int(math.Ceil(float64(ModelContextTokens(modelName))*0.05)))
}

// ExcerptTokens returns how many tokens an excerpt may use once the fixed
// prompt parts, the output reservation and headroom are accounted for.
// The result is never negative.
func ExcerptTokens(modelName string, reservedForOutput int, fixed ...string) int {
	if reservedForOutput <= 0 {
		reservedForOutput = DefaultOutputTokens
	}
	used := reservedForOutput + HeadroomTokens(modelName)
	for _, f := range fixed {
		used += EstimateTokens(f)
	}
	return max(0, ModelContextTokens(modelName)-used)
}

// Trim shortens text to at most maxTokens estimated tokens. It cuts at the
// last sentence end, or failing that the last space, inside the allowance.
// A non-positive allowance yields "".
func Trim(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	limit := maxTokens * 4
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	cut := 0
	for i := range text {
		if limit == 0 {
			cut = i
			break
		}
		limit--
	}
	head := text[:cut]
	if i := strings.LastIndexAny(head, ".!?"); i > len(head)/2 {
		return head[:i+1]
	}
	if i := strings.LastIndexByte(head, ' '); i > 0 {
		return strings.TrimRight(head[:i], " ")
	}
	return head
}

// knownModelMax holds rough context sizes for common model identifiers.
var knownModelMax = map[string]int{
	"gpt-4o":             128_000,
	"gpt-4o-mini":        128_000,
	"gpt-4-turbo":        128_000,
	"gpt-4.1":            1_000_000,
	"gpt-3.5-turbo":      16_384,
	"llama-3":            8_192,
	"llama-3.1":          128_000,
	"mistral-7b":         32_768,
	"gpt-oss-20b":        4_096,
	"openai/gpt-oss-20b": 4_096,
}
