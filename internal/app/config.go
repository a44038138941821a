package app

import (
	"strings"
	"time"
)

const (
	DefaultTopK          = 5
	DefaultUserAgent     = "wikibias/1.0 (+https://github.com/DouglasBergamim/Detect-Wikipedia-Bias)"
	DefaultCacheDir      = ".wikibias-cache"
	DefaultOutputPath    = "report.md"
	DefaultMaxConcurrent = 16
)

// Config holds runtime configuration for the application.
type Config struct {
	Topics []string
	TopK   int
	// Date selects the popularity day as YYYY/MM/DD; empty or invalid means
	// yesterday (UTC).
	Date string

	// Sources
	WikiAPIURL     string
	PageviewsURL   string
	FileSearchPath string
	UserAgent      string
	RequestTimeout time.Duration
	MaxConcurrent  int

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Classifier: a hosted model endpoint, or an LLM model name
	ClassifierURL   string
	ClassifierModel string
	BatchSize       int
	Threshold       float64

	// LLM for neutralization, missing arguments and the LLM classifier
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Output
	OutputPath    string
	OutputPDFPath string
	ServeAddr     string

	Verbose bool
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		TopK:           DefaultTopK,
		UserAgent:      DefaultUserAgent,
		RequestTimeout: 10 * time.Second,
		MaxConcurrent:  DefaultMaxConcurrent,
		CacheDir:       DefaultCacheDir,
		BatchSize:      16,
		Threshold:      0.6,
		OutputPath:     DefaultOutputPath,
	}
}

// ParseTopics splits a comma-separated topic list, dropping blanks and
// duplicates while keeping order.
func ParseTopics(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		t := strings.TrimSpace(p)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}
