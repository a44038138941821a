package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig overrides cfg fields whose environment variable is set.
// Env sits above the config file and below flags.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := os.Getenv("WIKIBIAS_TOPICS"); v != "" {
		cfg.Topics = ParseTopics(v)
	}
	envInt(&cfg.TopK, "WIKIBIAS_TOP_K")
	envString(&cfg.Date, "WIKIBIAS_DATE")

	envString(&cfg.WikiAPIURL, "WIKI_API_URL")
	envString(&cfg.PageviewsURL, "PAGEVIEWS_URL")
	envString(&cfg.UserAgent, "WIKI_USER_AGENT")
	envString(&cfg.FileSearchPath, "SEARCH_FILE")
	envDuration(&cfg.RequestTimeout, "HTTP_TIMEOUT")
	envInt(&cfg.MaxConcurrent, "HTTP_MAX_CONCURRENT")

	envString(&cfg.CacheDir, "CACHE_DIR")
	envDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")
	envBool(&cfg.CacheClear, "CACHE_CLEAR")
	envBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")

	envString(&cfg.ClassifierURL, "CLASSIFIER_URL")
	envString(&cfg.ClassifierModel, "CLASSIFIER_MODEL")
	envInt(&cfg.BatchSize, "CLASSIFIER_BATCH_SIZE")
	if v := strings.TrimSpace(os.Getenv("CLASSIFIER_THRESHOLD")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Threshold = f
		}
	}

	envString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	envString(&cfg.LLMModel, "LLM_MODEL")
	envString(&cfg.LLMAPIKey, "LLM_API_KEY")

	envString(&cfg.ServeAddr, "WIKIBIAS_SERVE")
	envBool(&cfg.Verbose, "VERBOSE")
}

func envString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		*dst = n
	}
}

func envDuration(dst *time.Duration, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			*dst = d
		}
	}
}

// envBool accepts 1/true/yes/on and 0/false/no/off; anything else is ignored.
func envBool(dst *bool, key string) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}
