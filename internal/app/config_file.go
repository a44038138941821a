package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Topics []string `yaml:"topics" json:"topics"`
	TopK   int      `yaml:"topK" json:"topK"`
	Date   string   `yaml:"date" json:"date"`

	Wiki struct {
		API       string `yaml:"api" json:"api"`
		Pageviews string `yaml:"pageviews" json:"pageviews"`
		UA        string `yaml:"ua" json:"ua"`
	} `yaml:"wiki" json:"wiki"`

	Search struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	HTTP struct {
		Timeout       time.Duration `yaml:"timeout" json:"timeout"`
		MaxConcurrent int           `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"http" json:"http"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Classifier struct {
		URL       string  `yaml:"url" json:"url"`
		Model     string  `yaml:"model" json:"model"`
		BatchSize int     `yaml:"batchSize" json:"batchSize"`
		Threshold float64 `yaml:"threshold" json:"threshold"`
	} `yaml:"classifier" json:"classifier"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`
	Serve     string `yaml:"serve" json:"serve"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. It runs before
// env and flags, which take precedence over it.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if len(fc.Topics) > 0 {
		cfg.Topics = ParseTopics(strings.Join(fc.Topics, ","))
	}
	setInt(&cfg.TopK, fc.TopK)
	setString(&cfg.Date, fc.Date)

	setString(&cfg.WikiAPIURL, fc.Wiki.API)
	setString(&cfg.PageviewsURL, fc.Wiki.Pageviews)
	setString(&cfg.UserAgent, fc.Wiki.UA)
	setString(&cfg.FileSearchPath, fc.Search.File)
	if fc.HTTP.Timeout > 0 {
		cfg.RequestTimeout = fc.HTTP.Timeout
	}
	setInt(&cfg.MaxConcurrent, fc.HTTP.MaxConcurrent)

	setString(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	cfg.CacheClear = cfg.CacheClear || fc.Cache.Clear
	cfg.CacheStrictPerms = cfg.CacheStrictPerms || fc.Cache.StrictPerms

	setString(&cfg.ClassifierURL, fc.Classifier.URL)
	setString(&cfg.ClassifierModel, fc.Classifier.Model)
	setInt(&cfg.BatchSize, fc.Classifier.BatchSize)
	if fc.Classifier.Threshold > 0 {
		cfg.Threshold = fc.Classifier.Threshold
	}

	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)

	setString(&cfg.OutputPath, fc.Output)
	setString(&cfg.OutputPDFPath, fc.OutputPDF)
	setString(&cfg.ServeAddr, fc.Serve)
	cfg.Verbose = cfg.Verbose || fc.Verbose
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// ValidateConfig rejects settings the pipeline cannot run with.
func ValidateConfig(cfg Config) error {
	if cfg.ServeAddr == "" && len(cfg.Topics) == 0 {
		return errors.New("config: at least one topic is required (or set -serve)")
	}
	if cfg.TopK < 0 || cfg.MaxConcurrent < 0 || cfg.RequestTimeout < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.BatchSize < 1 {
		return errors.New("config: classifier batch size must be at least 1")
	}
	if cfg.Threshold <= 0 || cfg.Threshold >= 1 {
		return errors.New("config: classifier threshold must be in (0,1)")
	}
	if cfg.ServeAddr == "" && strings.TrimSpace(cfg.OutputPath) == "" {
		return errors.New("config: output path is required")
	}
	return nil
}
