package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/arguments"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/article"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/cache"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/discover"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/fetch"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/highlight"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/neutralize"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/pageviews"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/rank"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/search"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/session"
)

// ErrNoArticles is returned by Run when the pipeline produced no documents.
// The CLI maps it to exit code 2.
var ErrNoArticles = errors.New("no articles found")

// Reasons reported with an empty Trending result.
const (
	ReasonNoTopics     = "no topics given"
	ReasonNoCandidates = "no candidate titles discovered"
	ReasonNoDocuments  = "none of the ranked titles could be fetched"
)

// Trending is the outcome of one discovery and ranking cycle. Documents is
// either populated or empty with Reason set.
type Trending struct {
	Topics     []string           `json:"topics"`
	Date       time.Time          `json:"date"`
	Candidates []string           `json:"candidates"`
	Ranked     []string           `json:"ranked"`
	Documents  []article.Document `json:"documents"`
	Reason     string             `json:"reason,omitempty"`
}

// App wires the pipeline stages together.
type App struct {
	cfg         Config
	discoverer  *discover.Discoverer
	popularity  *pageviews.Fetcher
	articles    *article.Fetcher
	segmenter   *segment.Segmenter
	batcher     *classify.Batcher
	neutralizer *neutralize.Neutralizer
	analyzer    *arguments.Analyzer
	now         func() time.Time
}

func New(ctx context.Context, cfg Config) (*App, error) {
	httpClient := newHTTPClient(cfg.RequestTimeout*3, cfg.MaxConcurrent)

	var httpCache *cache.HTTPCache
	var llmCache *cache.LLMCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			// best-effort; a purge failure must not block startup
			_, _ = cache.PurgeHTTPCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
			_, _ = cache.PurgeLLMCacheByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir}
		llmCache = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	// Popularity must reflect the chosen day and is never cached; search
	// and article extracts are.
	cached := &fetch.Client{HTTPClient: httpClient, UserAgent: cfg.UserAgent, PerRequestTimeout: cfg.RequestTimeout, Cache: httpCache}
	uncached := &fetch.Client{HTTPClient: httpClient, UserAgent: cfg.UserAgent, PerRequestTimeout: cfg.RequestTimeout}

	var provider search.Provider = &search.MediaWiki{APIURL: cfg.WikiAPIURL, Client: cached}
	if cfg.FileSearchPath != "" {
		provider = &search.FileProvider{Path: cfg.FileSearchPath}
	}

	tok, err := segment.NewEnglish()
	if err != nil {
		return nil, fmt.Errorf("init sentence tokenizer: %w", err)
	}

	a := &App{
		cfg:        cfg,
		discoverer: &discover.Discoverer{Provider: provider},
		popularity: &pageviews.Fetcher{Client: uncached, BaseURL: cfg.PageviewsURL, MaxConcurrent: cfg.MaxConcurrent},
		articles:   &article.Fetcher{Client: cached, APIURL: cfg.WikiAPIURL, MaxConcurrent: cfg.MaxConcurrent},
		segmenter:  &segment.Segmenter{Tokenizer: tok},
		now:        time.Now,
	}

	var chat *llm.Chat
	if cfg.LLMModel != "" {
		chat = &llm.Chat{
			Client:      llm.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, httpClient),
			Model:       cfg.LLMModel,
			Temperature: 0.3,
			Cache:       llmCache,
		}
		preflight(ctx, chat.Client)
	}
	a.neutralizer = &neutralize.Neutralizer{Chat: chat, MaxConcurrent: cfg.MaxConcurrent}
	a.analyzer = &arguments.Analyzer{Chat: chat, MaxConcurrent: cfg.MaxConcurrent}

	switch {
	case cfg.ClassifierURL != "":
		a.batcher = &classify.Batcher{
			Classifier:    &classify.HTTPClassifier{Endpoint: cfg.ClassifierURL, HTTPClient: httpClient, Threshold: cfg.Threshold},
			BatchSize:     cfg.BatchSize,
			MaxConcurrent: cfg.MaxConcurrent,
		}
	case cfg.ClassifierModel != "" && chat != nil:
		cc := *chat
		cc.Model = cfg.ClassifierModel
		cc.Temperature = 0
		a.batcher = &classify.Batcher{Classifier: &classify.LLMClassifier{Chat: &cc}, BatchSize: cfg.BatchSize, MaxConcurrent: cfg.MaxConcurrent}
	}
	return a, nil
}

// preflight lists models as a connectivity check. It only warns.
func preflight(ctx context.Context, c llm.Client) {
	lister, ok := c.(llm.ModelLister)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	log.Info().Int("count", len(models.Models)).Msg("LLM models available")
}

func (a *App) Close() {}

// Classifying reports whether a classifier is configured.
func (a *App) Classifying() bool { return a.batcher != nil }

// Trending discovers candidates for topics, ranks them by popularity on the
// given day and fetches the top k documents.
func (a *App) Trending(ctx context.Context, topics []string, topK int, date string) Trending {
	if topK <= 0 {
		topK = DefaultTopK
	}
	day := pageviews.TargetDate(date, a.now())
	res := Trending{Topics: topics, Date: day}
	if len(topics) == 0 {
		res.Reason = ReasonNoTopics
		return res
	}
	res.Candidates = a.discoverer.Discover(ctx, topics, discover.PerTopicLimit(topK, len(topics)), discover.Cap(topK))
	if len(res.Candidates) == 0 {
		res.Reason = ReasonNoCandidates
		log.Warn().Strs("topics", topics).Str("reason", res.Reason).Msg("empty result")
		return res
	}
	samples := a.popularity.Fetch(ctx, res.Candidates, day)
	res.Ranked = rank.Rank(res.Candidates, samples, topK)
	res.Documents = article.Assemble(a.articles.Fetch(ctx, res.Ranked), samples, topics)
	if len(res.Documents) == 0 {
		res.Reason = ReasonNoDocuments
		log.Warn().Strs("titles", res.Ranked).Str("reason", res.Reason).Msg("empty result")
	}
	return res
}

// Analyze segments a document, classifies its sentences when a classifier
// is configured and renders the highlighted markup.
func (a *App) Analyze(ctx context.Context, doc article.Document) session.Analysis {
	records := a.segmenter.Segment(doc.Text)
	var results []classify.Result
	if a.batcher != nil {
		texts := make([]string, len(records))
		for i, r := range records {
			texts[i] = r.Text
		}
		results = a.batcher.Run(ctx, texts)
	}
	classified := make([]highlight.Classified, 0, len(results))
	for _, r := range results {
		classified = append(classified, highlight.Classified{Record: records[r.Index], Result: r})
	}
	return session.Analysis{
		Records: records,
		Results: results,
		Summary: classify.Summarize(records, results),
		Markup:  highlight.Render(doc.Text, classified),
	}
}

// Neutralize rewrites texts; originals without a rewrite map to "".
func (a *App) Neutralize(ctx context.Context, texts []string) map[string]string {
	return a.neutralizer.NeutralizeMany(ctx, texts)
}

// MissingArguments runs argument discovery over a document and consolidates
// the findings. A failed consolidation still returns the per-section list.
func (a *App) MissingArguments(ctx context.Context, doc article.Document) ([]arguments.SectionArguments, []arguments.Argument) {
	bySection := a.analyzer.Analyze(ctx, doc.Text)
	summary, err := a.analyzer.Summarize(ctx, bySection, arguments.DefaultMaxSummary)
	if err != nil {
		log.Warn().Err(err).Str("title", doc.Title).Msg("argument summary failed")
	}
	return bySection, summary
}

// Run executes the pipeline once for the configured topics and writes the
// report.
func (a *App) Run(ctx context.Context) error {
	tr := a.Trending(ctx, a.cfg.Topics, a.cfg.TopK, a.cfg.Date)
	if len(tr.Documents) == 0 {
		return fmt.Errorf("%w: %s", ErrNoArticles, tr.Reason)
	}
	rep := Report{Trending: tr, Generated: a.now().UTC()}
	for _, doc := range tr.Documents {
		entry := ReportEntry{Document: doc}
		if a.batcher != nil {
			entry.Analysis = a.Analyze(ctx, doc)
			entry.Analyzed = true
		} else {
			entry.Analysis.Markup = highlight.FormatHeaders(doc.Text)
		}
		rep.Entries = append(rep.Entries, entry)
	}
	md := rep.Markdown()
	if err := os.WriteFile(a.cfg.OutputPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", a.cfg.OutputPath).Int("documents", len(rep.Entries)).Msg("report written")
	if strings.TrimSpace(a.cfg.OutputPDFPath) != "" {
		if err := writeReportPDF(rep, a.cfg.OutputPDFPath); err != nil {
			log.Warn().Err(err).Str("path", a.cfg.OutputPDFPath).Msg("pdf export failed")
		}
	}
	return nil
}
