// Package arguments asks a chat model for arguments and viewpoints missing
// from each section of an article.
package arguments

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/budget"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
)

const (
	DefaultMaxSections = 5
	DefaultMaxArgs     = 2
	DefaultMaxSummary  = 5
)

// Section is a titled block of article text.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Argument is one missing argument. Section is set by Summarize.
type Argument struct {
	Argument string `json:"argument"`
	Priority int    `json:"priority,omitempty"`
	Section  string `json:"section,omitempty"`
}

// SectionArguments holds the arguments found for one section.
type SectionArguments struct {
	Section   string     `json:"section"`
	Arguments []Argument `json:"arguments"`
}

// ExtractSections splits content line by line. A trimmed line that starts
// and ends with '=' opens a section; text before the first header belongs to
// "Introduction". Sections without content are dropped.
func ExtractSections(content string) []Section {
	var out []Section
	cur := Section{Title: "Introduction"}
	var body strings.Builder
	flush := func() {
		cur.Content = body.String()
		if strings.TrimSpace(cur.Content) != "" {
			out = append(out, cur)
		}
		body.Reset()
	}
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && strings.HasPrefix(trimmed, "=") && strings.HasSuffix(trimmed, "=") {
			flush()
			cur = Section{Title: strings.Trim(trimmed, "= \t")}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return out
}

// Analyzer runs missing-argument discovery.
type Analyzer struct {
	Chat        *llm.Chat
	MaxSections int
	MaxArgs     int
	// MaxConcurrent bounds in-flight section calls; zero means one per section.
	MaxConcurrent int
}

func (a *Analyzer) maxSections() int {
	if a.MaxSections > 0 {
		return a.MaxSections
	}
	return DefaultMaxSections
}

func (a *Analyzer) maxArgs() int {
	if a.MaxArgs > 0 {
		return a.MaxArgs
	}
	return DefaultMaxArgs
}

const sectionSystem = "You are an assistant specialized in critical content analysis. Respond with a pure JSON list of objects only."

func sectionPrompt(sec Section, maxArgs int) string {
	return fmt.Sprintf(`Analyze the following excerpt from an encyclopedia article section and identify up to %d arguments, counter-arguments or important viewpoints that appear to be missing or could enrich the discussion of the section's topic.

For each item provide:
- "argument": a clear and concise description of the missing point and why it matters for understanding the text.
- "priority": an integer from 1 (most important) to %d (least important).

If nothing relevant is missing, return [].

Section title: %q
Section excerpt:
"""%s"""`, maxArgs, maxArgs, sec.Title, strings.TrimSpace(sec.Content))
}

// Analyze examines the first MaxSections sections concurrently and returns
// up to MaxArgs arguments per section, in section order. Sections with no
// arguments, and sections whose call failed, are omitted.
func (a *Analyzer) Analyze(ctx context.Context, content string) []SectionArguments {
	if !a.Chat.Configured() {
		return nil
	}
	sections := ExtractSections(content)
	if len(sections) > a.maxSections() {
		sections = sections[:a.maxSections()]
	}
	found := make([][]Argument, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	if a.MaxConcurrent > 0 {
		g.SetLimit(a.MaxConcurrent)
	}
	for i, sec := range sections {
		allowance := budget.ExcerptTokens(a.Chat.Model, a.Chat.MaxTokens, sectionSystem, sectionPrompt(Section{Title: sec.Title}, a.maxArgs()))
		if trimmed := budget.Trim(sec.Content, allowance); len(trimmed) < len(sec.Content) {
			log.Debug().Str("section", sec.Title).Int("tokens", allowance).Msg("section excerpt trimmed to fit context")
			sec.Content = trimmed
		}
		g.Go(func() error {
			raw, err := a.Chat.Complete(gctx, sectionSystem, sectionPrompt(sec, a.maxArgs()))
			if err != nil {
				log.Warn().Err(err).Str("section", sec.Title).Msg("missing-argument call failed")
				return nil
			}
			args, err := llm.DecodeList[Argument](raw)
			if err != nil {
				log.Warn().Err(err).Str("section", sec.Title).Msg("missing-argument output unparseable")
				return nil
			}
			found[i] = clean(args, a.maxArgs())
			return nil
		})
	}
	_ = g.Wait()
	var out []SectionArguments
	for i, sec := range sections {
		if len(found[i]) == 0 {
			continue
		}
		out = append(out, SectionArguments{Section: sec.Title, Arguments: found[i]})
	}
	return out
}

func clean(args []Argument, limit int) []Argument {
	var out []Argument
	for _, arg := range args {
		arg.Argument = strings.TrimSpace(arg.Argument)
		if arg.Argument == "" {
			continue
		}
		out = append(out, arg)
	}
	sort.SliceStable(out, func(i, j int) bool { return priorityKey(out[i]) < priorityKey(out[j]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// priorityKey sorts unset priorities last.
func priorityKey(a Argument) int {
	if a.Priority <= 0 {
		return int(^uint(0) >> 1)
	}
	return a.Priority
}

const summarySystem = "You are a senior research assistant and editor. Respond with a pure JSON list of objects only."

// Summarize consolidates the arguments of all sections into at most
// maxItems entries, each tagged with its source section.
func (a *Analyzer) Summarize(ctx context.Context, bySection []SectionArguments, maxItems int) ([]Argument, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxSummary
	}
	var lines []string
	for _, s := range bySection {
		for _, arg := range s.Arguments {
			lines = append(lines, fmt.Sprintf("- From section %q (original priority %d): %s", s.Section, max(arg.Priority, 1), arg.Argument))
		}
	}
	if len(lines) == 0 || !a.Chat.Configured() {
		return nil, nil
	}
	user := fmt.Sprintf(`The list below contains missing arguments identified in different sections of an encyclopedia article. Consolidate it:
1. Remove duplicated or semantically very similar arguments, keeping the clearer version.
2. Select the %d most important by relevance and impact on completeness.
3. Keep the source section of each selected argument.

Each object has "argument" and "section". Return [] if nothing is valid.

Arguments:
%s`, maxItems, strings.Join(lines, "\n"))
	raw, err := a.Chat.Complete(ctx, summarySystem, user)
	if err != nil {
		return nil, err
	}
	items, err := llm.DecodeList[Argument](raw)
	if err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	items = clean(items, 0)
	if len(items) > maxItems {
		items = items[:maxItems]
	}
	return items, nil
}
