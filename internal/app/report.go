package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/article"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/highlight"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/session"
)

// maxSentencesInReport caps the subjective sentences listed per article.
const maxSentencesInReport = 20

// Report is the output of one CLI run.
type Report struct {
	Trending  Trending
	Generated time.Time
	Entries   []ReportEntry
}

// ReportEntry is one ranked document with its analysis. Analyzed is false
// when no classifier was configured.
type ReportEntry struct {
	Document article.Document
	Analysis session.Analysis
	Analyzed bool
}

func viewsLabel(d article.Document) string {
	if d.Views == nil {
		return "views unavailable"
	}
	return fmt.Sprintf("%d views", *d.Views)
}

// Markdown renders the report.
func (r Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Wikipedia bias report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "Topics: %s\n", strings.Join(r.Trending.Topics, ", "))
	fmt.Fprintf(&b, "Popularity date: %s\n\n", r.Trending.Date.Format("2006-01-02"))

	b.WriteString("## Ranked articles\n\n")
	for i, e := range r.Entries {
		fmt.Fprintf(&b, "%d. [%s](%s) (%s, relevance %d)\n", i+1, e.Document.Title, e.Document.URL, viewsLabel(e.Document), e.Document.Score)
	}
	b.WriteString("\n")

	for _, e := range r.Entries {
		writeEntry(&b, e)
	}
	return appendAutoToC(b.String(), 3)
}

func writeEntry(b *strings.Builder, e ReportEntry) {
	d := e.Document
	fmt.Fprintf(b, "## %s\n\n", d.Title)
	fmt.Fprintf(b, "Source: %s\n\n", d.URL)
	if s := strings.TrimSpace(d.Summary); s != "" {
		b.WriteString("> ")
		b.WriteString(strings.ReplaceAll(s, "\n", "\n> "))
		b.WriteString("\n\n")
	}

	if outline := outlineMarkdown(highlight.Headings(e.Analysis.Markup)); outline != "" {
		b.WriteString("### Outline\n\n")
		b.WriteString(outline)
		b.WriteString("\n")
	}

	if !e.Analyzed {
		b.WriteString("_No classifier configured; bias analysis skipped._\n\n")
		return
	}
	s := e.Analysis.Summary
	b.WriteString("### Bias summary\n\n")
	fmt.Fprintf(b, "- Level: **%s**\n", s.Level)
	fmt.Fprintf(b, "- Sentences: %d (subjective %d, %.1f%%; neutral %d, %.1f%%; errors %d)\n", s.Total, s.Subjective, s.SubjectivePct, s.Neutral, s.NeutralPct, s.Errors)
	fmt.Fprintf(b, "- Mean confidence: %.2f\n", s.MeanConfidence)
	for _, sec := range sectionOrder(e.Analysis.Records) {
		if n := s.BySection[sec]; n > 0 {
			fmt.Fprintf(b, "  - %s: %d subjective\n", sec, n)
		}
	}
	b.WriteString("\n")

	subj := subjectiveIndices(e.Analysis.Results)
	if len(subj) == 0 {
		return
	}
	b.WriteString("### Subjective sentences\n\n")
	for i, idx := range subj {
		if i == maxSentencesInReport {
			fmt.Fprintf(b, "- ... %d more\n", len(subj)-i)
			break
		}
		rec := e.Analysis.Records[idx]
		around := segment.Context(e.Analysis.Records, idx, 1, 1)
		around = strings.Replace(around, rec.Text, "**"+rec.Text+"**", 1)
		fmt.Fprintf(b, "- (%s) %s\n", rec.SectionTitle, around)
	}
	b.WriteString("\n")
}

func sectionOrder(records []segment.Record) []string {
	var out []string
	seen := map[string]bool{}
	for _, r := range records {
		if !seen[r.SectionTitle] {
			seen[r.SectionTitle] = true
			out = append(out, r.SectionTitle)
		}
	}
	return out
}

func subjectiveIndices(results []classify.Result) []int {
	var out []int
	for _, r := range results {
		if r.Label == classify.Subjective {
			out = append(out, r.Index)
		}
	}
	return out
}
