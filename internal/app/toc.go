package app

import (
	"strings"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/highlight"
)

// appendAutoToC inserts a table of contents after the title and metadata
// block when the report has at least minHeadings H2 headings. A report that
// already has one is returned unchanged. Only H2 (one per article plus the
// ranking) are listed.
func appendAutoToC(markdown string, minHeadings int) string {
	if minHeadings <= 0 {
		minHeadings = 3
	}
	if containsHeadingCase(markdown, "table of contents") {
		return markdown
	}
	lines := strings.Split(markdown, "\n")
	var items []string
	for _, raw := range lines {
		s := strings.TrimSpace(raw)
		if countPrefix(s, '#') != 2 {
			continue
		}
		if t := strings.TrimSpace(strings.TrimLeft(s, "#")); t != "" {
			items = append(items, t)
		}
	}
	if len(items) < minHeadings {
		return markdown
	}

	var b strings.Builder
	b.WriteString("## Table of contents\n\n")
	for _, t := range items {
		slug := makeSlugForToC(t)
		if slug == "" {
			continue
		}
		b.WriteString("- [")
		b.WriteString(t)
		b.WriteString("](#")
		b.WriteString(slug)
		b.WriteString(")\n")
	}

	insertAt := indexAfterHeaderAndMetadata(lines)
	out := make([]string, 0, len(lines)+len(items)+4)
	out = append(out, lines[:insertAt]...)
	if insertAt > 0 && strings.TrimSpace(lines[insertAt-1]) != "" {
		out = append(out, "")
	}
	out = append(out, b.String())
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

// metadataPrefixes are the report header lines that precede the table of
// contents.
var metadataPrefixes = []string{"generated:", "topics:", "popularity date:"}

// indexAfterHeaderAndMetadata returns the line index after the first H1 and
// the metadata lines that follow it. Falls back to after the first H1.
func indexAfterHeaderAndMetadata(lines []string) int {
	first := -1
	for i, raw := range lines {
		s := strings.TrimSpace(raw)
		if strings.HasPrefix(s, "# ") {
			first = i
			break
		}
		if s != "" {
			break
		}
	}
	if first == -1 {
		return 0
	}
	idx := first + 1
	for i := idx; i < len(lines); i++ {
		s := strings.TrimSpace(lines[i])
		if s == "" {
			continue
		}
		if !hasAnyPrefixFold(s, metadataPrefixes) {
			break
		}
		idx = i + 1
	}
	return idx
}

// outlineMarkdown renders article headings as a nested list.
func outlineMarkdown(headings []highlight.Heading) string {
	var b strings.Builder
	for _, h := range headings {
		if h.Text == "" {
			continue
		}
		b.WriteString(strings.Repeat("  ", max(h.Level-1, 0)))
		b.WriteString("- ")
		b.WriteString(h.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func countPrefix(s string, r byte) int {
	n := 0
	for i := 0; i < len(s) && s[i] == r; i++ {
		n++
	}
	return n
}

func hasAnyPrefixFold(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if len(s) >= len(p) && strings.EqualFold(s[:len(p)], p) {
			return true
		}
	}
	return false
}

func containsHeadingCase(markdown, title string) bool {
	t := strings.TrimSpace(title)
	for _, line := range strings.Split(markdown, "\n") {
		s := strings.TrimSpace(line)
		if !strings.HasPrefix(s, "#") {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(strings.TrimLeft(s, "#")), t) {
			return true
		}
	}
	return false
}

// makeSlugForToC follows the GitHub anchor rules closely enough for ASCII
// titles: lowercase, spaces to hyphens, punctuation dropped.
func makeSlugForToC(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
