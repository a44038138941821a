// Package highlight turns article text into display markup and marks the
// sentences classified as subjective.
package highlight

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

// Style is the inline style of a subjective sentence.
const Style = "background-color: #ffdddd; font-weight: bold;"

// ContextStyle is the inline style of the target sentence inside its
// surrounding context.
const ContextStyle = "background-color: #fff4bf; font-weight: bold;"

// MinSentenceLen is the shortest trimmed sentence, in characters, that is
// highlighted.
const MinSentenceLen = 5

// SubjectiveClass is the class of highlight spans.
const SubjectiveClass = "subjective"

var (
	singleHeaderRe = regexp.MustCompile(`(?m)^[ \t]*=[ \t]*([^=\n]+?)[ \t]*=[ \t]*$`)
	blockSplitRe   = regexp.MustCompile(`\n{2,}`)
	headingBlockRe = regexp.MustCompile(`^<h[1-3]>[^\n]*</h[1-3]>$`)
)

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Classified pairs a sentence record with its classification.
type Classified struct {
	Record segment.Record
	Result classify.Result
}

type headerLine struct {
	level      int
	title      string
	start, end int
}

func headerLines(text string) []headerLine {
	var out []headerLine
	for _, h := range segment.Headers(text) {
		out = append(out, headerLine{level: min(h.Level, 3), title: h.Title, start: h.Start, end: h.End})
	}
	for _, m := range singleHeaderRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, headerLine{level: 1, title: strings.TrimSpace(text[m[2]:m[3]]), start: m[0], end: m[1]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

// FormatHeaders rewrites header lines as h1-h3 elements, splits the text on
// blank lines and wraps every non-heading block in a paragraph. Text is
// escaped; quotes are left as they are.
func FormatHeaders(text string) string {
	var b strings.Builder
	pos := 0
	for _, h := range headerLines(text) {
		b.WriteString(escaper.Replace(text[pos:h.start]))
		fmt.Fprintf(&b, "\n<h%d>%s</h%d>\n", h.level, escaper.Replace(h.title), h.level)
		pos = h.end
	}
	b.WriteString(escaper.Replace(text[pos:]))

	var parts []string
	for _, block := range blockSplitRe.Split(b.String(), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if headingBlockRe.MatchString(block) {
			parts = append(parts, block)
			continue
		}
		parts = append(parts, "<p>"+block+"</p>")
	}
	return "<div class=\"section-content\">\n" + strings.Join(parts, "\n") + "\n</div>"
}

type span struct{ start, end int }

func overlaps(s span, set []span) bool {
	for _, o := range set {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}

func tagSpans(markup string) []span {
	var out []span
	for i := 0; i < len(markup); {
		open := strings.IndexByte(markup[i:], '<')
		if open < 0 {
			break
		}
		end := strings.IndexByte(markup[i+open:], '>')
		if end < 0 {
			break
		}
		out = append(out, span{i + open, i + open + end + 1})
		i += open + end + 1
	}
	return out
}

func isGuardRune(r rune) bool {
	return r == '"' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// guarded reports whether markup[start:end] is not glued to a word or a
// quotation character on either side.
func guarded(markup string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(markup[:start]); isGuardRune(r) {
			return false
		}
	}
	if end < len(markup) {
		if r, _ := utf8.DecodeRuneInString(markup[end:]); isGuardRune(r) {
			return false
		}
	}
	return true
}

type claim struct {
	span
	index int
}

// Render formats text and wraps each subjective sentence in a highlight
// span. Longer sentences claim their text first and a sentence never
// matches inside a span already claimed or inside a tag. Sentences that
// cannot be found are left unhighlighted.
func Render(text string, classified []Classified) string {
	markup := FormatHeaders(text)

	var cands []Classified
	for _, c := range classified {
		if c.Result.Label != classify.Subjective {
			continue
		}
		if utf8.RuneCountInString(strings.TrimSpace(c.Record.Text)) < MinSentenceLen {
			continue
		}
		cands = append(cands, c)
	}
	if len(cands) == 0 {
		return markup
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return utf8.RuneCountInString(strings.TrimSpace(cands[i].Record.Text)) >
			utf8.RuneCountInString(strings.TrimSpace(cands[j].Record.Text))
	})

	protected := tagSpans(markup)
	var claims []claim
	for _, c := range cands {
		needle := escaper.Replace(strings.TrimSpace(c.Record.Text))
		for from := 0; from < len(markup); {
			i := strings.Index(markup[from:], needle)
			if i < 0 {
				break
			}
			s := span{from + i, from + i + len(needle)}
			if guarded(markup, s.start, s.end) && !overlaps(s, protected) {
				claims = append(claims, claim{span: s, index: c.Result.Index})
				protected = append(protected, s)
				break
			}
			from = s.start + 1
		}
	}
	sort.Slice(claims, func(i, j int) bool { return claims[i].start < claims[j].start })

	var b strings.Builder
	pos := 0
	for _, c := range claims {
		b.WriteString(markup[pos:c.start])
		b.WriteString(`<span class="` + SubjectiveClass + `" data-index="` + strconv.Itoa(c.index) + `" style="` + Style + `">`)
		b.WriteString(markup[c.start:c.end])
		b.WriteString("</span>")
		pos = c.end
	}
	b.WriteString(markup[pos:])
	return b.String()
}

// InContext escapes context and wraps every occurrence of target in it. The
// context is returned escaped but otherwise unchanged when target is blank
// or absent.
func InContext(context, target string) string {
	esc := escaper.Replace(context)
	target = strings.TrimSpace(target)
	if target == "" {
		return esc
	}
	needle := escaper.Replace(target)
	return strings.ReplaceAll(esc, needle, `<span class="context-target" style="`+ContextStyle+`">`+needle+"</span>")
}
