// Package segment decomposes an article's plain text into sections and
// position-exact sentence records.
package segment

import (
	"regexp"
	"strconv"
	"strings"
)

// IntroductionTitle names the implicit section that holds text appearing
// before the first header, or the whole text when there are no headers.
const IntroductionTitle = "Introduction"

// IntroductionUID is the uid of the implicit leading section. Header
// sections have level >= 2, so it never collides with "level-index" uids.
const IntroductionUID = "0-0"

// IntroductionLevel is the level reported for the implicit section.
const IntroductionLevel = 2

// headerRe matches one "== Title ==" line. RE2 has no backreferences, so the
// closing run is captured separately and reconciled in Headers.
var headerRe = regexp.MustCompile(`(?m)^[ \t]*(={2,6})[ \t]*(.*?)[ \t]*(={2,6})[ \t]*$`)

// Section is a contiguous span of the text. Start is where the header line
// begins (0 for the implicit leading section) and End is where the next
// section begins, so the spans of all sections partition the text.
// ContentStart is the first offset after the header line.
type Section struct {
	UID          string `json:"uid"`
	Title        string `json:"title"`
	Level        int    `json:"level"`
	Start        int    `json:"start"`
	ContentStart int    `json:"content_start"`
	End          int    `json:"end"`
}

// Content returns the section body without its header line.
func (s Section) Content(text string) string {
	return text[s.ContentStart:s.End]
}

// Header is one header line found in the text.
type Header struct {
	Level int
	Title string
	Start int // offset of the first character of the line
	End   int // offset just past the closing run and trailing blanks
}

// Headers returns all header lines in document order. When the opening and
// closing runs differ in length the shorter run sets the level and the
// surplus '=' of the longer one belongs to the title, so "=== X ==" is a
// level 2 header titled "= X".
func Headers(text string) []Header {
	var out []Header
	for _, m := range headerRe.FindAllStringSubmatchIndex(text, -1) {
		level := min(m[3]-m[2], m[7]-m[6])
		out = append(out, Header{
			Level: level,
			Title: strings.TrimSpace(text[m[2]+level : m[7]-level]),
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// Sections splits text into sections. uids are "level-index" where index is
// the header's discovery order, so repeated titles stay distinct and the
// same text always yields the same uids.
func Sections(text string) []Section {
	headers := Headers(text)
	if len(headers) == 0 {
		return []Section{{
			UID:   IntroductionUID,
			Title: IntroductionTitle,
			Level: IntroductionLevel,
			End:   len(text),
		}}
	}
	out := make([]Section, 0, len(headers)+1)
	if headers[0].Start > 0 {
		out = append(out, Section{
			UID:   IntroductionUID,
			Title: IntroductionTitle,
			Level: IntroductionLevel,
			End:   headers[0].Start,
		})
	}
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].Start
		}
		out = append(out, Section{
			UID:          strconv.Itoa(h.Level) + "-" + strconv.Itoa(i),
			Title:        h.Title,
			Level:        h.Level,
			Start:        h.Start,
			ContentStart: h.End,
			End:          end,
		})
	}
	return out
}
