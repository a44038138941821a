package highlight

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Heading is one heading of rendered markup.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Headings lists the h1-h3 headings of rendered markup in order, for a
// table of contents.
func Headings(markup string) []Heading {
	z := html.NewTokenizer(strings.NewReader(markup))
	var out []Heading
	level := 0
	var text strings.Builder
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the walk is over
			return out
		case html.StartTagToken:
			name, _ := z.TagName()
			if l := headingLevel(string(name)); l > 0 {
				level = l
				text.Reset()
			}
		case html.TextToken:
			if level > 0 {
				text.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if l := headingLevel(string(name)); l > 0 && l == level {
				out = append(out, Heading{Level: level, Text: strings.TrimSpace(text.String())})
				level = 0
			}
		}
	}
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	}
	return 0
}

// Highlight is one highlighted sentence found in rendered markup.
type Highlight struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Highlights lists the highlight spans of rendered markup in document order.
func Highlights(markup string) ([]Highlight, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	var out []Highlight
	doc.Find("span." + SubjectiveClass).Each(func(_ int, s *goquery.Selection) {
		idx, err := strconv.Atoi(s.AttrOr("data-index", ""))
		if err != nil {
			idx = -1
		}
		out = append(out, Highlight{Index: idx, Text: s.Text()})
	})
	return out, nil
}
