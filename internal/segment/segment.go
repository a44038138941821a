package segment

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"github.com/rs/zerolog/log"
)

// Record is one sentence with its owning section and its span in the
// original text. Approximate is set when the sentence could not be located
// exactly and its span was assumed to start at the search cursor.
type Record struct {
	SectionUID    string `json:"section_uid"`
	SectionTitle  string `json:"section_title"`
	SectionLevel  int    `json:"section_level"`
	SectionIndex  int    `json:"section_index"`
	SentenceIndex int    `json:"sentence_index"`
	Text          string `json:"text"`
	Start         int    `json:"start"`
	End           int    `json:"end"`
	Approximate   bool   `json:"approximate,omitempty"`
}

// Tokenizer splits a block of text into sentences.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Punkt adapts the punkt sentence tokenizer.
type Punkt struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewEnglish returns a Punkt tokenizer trained for English.
func NewEnglish() (*Punkt, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &Punkt{tok: tok}, nil
}

func (p *Punkt) Tokenize(text string) []string {
	ss := p.tok.Tokenize(text)
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Text)
	}
	return out
}

// Segmenter produces sentence records. Records are recomputed on every call
// and never patched.
type Segmenter struct {
	Tokenizer Tokenizer
}

// Segment returns the sentence records of text in document order. Blank
// sections contribute nothing.
func (s *Segmenter) Segment(text string) []Record {
	var out []Record
	for secIdx, sec := range Sections(text) {
		body := sec.Content(text)
		if strings.TrimSpace(body) == "" {
			continue
		}
		cursor := sec.ContentStart
		sentIdx := 0
		for _, sentence := range s.Tokenizer.Tokenize(body) {
			needle := strings.TrimSpace(sentence)
			if needle == "" {
				continue
			}
			rec := Record{
				SectionUID:    sec.UID,
				SectionTitle:  sec.Title,
				SectionLevel:  sec.Level,
				SectionIndex:  secIdx,
				SentenceIndex: sentIdx,
				Text:          needle,
			}
			if i := strings.Index(text[cursor:sec.End], needle); i >= 0 {
				rec.Start = cursor + i
				rec.End = rec.Start + len(needle)
			} else {
				rec.Start = cursor
				rec.End = min(cursor+len(needle), len(text))
				rec.Approximate = true
				log.Warn().Str("section", sec.UID).Int("offset", cursor).Str("sentence", needle).Msg("sentence not found verbatim; offset approximated")
			}
			cursor = min(rec.End, sec.End)
			out = append(out, rec)
			sentIdx++
		}
	}
	return out
}

// Context returns the target sentence joined with up to before preceding and
// after following sentences from the same section. An out-of-range index
// yields "".
func Context(records []Record, index, before, after int) string {
	if index < 0 || index >= len(records) {
		return ""
	}
	uid := records[index].SectionUID
	var same []string
	pos := -1
	for i, r := range records {
		if r.SectionUID != uid {
			continue
		}
		if i == index {
			pos = len(same)
		}
		same = append(same, r.Text)
	}
	lo := max(pos-max(before, 0), 0)
	hi := min(pos+max(after, 0)+1, len(same))
	return strings.Join(same[lo:hi], " ")
}
