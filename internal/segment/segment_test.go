package segment

import (
	"strings"
	"testing"
)

// periodTokenizer splits after every ". " so tests do not depend on a model.
type periodTokenizer struct{}

func (periodTokenizer) Tokenize(text string) []string {
	var out []string
	for _, part := range strings.SplitAfter(text, ". ") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

const twoSections = "Lead sentence one. Lead sentence two.\n\n== History ==\nIt began here. It grew.\n\n=== Early days ===\nSmall start.\n"

func TestSections_PartitionText(t *testing.T) {
	for _, text := range []string{
		twoSections,
		"== Top ==\nBody.",
		"no headers at all.",
		"",
		"  \n== A ==\n\n== A ==\nx",
	} {
		secs := Sections(text)
		if len(secs) == 0 {
			t.Fatalf("%q: no sections", text)
		}
		if secs[0].Start != 0 {
			t.Fatalf("%q: first section starts at %d", text, secs[0].Start)
		}
		var b strings.Builder
		for i, s := range secs {
			if i > 0 && secs[i-1].End != s.Start {
				t.Fatalf("%q: gap between %d and %d", text, i-1, i)
			}
			if s.ContentStart < s.Start || s.ContentStart > s.End {
				t.Fatalf("%q: content start out of span: %+v", text, s)
			}
			b.WriteString(text[s.Start:s.End])
		}
		if secs[len(secs)-1].End != len(text) {
			t.Fatalf("%q: last section ends at %d", text, secs[len(secs)-1].End)
		}
		if b.String() != text {
			t.Fatalf("%q: spans do not reconstruct text", text)
		}
	}
}

func TestSections_UIDsAndImplicitIntroduction(t *testing.T) {
	secs := Sections(twoSections)
	if len(secs) != 3 {
		t.Fatalf("expected 3 sections, got %+v", secs)
	}
	if secs[0].UID != IntroductionUID || secs[0].Title != IntroductionTitle {
		t.Fatalf("expected implicit introduction, got %+v", secs[0])
	}
	if secs[1].UID != "2-0" || secs[1].Title != "History" || secs[1].Level != 2 {
		t.Fatalf("unexpected section: %+v", secs[1])
	}
	if secs[2].UID != "3-1" || secs[2].Title != "Early days" || secs[2].Level != 3 {
		t.Fatalf("unexpected section: %+v", secs[2])
	}

	repeated := Sections("== A ==\nx\n== A ==\ny")
	if repeated[0].UID == repeated[1].UID {
		t.Fatalf("repeated titles must get distinct uids: %+v", repeated)
	}
	if repeated[0].Start != 0 {
		t.Fatalf("text starting with a header must not get an implicit section")
	}
}

func TestHeaders_MismatchedRunsUseShorterRun(t *testing.T) {
	hs := Headers("== Broken ===\ntext\n=== Uneven ==\nmore")
	if len(hs) != 2 {
		t.Fatalf("expected 2 headers, got %+v", hs)
	}
	if hs[0].Level != 2 || hs[0].Title != "Broken =" {
		t.Fatalf("unexpected first header %+v", hs[0])
	}
	if hs[1].Level != 2 || hs[1].Title != "= Uneven" {
		t.Fatalf("unexpected second header %+v", hs[1])
	}
	secs := Sections("== Broken ===\ntext\n=== Uneven ==\nmore")
	if len(secs) != 2 || secs[0].UID != "2-0" || secs[1].UID != "2-1" {
		t.Fatalf("unexpected sections %+v", secs)
	}
}

func TestHeaders_SingleEqualsIsNotASection(t *testing.T) {
	if hs := Headers("= Single =\ntext"); len(hs) != 0 {
		t.Fatalf("single = is not a section header, got %+v", hs)
	}
}

func TestSegment_OffsetsMatchText(t *testing.T) {
	seg := &Segmenter{Tokenizer: periodTokenizer{}}
	recs := seg.Segment(twoSections)
	if len(recs) != 5 {
		t.Fatalf("expected 5 records, got %d: %+v", len(recs), recs)
	}
	for _, r := range recs {
		if r.Approximate {
			t.Fatalf("unexpected approximate record %+v", r)
		}
		if got := strings.TrimSpace(twoSections[r.Start:r.End]); got != r.Text {
			t.Fatalf("span %d:%d = %q, want %q", r.Start, r.End, got, r.Text)
		}
	}
	if recs[2].SectionUID != "2-0" || recs[2].SectionIndex != 1 || recs[2].SentenceIndex != 0 {
		t.Fatalf("unexpected section metadata: %+v", recs[2])
	}
	if recs[3].SentenceIndex != 1 {
		t.Fatalf("expected per-section sentence index, got %+v", recs[3])
	}
}

func TestSegment_RepeatedSentencesAdvanceCursor(t *testing.T) {
	text := "Same words. Same words. Same words."
	recs := (&Segmenter{Tokenizer: periodTokenizer{}}).Segment(text)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Start < recs[i-1].End {
			t.Fatalf("records overlap: %+v %+v", recs[i-1], recs[i])
		}
	}
}

type rewritingTokenizer struct{}

func (rewritingTokenizer) Tokenize(text string) []string {
	return []string{strings.ReplaceAll(text, "\n", " ")}
}

func TestSegment_ApproximateWhenNotFound(t *testing.T) {
	text := "Line one\nline two."
	recs := (&Segmenter{Tokenizer: rewritingTokenizer{}}).Segment(text)
	if len(recs) != 1 || !recs[0].Approximate {
		t.Fatalf("expected one approximate record, got %+v", recs)
	}
	if recs[0].Start != 0 || recs[0].End != len(text) {
		t.Fatalf("expected span from cursor, got %d:%d", recs[0].Start, recs[0].End)
	}
}

func TestSegment_SkipsBlankSections(t *testing.T) {
	recs := (&Segmenter{Tokenizer: periodTokenizer{}}).Segment("== Empty ==\n   \n== Full ==\nOnly this.")
	if len(recs) != 1 || recs[0].SectionTitle != "Full" || recs[0].SectionIndex != 1 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestSegment_Punkt(t *testing.T) {
	tok, err := NewEnglish()
	if err != nil {
		t.Fatalf("tokenizer: %v", err)
	}
	text := "Dr. Smith arrived. He stayed for two days.\n\n== Later ==\nThe U.S. team left. Nobody noticed."
	recs := (&Segmenter{Tokenizer: tok}).Segment(text)
	if len(recs) == 0 {
		t.Fatal("expected records")
	}
	for _, r := range recs {
		if got := strings.TrimSpace(text[r.Start:r.End]); got != r.Text {
			t.Fatalf("span %d:%d = %q, want %q", r.Start, r.End, got, r.Text)
		}
	}
}

func TestContext_StaysInSection(t *testing.T) {
	recs := []Record{
		{SectionUID: "0-0", Text: "a0"},
		{SectionUID: "0-0", Text: "a1"},
		{SectionUID: "2-0", Text: "b0"},
		{SectionUID: "2-0", Text: "b1"},
		{SectionUID: "2-0", Text: "b2"},
		{SectionUID: "2-1", Text: "c0"},
		{SectionUID: "2-1", Text: "c1"},
	}
	if got := Context(recs, 5, 1, 1); got != "c0 c1" {
		t.Fatalf("got %q", got)
	}
	if got := Context(recs, 2, 1, 1); got != "b0 b1" {
		t.Fatalf("got %q", got)
	}
	if got := Context(recs, 3, 5, 5); got != "b0 b1 b2" {
		t.Fatalf("got %q", got)
	}
	if got := Context(recs, 4, 0, 0); got != "b2" {
		t.Fatalf("got %q", got)
	}
	if got := Context(recs, 7, 1, 1); got != "" {
		t.Fatalf("out of range index must yield empty string, got %q", got)
	}
	if got := Context(recs, -1, 1, 1); got != "" {
		t.Fatalf("negative index must yield empty string, got %q", got)
	}
}
