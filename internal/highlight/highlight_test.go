package highlight

import (
	"strings"
	"testing"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/classify"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

const article = "Intro text here.\n\n== History ==\nAI is transformative. It changes everything.\n"

func subj(idx int, text string) Classified {
	return Classified{
		Record: segment.Record{Text: text},
		Result: classify.Result{Index: idx, Label: classify.Subjective, Confidence: 0.9},
	}
}

func TestFormatHeaders(t *testing.T) {
	got := FormatHeaders(article)
	want := "<div class=\"section-content\">\n<p>Intro text here.</p>\n<h2>History</h2>\n<p>AI is transformative. It changes everything.</p>\n</div>"
	if got != want {
		t.Fatalf("unexpected markup:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatHeaders_LevelsAndEscaping(t *testing.T) {
	got := FormatHeaders("= Top =\na < b & c\n==== Deep ====\ntail")
	for _, want := range []string{"<h1>Top</h1>", "<h3>Deep</h3>", "<p>a &lt; b &amp; c</p>", "<p>tail</p>"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<p><h") {
		t.Fatalf("heading nested in paragraph:\n%s", got)
	}
}

func TestRender_NoClassificationsOnlyFormats(t *testing.T) {
	if got := Render(article, nil); got != FormatHeaders(article) {
		t.Fatalf("expected header rewrite only, got:\n%s", got)
	}
	neutral := []Classified{{Record: segment.Record{Text: "Intro text here."}, Result: classify.Result{Label: classify.Neutral}}}
	if got := Render(article, neutral); strings.Contains(got, "<span") {
		t.Fatalf("neutral sentences must not be highlighted:\n%s", got)
	}
}

func TestRender_LongestMatchFirst(t *testing.T) {
	out := Render(article, []Classified{
		subj(1, "AI is transformative."),
		subj(0, "AI is transformative. It changes everything."),
	})
	if n := strings.Count(out, "<span"); n != 1 {
		t.Fatalf("expected exactly one highlight, got %d:\n%s", n, out)
	}
	hs, err := Highlights(out)
	if err != nil {
		t.Fatalf("highlights: %v", err)
	}
	if len(hs) != 1 || hs[0].Index != 0 || hs[0].Text != "AI is transformative. It changes everything." {
		t.Fatalf("unexpected highlights: %+v", hs)
	}
}

func TestRender_WordBoundaryGuard(t *testing.T) {
	out := Render("Bobcat sat down. The cat sat down.", []Classified{subj(0, "cat sat down.")})
	if !strings.Contains(out, "The <span") || strings.Contains(out, "Bob<span") {
		t.Fatalf("expected match after the word boundary only:\n%s", out)
	}
	quoted := Render(`He said "great idea" loudly.`, []Classified{subj(0, "great idea")})
	if strings.Contains(quoted, "<span") {
		t.Fatalf("quoted match must be skipped:\n%s", quoted)
	}
}

func TestRender_SkipsShortAndMissing(t *testing.T) {
	out := Render("Yes. No. Maybe so.", []Classified{subj(0, "Yes."), subj(1, "Not in the text at all.")})
	if strings.Contains(out, "<span") {
		t.Fatalf("expected no highlights:\n%s", out)
	}
}

func TestRender_RepeatedSentenceEachOnce(t *testing.T) {
	out := Render("Truly amazing. Truly amazing.", []Classified{subj(0, "Truly amazing."), subj(1, "Truly amazing.")})
	hs, err := Highlights(out)
	if err != nil {
		t.Fatalf("highlights: %v", err)
	}
	if len(hs) != 2 || hs[0].Index != 0 || hs[1].Index != 1 {
		t.Fatalf("expected both occurrences claimed in order: %+v", hs)
	}
}

func TestRender_NeverInsideTags(t *testing.T) {
	out := Render("section-content is a class name here.", []Classified{subj(0, "section-content")})
	if !strings.HasPrefix(out, "<div class=\"section-content\">") {
		t.Fatalf("tag attribute was rewritten:\n%s", out)
	}
	if !strings.Contains(out, "<p><span") {
		t.Fatalf("expected the paragraph occurrence to be highlighted:\n%s", out)
	}
}

func TestInContext(t *testing.T) {
	got := InContext("One. Two. Three.", "Two.")
	want := `One. <span class="context-target" style="` + ContextStyle + `">Two.</span> Three.`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if got := InContext("One & two.", "absent"); got != "One &amp; two." {
		t.Fatalf("unexpected %q", got)
	}
}

func TestHeadings(t *testing.T) {
	hs := Headings(FormatHeaders("= A =\nx\n== B & C ==\ny\n=== D ===\nz"))
	if len(hs) != 3 {
		t.Fatalf("expected 3 headings, got %+v", hs)
	}
	if hs[0].Level != 1 || hs[1].Text != "B & C" || hs[2].Level != 3 {
		t.Fatalf("unexpected headings: %+v", hs)
	}
}
