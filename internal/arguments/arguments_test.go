package arguments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
)

type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (f *fakeClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	p := req.Messages[len(req.Messages)-1].Content
	f.mu.Lock()
	f.prompts = append(f.prompts, p)
	f.mu.Unlock()
	out, err := f.reply(p)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: out}}}}, nil
}

func TestExtractSections(t *testing.T) {
	content := "Lead text.\n== History ==\nOld things.\n== Empty ==\n   \n=== Detail ===\nFine print."
	secs := ExtractSections(content)
	if len(secs) != 3 {
		t.Fatalf("expected 3 sections, got %+v", secs)
	}
	if secs[0].Title != "Introduction" || secs[1].Title != "History" || secs[2].Title != "Detail" {
		t.Fatalf("unexpected titles: %+v", secs)
	}
	if strings.TrimSpace(secs[1].Content) != "Old things." {
		t.Fatalf("unexpected content %q", secs[1].Content)
	}
	if got := ExtractSections("== Only ==\n"); len(got) != 0 {
		t.Fatalf("expected no sections, got %+v", got)
	}
}

func TestAnalyze_OrderLimitsAndFailures(t *testing.T) {
	fc := &fakeClient{reply: func(p string) (string, error) {
		switch {
		case strings.Contains(p, `"Introduction"`):
			return "```json\n[{\"argument\":\"c\",\"priority\":3},{\"argument\":\"a\",\"priority\":1},{\"argument\":\"b\",\"priority\":2}]\n```", nil
		case strings.Contains(p, `"History"`):
			return "[]", nil
		case strings.Contains(p, `"Broken"`):
			return "", errors.New("timeout")
		}
		return `{"argument":"single","priority":1}`, nil
	}}
	a := &Analyzer{Chat: &llm.Chat{Client: fc, Model: "m"}, MaxSections: 4}
	content := "Intro.\n== History ==\nPast.\n== Broken ==\nX.\n== Reception ==\nY.\n== Sixth ==\nZ."
	got := a.Analyze(context.Background(), content)
	if len(fc.prompts) != 4 {
		t.Fatalf("expected 4 section calls, got %d", len(fc.prompts))
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sections with arguments, got %+v", got)
	}
	if got[0].Section != "Introduction" || len(got[0].Arguments) != 2 || got[0].Arguments[0].Argument != "a" || got[0].Arguments[1].Argument != "b" {
		t.Fatalf("unexpected intro arguments: %+v", got[0])
	}
	if got[1].Section != "Reception" || got[1].Arguments[0].Argument != "single" {
		t.Fatalf("unexpected second section: %+v", got[1])
	}
}

func TestAnalyze_TrimsLongSections(t *testing.T) {
	fc := &fakeClient{reply: func(string) (string, error) { return "[]", nil }}
	a := &Analyzer{Chat: &llm.Chat{Client: fc, Model: "gpt-oss-20b"}}
	long := strings.Repeat("Word word word word. ", 2000)
	a.Analyze(context.Background(), long)
	if len(fc.prompts) != 1 {
		t.Fatalf("expected one call, got %d", len(fc.prompts))
	}
	if len(fc.prompts[0]) >= len(long) {
		t.Fatalf("expected the excerpt to be trimmed, prompt has %d bytes", len(fc.prompts[0]))
	}
	if !strings.Contains(fc.prompts[0], "Word word word word.\"\"\"") {
		t.Fatalf("expected the excerpt to end at a sentence boundary")
	}
}

func TestAnalyze_Unconfigured(t *testing.T) {
	if got := (&Analyzer{}).Analyze(context.Background(), "text"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	fc := &fakeClient{reply: func(p string) (string, error) {
		if !strings.Contains(p, `From section "History"`) {
			t.Errorf("prompt lacks section tag: %s", p)
		}
		return `[{"argument":"one","section":"History"},{"argument":"two","section":"Intro"},{"argument":"three","section":"Intro"}]`, nil
	}}
	a := &Analyzer{Chat: &llm.Chat{Client: fc, Model: "m"}}
	in := []SectionArguments{{Section: "History", Arguments: []Argument{{Argument: "x", Priority: 1}}}}
	got, err := a.Summarize(context.Background(), in, 2)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(got) != 2 || got[0].Section != "History" {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got, err := a.Summarize(context.Background(), nil, 5); err != nil || got != nil {
		t.Fatalf("empty input: %+v %v", got, err)
	}
}
