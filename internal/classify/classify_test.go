package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/llm"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

// scriptedClassifier labels a text Subjective when it contains "!" and fails
// any batch that contains "FAIL".
type scriptedClassifier struct {
	mu      sync.Mutex
	batches [][]string
	short   bool
}

func (s *scriptedClassifier) Classify(_ context.Context, texts []string) ([]Prediction, error) {
	s.mu.Lock()
	s.batches = append(s.batches, append([]string(nil), texts...))
	s.mu.Unlock()
	var out []Prediction
	for _, t := range texts {
		if strings.Contains(t, "FAIL") {
			return nil, errors.New("boom")
		}
		if strings.Contains(t, "!") {
			out = append(out, Prediction{Label: Subjective, Confidence: 0.9})
		} else {
			out = append(out, Prediction{Label: Neutral, Confidence: 0.8})
		}
	}
	if s.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func TestBatcher_SplitsAndIndexes(t *testing.T) {
	texts := []string{"a", "b!", "c", "d", "e!"}
	sc := &scriptedClassifier{}
	res := (&Batcher{Classifier: sc, BatchSize: 2, MaxConcurrent: 2}).Run(context.Background(), texts)
	if len(sc.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(sc.batches))
	}
	for i, r := range res {
		if r.Index != i {
			t.Fatalf("result %d has index %d", i, r.Index)
		}
	}
	if res[1].Label != Subjective || res[4].Label != Subjective || res[0].Label != Neutral {
		t.Fatalf("unexpected labels: %+v", res)
	}
}

func TestBatcher_FailedBatchIsError(t *testing.T) {
	texts := []string{"ok", "FAIL", "fine", "also fine"}
	res := (&Batcher{Classifier: &scriptedClassifier{}, BatchSize: 2}).Run(context.Background(), texts)
	if res[0].Label != Error || res[1].Label != Error || res[0].Confidence != 0 {
		t.Fatalf("failed batch must be Error: %+v", res[:2])
	}
	if res[2].Label != Neutral || res[3].Label != Neutral {
		t.Fatalf("sibling batch must be unaffected: %+v", res[2:])
	}
}

func TestBatcher_MismatchIsError(t *testing.T) {
	res := (&Batcher{Classifier: &scriptedClassifier{short: true}}).Run(context.Background(), []string{"a", "b"})
	for _, r := range res {
		if r.Label != Error {
			t.Fatalf("expected Error on count mismatch, got %+v", r)
		}
	}
}

func TestHTTPClassifier_Threshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req modelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Sentences) != 3 {
			t.Errorf("bad request: %v %+v", err, req)
		}
		_ = json.NewEncoder(w).Encode(modelResponse{Probabilities: [][]float64{{0.9, 0.1}, {0.6, 0.4}, {0.2, 0.8}}})
	}))
	defer srv.Close()

	preds, err := (&HTTPClassifier{Endpoint: srv.URL}).Classify(context.Background(), []string{"x", "y", "z"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if preds[0].Label != Subjective || preds[0].Confidence != 0.9 {
		t.Fatalf("unexpected %+v", preds[0])
	}
	if preds[1].Label != Neutral || preds[1].Confidence != 0.4 {
		t.Fatalf("0.6 is not above the threshold: %+v", preds[1])
	}
	if preds[2].Label != Neutral || preds[2].Confidence != 0.8 {
		t.Fatalf("unexpected %+v", preds[2])
	}
}

func TestHTTPClassifier_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	if _, err := (&HTTPClassifier{Endpoint: srv.URL}).Classify(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error")
	}
}

type fakeChat struct{ reply string }

func (f fakeChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}}}, nil
}

func TestLLMClassifier_ParsesFencedArray(t *testing.T) {
	c := &LLMClassifier{Chat: &llm.Chat{Client: fakeChat{reply: "```json\n[{\"label\":\"subjective\",\"confidence\":0.7},{\"label\":\"NEUTRAL\",\"confidence\":0.95},{\"label\":\"??\"}]\n```"}, Model: "m"}}
	preds, err := c.Classify(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(preds) != 3 || preds[0].Label != Subjective || preds[1].Label != Neutral || preds[2].Label != Error {
		t.Fatalf("unexpected predictions: %+v", preds)
	}
}

func TestSummarize_Levels(t *testing.T) {
	records := []segment.Record{{SectionTitle: "Intro"}, {SectionTitle: "Intro"}, {SectionTitle: "History"}, {SectionTitle: "History"}}
	results := []Result{
		{Index: 0, Label: Subjective, Confidence: 0.9},
		{Index: 1, Label: Subjective, Confidence: 0.7},
		{Index: 2, Label: Neutral, Confidence: 0.8},
		{Index: 3, Label: Error},
	}
	s := Summarize(records, results)
	if s.Total != 4 || s.Subjective != 2 || s.Neutral != 1 || s.Errors != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.SubjectivePct != 50 || s.Level != LevelMedium {
		t.Fatalf("unexpected level: %+v", s)
	}
	if s.MeanConfidence < 0.7999 || s.MeanConfidence > 0.8001 {
		t.Fatalf("mean confidence must ignore errors, got %f", s.MeanConfidence)
	}
	if s.BySection["Intro"] != 2 || s.BySection["History"] != 0 {
		t.Fatalf("unexpected per-section counts: %+v", s.BySection)
	}
	if got := Summarize(nil, nil); got.Level != LevelLow || got.Total != 0 {
		t.Fatalf("empty summary: %+v", got)
	}
	high := Summarize(records[:1], []Result{{Index: 0, Label: Subjective, Confidence: 1}})
	if high.Level != LevelHigh {
		t.Fatalf("expected High, got %s", high.Level)
	}
	if got := SubjectiveRecords(records, results); len(got) != 2 {
		t.Fatalf("expected 2 subjective records, got %d", len(got))
	}
}
