package discover

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/search"
)

type stubProvider struct {
	byTopic map[string][]string
	fail    map[string]bool
	limits  []int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Search(_ context.Context, q string, limit int) ([]search.Result, error) {
	s.limits = append(s.limits, limit)
	if s.fail[q] {
		return nil, errors.New("boom")
	}
	var out []search.Result
	for _, t := range s.byTopic[q] {
		out = append(out, search.Result{Title: t})
	}
	return out, nil
}

func TestDiscover_DedupesPreservingFirstSeenOrder(t *testing.T) {
	p := &stubProvider{byTopic: map[string][]string{
		"AI":      {"A", "B", "C"},
		"Finance": {"C", "D", "A", "E"},
	}}
	d := &Discoverer{Provider: p}
	got := d.Discover(context.Background(), []string{"AI", "Finance"}, 10, 0)
	want := []string{"A", "B", "C", "D", "E"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if p.limits[0] != 10 || p.limits[1] != 10 {
		t.Fatalf("expected per-topic limit to be forwarded, got %v", p.limits)
	}
}

func TestDiscover_FailedTopicIsNotFatal(t *testing.T) {
	p := &stubProvider{
		byTopic: map[string][]string{"Good": {"X", "Y"}},
		fail:    map[string]bool{"Bad": true},
	}
	got := (&Discoverer{Provider: p}).Discover(context.Background(), []string{"Bad", "Good"}, 5, 0)
	if !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Fatalf("expected titles from remaining topic, got %v", got)
	}
}

func TestDiscover_StopsAtCap(t *testing.T) {
	p := &stubProvider{byTopic: map[string][]string{
		"one": {"A", "B", "C"},
		"two": {"D"},
	}}
	got := (&Discoverer{Provider: p}).Discover(context.Background(), []string{"one", "two"}, 5, 2)
	if !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("expected cap of 2, got %v", got)
	}
	if len(p.limits) != 1 {
		t.Fatalf("expected second topic not to be searched, got %d searches", len(p.limits))
	}
}

func TestDiscover_NoProvider(t *testing.T) {
	if got := (&Discoverer{}).Discover(context.Background(), []string{"x"}, 5, 0); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestPerTopicLimit(t *testing.T) {
	cases := []struct{ target, topics, want int }{
		{20, 5, 10},
		{20, 2, 20},
		{3, 1, 10},
		{10, 0, 0},
	}
	for _, c := range cases {
		if got := PerTopicLimit(c.target, c.topics); got != c.want {
			t.Fatalf("PerTopicLimit(%d,%d)=%d want %d", c.target, c.topics, got, c.want)
		}
	}
	if Cap(10) != 20 {
		t.Fatalf("expected cap to double the target")
	}
}
