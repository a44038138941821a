package classify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Batcher splits sentences into fixed-size batches and runs them through a
// Classifier with bounded concurrency.
type Batcher struct {
	Classifier    Classifier
	BatchSize     int
	MaxConcurrent int
}

// Run returns one Result per text, indexed like texts. A failed batch, or
// one answered with the wrong number of predictions, labels each of its
// sentences Error with zero confidence; sibling batches are unaffected.
func (b *Batcher) Run(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	for i := range results {
		results[i] = Result{Index: i, Label: Error}
	}
	if len(texts) == 0 || b.Classifier == nil {
		return results
	}
	size := b.BatchSize
	if size < 1 {
		size = DefaultBatchSize
	}
	g, gctx := errgroup.WithContext(ctx)
	if b.MaxConcurrent > 0 {
		g.SetLimit(b.MaxConcurrent)
	}
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		g.Go(func() error {
			preds, err := b.Classifier.Classify(gctx, texts[start:end])
			if err == nil && len(preds) != end-start {
				err = fmt.Errorf("%w: got %d for %d", ErrBatchMismatch, len(preds), end-start)
			}
			if err != nil {
				log.Warn().Err(err).Int("start", start).Int("size", end-start).Msg("classifier batch failed")
				return nil
			}
			for i, p := range preds {
				label := p.Label
				if label != Subjective && label != Neutral {
					label = Error
				}
				conf := clamp01(p.Confidence)
				if label == Error {
					conf = 0
				}
				results[start+i] = Result{Index: start + i, Label: label, Confidence: conf}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
