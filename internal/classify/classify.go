// Package classify defines the batching contract around an external
// sentence-level subjectivity classifier.
package classify

import (
	"context"
	"errors"
	"strings"
)

// Label is a classifier verdict.
type Label string

const (
	Neutral    Label = "NEUTRAL"
	Subjective Label = "SUBJECTIVE"
	// Error marks a sentence whose batch failed. It is never a low
	// confidence Neutral.
	Error Label = "ERROR"
)

// ParseLabel maps loose model output onto a Label.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUBJECTIVE", "SUBJ", "BIASED":
		return Subjective, true
	case "NEUTRAL", "OBJECTIVE", "NEUT":
		return Neutral, true
	}
	return Error, false
}

// DefaultBatchSize is the number of sentences sent per classifier call.
const DefaultBatchSize = 16

// DefaultThreshold is the subjective probability above which a sentence is
// labelled Subjective.
const DefaultThreshold = 0.6

// ErrBatchMismatch is returned when a classifier answers with a different
// number of predictions than it was given sentences.
var ErrBatchMismatch = errors.New("classifier returned wrong number of predictions")

// Prediction is one classifier verdict.
type Prediction struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Result attaches a prediction to a sentence record by index.
type Result struct {
	Index      int     `json:"index"`
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels a batch of sentences, one prediction per input in order.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]Prediction, error)
}
