package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClassifier calls a hosted subjectivity model that answers
// {"probabilities": [[p_subjective, p_neutral], ...]}.
type HTTPClassifier struct {
	Endpoint   string
	HTTPClient *http.Client
	// Threshold defaults to DefaultThreshold.
	Threshold float64
}

type modelRequest struct {
	Sentences []string `json:"sentences"`
}

type modelResponse struct {
	Probabilities [][]float64 `json:"probabilities"`
}

func (c *HTTPClassifier) Classify(ctx context.Context, texts []string) ([]Prediction, error) {
	payload, err := json.Marshal(modelRequest{Sentences: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status: %s", resp.Status)
	}
	var body modelResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode classifier response: %w", err)
	}
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	out := make([]Prediction, 0, len(body.Probabilities))
	for _, probs := range body.Probabilities {
		out = append(out, fromProbabilities(probs, threshold))
	}
	return out, nil
}

func fromProbabilities(probs []float64, threshold float64) Prediction {
	if len(probs) == 0 {
		return Prediction{Label: Error}
	}
	subj := probs[0]
	neut := 1 - subj
	if len(probs) > 1 {
		neut = probs[1]
	}
	if subj > threshold {
		return Prediction{Label: Subjective, Confidence: subj}
	}
	return Prediction{Label: Neutral, Confidence: neut}
}
