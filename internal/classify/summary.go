package classify

import (
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/segment"
)

// Level is the coarse bias rating of a document.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

// Summary aggregates the results of one document.
type Summary struct {
	Total          int            `json:"total"`
	Subjective     int            `json:"subjective"`
	Neutral        int            `json:"neutral"`
	Errors         int            `json:"errors"`
	SubjectivePct  float64        `json:"subjective_pct"`
	NeutralPct     float64        `json:"neutral_pct"`
	MeanConfidence float64        `json:"mean_confidence"`
	Level          Level          `json:"level"`
	BySection      map[string]int `json:"by_section"`
}

// Summarize computes totals and the bias level. Percentages are over all
// sentences, errors included; mean confidence ignores errors. BySection
// counts subjective sentences per section title.
func Summarize(records []segment.Record, results []Result) Summary {
	s := Summary{Total: len(results), BySection: map[string]int{}}
	var confSum float64
	for _, r := range results {
		switch r.Label {
		case Subjective:
			s.Subjective++
			if r.Index >= 0 && r.Index < len(records) {
				s.BySection[records[r.Index].SectionTitle]++
			}
		case Neutral:
			s.Neutral++
		default:
			s.Errors++
			continue
		}
		confSum += r.Confidence
	}
	if s.Total > 0 {
		s.SubjectivePct = 100 * float64(s.Subjective) / float64(s.Total)
		s.NeutralPct = 100 * float64(s.Neutral) / float64(s.Total)
	}
	if labelled := s.Subjective + s.Neutral; labelled > 0 {
		s.MeanConfidence = confSum / float64(labelled)
	}
	switch {
	case s.SubjectivePct >= 70:
		s.Level = LevelHigh
	case s.SubjectivePct >= 40:
		s.Level = LevelMedium
	default:
		s.Level = LevelLow
	}
	return s
}

// SubjectiveRecords returns the records labelled Subjective, in document order.
func SubjectiveRecords(records []segment.Record, results []Result) []segment.Record {
	var out []segment.Record
	for _, r := range results {
		if r.Label == Subjective && r.Index >= 0 && r.Index < len(records) {
			out = append(out, records[r.Index])
		}
	}
	return out
}
