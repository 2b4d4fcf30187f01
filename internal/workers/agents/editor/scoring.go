// internal/workers/agents/editor/scoring.go
package editor

import (
	"math"

	"site-pipeline/internal/contentpack"
	"site-pipeline/internal/models"
)

// Dimension weights of the aggregate score.
const (
	WeightContent       = 0.25
	WeightBrand         = 0.20
	WeightSEO           = 0.20
	WeightAccessibility = 0.15
	WeightTechnical     = 0.20
)

// Aggregate returns the weighted score rounded to one decimal.
func Aggregate(s models.QualityScores) float64 {
	sum := s.Content*WeightContent +
		s.Brand*WeightBrand +
		s.SEO*WeightSEO +
		s.Accessibility*WeightAccessibility +
		s.Technical*WeightTechnical
	return math.Round(sum*10) / 10
}

// Normalize clamps every dimension to 1..10 and recomputes the aggregate,
// discarding whatever aggregate the model reported.
func Normalize(v *models.EditorVerdict) {
	s := &v.Scores
	s.Content = clamp(s.Content)
	s.Brand = clamp(s.Brand)
	s.SEO = clamp(s.SEO)
	s.Accessibility = clamp(s.Accessibility)
	s.Technical = clamp(s.Technical)
	s.Aggregate = Aggregate(*s)
}

// ApplyPolicy sets Approved from the scores and feedback alone: the aggregate
// must reach threshold and no feedback may be critical.
func ApplyPolicy(v *models.EditorVerdict, threshold float64) {
	Normalize(v)
	v.Approved = v.Scores.Aggregate >= threshold && v.CriticalCount() == 0
}

// ShouldRequestRevision reports whether content should be regenerated.
func ShouldRequestRevision(v *models.EditorVerdict, threshold float64) bool {
	return !v.Approved || v.CriticalCount() > 0 || v.Scores.Aggregate < threshold
}

// Precheck validates the structural invariants without a model call. It
// returns nil when the pack passes.
func Precheck(pack *models.ContentPack) *models.EditorVerdict {
	issues := contentpack.Validate(pack)
	if len(issues) == 0 {
		return nil
	}

	v := &models.EditorVerdict{
		Precheck: true,
		Scores: models.QualityScores{
			Content: 1, Brand: 1, SEO: 1, Accessibility: 1, Technical: 1,
		},
	}
	for _, issue := range issues {
		v.Feedback = append(v.Feedback, models.FeedbackItem{
			Severity:  models.SeverityCritical,
			Dimension: "technical",
			Path:      issue.Path,
			Message:   issue.Message,
		})
		v.Revisions = append(v.Revisions, models.RevisionInstruction{
			TargetAgent: contentPackAgent,
			Instruction: issue.Message,
			Priority:    models.SeverityCritical,
			Paths:       []string{issue.Path},
		})
	}
	Normalize(v)
	return v
}

func clamp(score float64) float64 {
	switch {
	case math.IsNaN(score) || score < 1:
		return 1
	case score > 10:
		return 10
	default:
		return score
	}
}
