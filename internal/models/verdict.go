// internal/models/verdict.go
package models

// Feedback severities.
const (
	SeverityCritical   = "critical"
	SeverityMajor      = "major"
	SeverityMinor      = "minor"
	SeveritySuggestion = "suggestion"
)

// EditorVerdict is persisted only as an audit trail.
type EditorVerdict struct {
	Approved  bool                  `json:"approved"`
	Scores    QualityScores         `json:"scores"`
	Feedback  []FeedbackItem        `json:"feedback"`
	Revisions []RevisionInstruction `json:"revisions,omitempty"`
	// Precheck is set when the verdict came from the structural precheck
	// without a model call.
	Precheck bool `json:"precheck,omitempty"`
}

// QualityScores are 1-10 per dimension plus the weighted aggregate.
type QualityScores struct {
	Content       float64 `json:"content"`
	Brand         float64 `json:"brand"`
	SEO           float64 `json:"seo"`
	Accessibility float64 `json:"accessibility"`
	Technical     float64 `json:"technical"`
	Aggregate     float64 `json:"aggregate"`
}

type FeedbackItem struct {
	Severity  string `json:"severity"`
	Dimension string `json:"dimension,omitempty"`
	Path      string `json:"path,omitempty"`
	Message   string `json:"message"`
}

// RevisionInstruction is addressed to a named upstream agent.
type RevisionInstruction struct {
	TargetAgent string   `json:"targetAgent"`
	Instruction string   `json:"instruction"`
	Priority    string   `json:"priority,omitempty"`
	Paths       []string `json:"paths,omitempty"`
}

// CriticalCount returns the number of critical feedback items.
func (v *EditorVerdict) CriticalCount() int {
	n := 0
	for _, f := range v.Feedback {
		if f.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
