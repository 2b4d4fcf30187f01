// internal/workers/agents/editor/models.go
package editor

import (
	"time"

	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/models"
)

type Input struct {
	Strategy models.StrategyOutput `json:"strategy"`
	Pack     *models.ContentPack   `json:"pack"`
	// Files switches the review to the rendered code.
	Files []models.GeneratedFile `json:"files,omitempty"`
}

type Output struct {
	Verdict  models.EditorVerdict `json:"verdict"`
	Usage    llm.Usage            `json:"usage"`
	Duration time.Duration        `json:"duration"`
	Attempts int                  `json:"attempts"`
}
