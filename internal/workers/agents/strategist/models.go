// internal/workers/agents/strategist/models.go
package strategist

import (
	"time"

	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/models"
)

type Input struct {
	Intake models.ProjectIntake `json:"intake"`
}

type Output struct {
	Strategy models.StrategyOutput `json:"strategy"`
	Usage    llm.Usage             `json:"usage"`
	Duration time.Duration         `json:"duration"`
	Attempts int                   `json:"attempts"`
}
