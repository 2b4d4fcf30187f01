package orchestrator

import (
	"time"

	"site-pipeline/internal/models"
	cr "site-pipeline/internal/workers/agents/code-renderer"
)

// GenerateRequest is the inbound call. ExistingPack, when set, is checked for
// freshness before the store is consulted.
type GenerateRequest struct {
	Intake          models.ProjectIntake `json:"intake"`
	ExistingPack    *models.ContentPack  `json:"existingPack,omitempty"`
	ForceRegenerate bool                 `json:"forceRegenerate,omitempty"`
}

// runState is owned by the goroutine executing Generate.
type runState struct {
	run        *models.PipelineRun
	intake     models.ProjectIntake
	intakeHash string
	strategy   models.StrategyOutput
	pack       *models.ContentPack
	verdict    *models.EditorVerdict
	rendered   *cr.Output
	todos      []models.TodoMarker
	started    time.Time
}
