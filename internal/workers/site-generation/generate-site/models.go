// internal/workers/site-generation/generate-site/models.go
package generatesite

import "site-pipeline/internal/models"

// Input is read from the job variables.
type Input struct {
	Intake          models.ProjectIntake `json:"intake"`
	ExistingPack    *models.ContentPack  `json:"existingPack,omitempty"`
	ForceRegenerate bool                 `json:"forceRegenerate,omitempty"`
}

// Output is written back to the process instance.
type Output struct {
	Success       bool                   `json:"success"`
	RunID         string                 `json:"runId"`
	ProjectID     string                 `json:"projectId"`
	ContentHash   string                 `json:"contentHash,omitempty"`
	CacheHit      bool                   `json:"cacheHit"`
	FileCount     int                    `json:"fileCount"`
	OutputDir     string                 `json:"outputDir,omitempty"`
	RequiredTodos int                    `json:"requiredTodos"`
	Warnings      []models.PipelineError `json:"warnings,omitempty"`
}
