// internal/workers/agents/code-renderer/models.go
package coderenderer

import (
	"time"

	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/models"
)

type Input struct {
	Pack   *models.ContentPack `json:"pack"`
	Addons []string            `json:"addons,omitempty"`
}

type Output struct {
	Files        []models.GeneratedFile `json:"files"`
	Dependencies []models.Dependency    `json:"dependencies"`
	EnvVars      []models.EnvVar        `json:"envVars"`
	Usage        llm.Usage              `json:"usage"`
	Duration     time.Duration          `json:"duration"`
	Invocations  int                    `json:"invocations"`
}

// modelOutput is the answer expected in model mode.
type modelOutput struct {
	Files        []models.GeneratedFile `json:"files"`
	Dependencies []models.Dependency    `json:"dependencies,omitempty"`
}
