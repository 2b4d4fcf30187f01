// internal/workers/agents/content-pack-generator/models.go
package contentpackgenerator

import (
	"time"

	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/models"
)

type Input struct {
	Intake   models.ProjectIntake  `json:"intake"`
	Strategy models.StrategyOutput `json:"strategy"`
	Skeleton []models.PageSkeleton `json:"skeleton"`
	// Revisions and Issues come from the previous attempt, if any.
	Revisions []models.RevisionInstruction `json:"revisions,omitempty"`
	Issues    []string                     `json:"issues,omitempty"`
	Attempt   int                          `json:"attempt"`
}

type Output struct {
	Pack        *models.ContentPack `json:"pack"`
	Usage       llm.Usage           `json:"usage"`
	Duration    time.Duration       `json:"duration"`
	Invocations int                 `json:"invocations"`
	Warnings    []Warning           `json:"warnings,omitempty"`
}

// Warning is a sub-generation that failed soft.
type Warning struct {
	Task    string              `json:"task"`
	Code    apperrors.ErrorCode `json:"code"`
	Message string              `json:"message"`
}

// corePack is the part of the pack produced by the main generation call.
type corePack struct {
	Settings   models.SiteSettings        `json:"settings"`
	Pages      []models.Page              `json:"pages"`
	Navigation models.Navigation          `json:"navigation"`
	Footer     models.Footer              `json:"footer"`
	SEO        map[string]models.SEOEntry `json:"seo"`
}
