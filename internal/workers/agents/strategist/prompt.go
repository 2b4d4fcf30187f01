// internal/workers/agents/strategist/prompt.go
package strategist

import (
	"encoding/json"
	"fmt"
	"strings"

	"site-pipeline/internal/common/validation"
	"site-pipeline/internal/models"
)

const systemPrompt = `You are a brand and content strategist for small business websites.
From the project intake, produce a brand strategy, a content strategy and a
site structure. Only use facts present in the intake.`

var outputSchema = validation.MustCompile("strategy", `{
	"type": "object",
	"required": ["brandStrategy", "siteStructure"],
	"properties": {
		"brandStrategy": {
			"type": "object",
			"required": ["identity"],
			"properties": {
				"identity": {
					"type": "object",
					"required": ["name", "tagline"],
					"properties": {
						"name": {"type": "string"},
						"tagline": {"type": "string"},
						"values": {"type": "array", "items": {"type": "string"}}
					}
				},
				"voice": {"type": "object"},
				"colors": {"type": "object"},
				"typography": {"type": "object"}
			}
		},
		"contentStrategy": {"type": "object"},
		"siteStructure": {
			"type": "object",
			"required": ["pages"],
			"properties": {
				"pages": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["slug", "title"],
						"properties": {"slug": {"type": "string"}, "title": {"type": "string"}}
					}
				}
			}
		}
	}
}`)

func buildUserPrompt(intake models.ProjectIntake) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Business name: %s", intake.Name))
	parts = append(parts, fmt.Sprintf("Brief: %s", intake.Brief))
	parts = append(parts, fmt.Sprintf("Target audience: %s", intake.TargetAudience))
	parts = append(parts, fmt.Sprintf("Style: %s", intake.Style))
	parts = append(parts, fmt.Sprintf("Package tier: %s", intake.PackageTier))

	if intake.Industry != "" {
		parts = append(parts, fmt.Sprintf("Industry: %s", intake.Industry))
	}
	if intake.Location != "" {
		parts = append(parts, fmt.Sprintf("Location: %s", intake.Location))
	}
	if intake.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", intake.Language))
	}
	if len(intake.SelectedAddons) > 0 {
		parts = append(parts, fmt.Sprintf("Add-ons: %s", strings.Join(intake.SelectedAddons, ", ")))
	}
	if len(intake.Pages) > 0 {
		pages, _ := json.MarshalIndent(intake.Pages, "", "  ")
		parts = append(parts, "\nPages requested by the customer:")
		parts = append(parts, string(pages))
	}

	return strings.Join(parts, "\n")
}
