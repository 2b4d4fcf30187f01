// internal/workers/agents/content-pack-generator/prompt.go
package contentpackgenerator

import (
	"encoding/json"
	"fmt"
	"strings"

	"site-pipeline/internal/common/validation"
	"site-pipeline/internal/models"
)

const coreSystemPrompt = `You write all text for a small business website.
Fill every page and section of the skeleton, the navigation, the footer and
one SEO entry per page slug. Never invent facts such as addresses, phone
numbers, prices or registration numbers: write {{TODO: description}} instead.`

const legalSystemPrompt = `You draft the imprint and the privacy policy for a
small business website as markdown sections. Every fact you do not know
(addresses, register numbers, representatives, processors) must be written as
{{TODO: description}}.`

const componentsSystemPrompt = `You write the interface copy of a website: the
404 page, the loading indicator and short toast messages.`

var coreSchema = validation.MustCompile("contentpack.core", `{
	"type": "object",
	"required": ["settings", "pages", "navigation", "footer", "seo"],
	"properties": {
		"settings": {"type": "object"},
		"pages": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["slug", "sections"],
				"properties": {
					"slug": {"type": "string"},
					"title": {"type": "string"},
					"sections": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["type", "content"],
							"properties": {"id": {"type": "string"}, "type": {"type": "string"}, "content": {"type": "object"}}
						}
					}
				}
			}
		},
		"navigation": {"type": "object"},
		"footer": {"type": "object"},
		"seo": {"type": "object"}
	}
}`)

var legalSchema = validation.MustCompile("contentpack.legal", `{
	"type": "object",
	"required": ["imprint", "privacy"],
	"properties": {
		"imprint": {"$ref": "#/definitions/document"},
		"privacy": {"$ref": "#/definitions/document"}
	},
	"definitions": {
		"document": {
			"type": "object",
			"required": ["title", "sections"],
			"properties": {
				"title": {"type": "string"},
				"sections": {
					"type": "array",
					"items": {"type": "object", "required": ["heading", "body"]}
				}
			}
		}
	}
}`)

var componentsSchema = validation.MustCompile("contentpack.components", `{
	"type": "object",
	"required": ["notFound", "loading"],
	"properties": {
		"notFound": {"type": "object", "required": ["title", "message", "backLabel"]},
		"loading": {"type": "object", "required": ["message"]},
		"toasts": {"type": "object", "additionalProperties": {"type": "string"}}
	}
}`)

func buildCorePrompt(input *Input, revisions []models.RevisionInstruction) string {
	var parts []string

	parts = append(parts, intakeBlock(input.Intake))
	parts = append(parts, "\nStrategy:")
	parts = append(parts, toJSON(input.Strategy))
	parts = append(parts, "\nPage skeleton (keep slugs and section order):")
	parts = append(parts, toJSON(input.Skeleton))
	parts = append(parts, feedbackBlock(input.Issues, revisions)...)

	return strings.Join(parts, "\n")
}

func buildLegalPrompt(input *Input, revisions []models.RevisionInstruction) string {
	var parts []string

	parts = append(parts, intakeBlock(input.Intake))
	parts = append(parts, fmt.Sprintf("Brand: %s", input.Strategy.BrandStrategy.Identity.Name))
	parts = append(parts, feedbackBlock(nil, revisions)...)

	return strings.Join(parts, "\n")
}

func buildComponentsPrompt(input *Input, revisions []models.RevisionInstruction) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Brand: %s", input.Strategy.BrandStrategy.Identity.Name))
	parts = append(parts, fmt.Sprintf("Voice: %s", input.Strategy.BrandStrategy.Voice.Tone))
	if input.Intake.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", input.Intake.Language))
	}
	parts = append(parts, feedbackBlock(nil, revisions)...)

	return strings.Join(parts, "\n")
}

func intakeBlock(intake models.ProjectIntake) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("Business name: %s", intake.Name))
	parts = append(parts, fmt.Sprintf("Brief: %s", intake.Brief))
	parts = append(parts, fmt.Sprintf("Target audience: %s", intake.TargetAudience))
	if intake.Industry != "" {
		parts = append(parts, fmt.Sprintf("Industry: %s", intake.Industry))
	}
	if intake.Location != "" {
		parts = append(parts, fmt.Sprintf("Location: %s", intake.Location))
	}
	if intake.ContactEmail != "" {
		parts = append(parts, fmt.Sprintf("Contact email: %s", intake.ContactEmail))
	}
	if len(intake.SelectedAddons) > 0 {
		parts = append(parts, fmt.Sprintf("Add-ons: %s", strings.Join(intake.SelectedAddons, ", ")))
	}
	return strings.Join(parts, "\n")
}

func feedbackBlock(issues []string, revisions []models.RevisionInstruction) []string {
	var parts []string
	if len(issues) > 0 {
		parts = append(parts, "\nThe previous attempt failed these checks:")
		for _, i := range issues {
			parts = append(parts, "- "+i)
		}
	}
	if len(revisions) > 0 {
		parts = append(parts, "\nApply these editor revisions:")
		for _, r := range revisions {
			line := "- " + r.Instruction
			if len(r.Paths) > 0 {
				line += fmt.Sprintf(" (%s)", strings.Join(r.Paths, ", "))
			}
			parts = append(parts, line)
		}
	}
	return parts
}

func toJSON(v interface{}) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
