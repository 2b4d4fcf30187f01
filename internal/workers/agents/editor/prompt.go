// internal/workers/agents/editor/prompt.go
package editor

import (
	"encoding/json"
	"fmt"
	"strings"

	"site-pipeline/internal/common/validation"
)

const contentSystemPrompt = `You are the editor of a website content pack.
Score it from 1 to 10 on content quality, brand consistency, SEO,
accessibility and technical accuracy. List feedback items with a severity of
critical, major, minor or suggestion, and revision instructions addressed to
the agent that should act on them ("content-pack" or "strategist").
Placeholders of the form {{TODO: ...}} are expected and are not defects.`

const codeSystemPrompt = `You review generated website source files. Score
them from 1 to 10 on the same five dimensions and list concrete defects. Every
visible text must come from the content data module; flag any hard-coded copy.`

var verdictSchema = validation.MustCompile("editor.verdict", `{
	"type": "object",
	"required": ["scores", "feedback"],
	"properties": {
		"approved": {"type": "boolean"},
		"scores": {
			"type": "object",
			"required": ["content", "brand", "seo", "accessibility", "technical"],
			"properties": {
				"content": {"type": "number"},
				"brand": {"type": "number"},
				"seo": {"type": "number"},
				"accessibility": {"type": "number"},
				"technical": {"type": "number"},
				"aggregate": {"type": "number"}
			}
		},
		"feedback": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["severity", "message"],
				"properties": {
					"severity": {"enum": ["critical", "major", "minor", "suggestion"]},
					"message": {"type": "string"}
				}
			}
		},
		"revisions": {
			"type": "array",
			"items": {"type": "object", "required": ["targetAgent", "instruction"]}
		}
	}
}`)

func buildContentPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "Brand strategy:")
	parts = append(parts, toJSON(input.Strategy.BrandStrategy))
	parts = append(parts, "\nContent strategy:")
	parts = append(parts, toJSON(input.Strategy.ContentStrategy))
	parts = append(parts, "\nContent pack:")
	parts = append(parts, toJSON(input.Pack))

	return strings.Join(parts, "\n")
}

func buildCodePrompt(input *Input, maxBytes int) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Brand: %s", input.Strategy.BrandStrategy.Identity.Name))
	parts = append(parts, fmt.Sprintf("Files: %d", len(input.Files)))
	for _, f := range input.Files {
		content := f.Content
		if maxBytes > 0 && len(content) > maxBytes {
			content = content[:maxBytes] + "\n/* truncated */"
		}
		parts = append(parts, fmt.Sprintf("\n--- %s (%s)\n%s", f.Path, f.Type, content))
	}

	return strings.Join(parts, "\n")
}

func toJSON(v interface{}) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
