package contentpack

import (
	"fmt"

	"site-pipeline/internal/common/validation"
	"site-pipeline/internal/models"
)

const itemsOf = `{"type": "array", "minItems": 1, "items": {"type": "object"}}`

var sectionSchemas = map[string]*validation.Schema{
	models.SectionHero: validation.MustCompile("section.hero", `{
		"type": "object",
		"required": ["headline"],
		"properties": {
			"headline": {"type": "string", "minLength": 1},
			"subheadline": {"type": "string"},
			"ctaLabel": {"type": "string"},
			"ctaHref": {"type": "string"}
		}
	}`),
	models.SectionFeatures: validation.MustCompile("section.features", `{
		"type": "object",
		"required": ["items"],
		"properties": {"title": {"type": "string"}, "items": `+itemsOf+`}
	}`),
	models.SectionServices: validation.MustCompile("section.services", `{
		"type": "object",
		"required": ["items"],
		"properties": {"title": {"type": "string"}, "items": `+itemsOf+`}
	}`),
	models.SectionTestimonials: validation.MustCompile("section.testimonials", `{
		"type": "object",
		"required": ["items"],
		"properties": {"title": {"type": "string"}, "items": `+itemsOf+`}
	}`),
	models.SectionCTA: validation.MustCompile("section.cta", `{
		"type": "object",
		"required": ["headline", "buttonLabel"],
		"properties": {
			"headline": {"type": "string", "minLength": 1},
			"buttonLabel": {"type": "string", "minLength": 1},
			"buttonHref": {"type": "string"}
		}
	}`),
	models.SectionContact: validation.MustCompile("section.contact", `{
		"type": "object",
		"required": ["title"],
		"properties": {"title": {"type": "string", "minLength": 1}, "text": {"type": "string"}}
	}`),
	models.SectionText: validation.MustCompile("section.text", `{
		"type": "object",
		"required": ["body"],
		"properties": {"title": {"type": "string"}, "body": {"type": "string", "minLength": 1}}
	}`),
	models.SectionGallery: validation.MustCompile("section.gallery", `{
		"type": "object",
		"required": ["images"],
		"properties": {"title": {"type": "string"}, "images": `+itemsOf+`}
	}`),
	models.SectionFAQ: validation.MustCompile("section.faq", `{
		"type": "object",
		"required": ["items"],
		"properties": {
			"title": {"type": "string"},
			"items": {
				"type": "array",
				"minItems": 1,
				"items": {"type": "object", "required": ["question", "answer"]}
			}
		}
	}`),
	models.SectionTeam: validation.MustCompile("section.team", `{
		"type": "object",
		"required": ["members"],
		"properties": {"title": {"type": "string"}, "members": `+itemsOf+`}
	}`),
	models.SectionPricing: validation.MustCompile("section.pricing", `{
		"type": "object",
		"required": ["plans"],
		"properties": {"title": {"type": "string"}, "plans": `+itemsOf+`}
	}`),
}

// KnownSectionType reports whether the renderer has a component for t.
func KnownSectionType(t string) bool {
	_, ok := sectionSchemas[t]
	return ok
}

// ValidateSections checks every section payload against its type schema.
// The result is advisory.
func ValidateSections(pack *models.ContentPack) []Issue {
	var issues []Issue
	for pi, page := range pack.Pages {
		for si, section := range page.Sections {
			path := fmt.Sprintf("pages[%d].sections[%d]", pi, si)
			if !KnownSectionType(section.Type) {
				issues = append(issues, Issue{
					Code:    IssueInvalidSection,
					Path:    path + ".type",
					Message: fmt.Sprintf("unknown section type %q", section.Type),
				})
				continue
			}
			schema := sectionSchemas[section.Type]
			content := section.Content
			if content == nil {
				content = map[string]interface{}{}
			}
			result := schema.Validate(content)
			for _, e := range result.Errors {
				issues = append(issues, Issue{
					Code:    IssueInvalidSection,
					Path:    path + ".content." + e.Field,
					Message: e.Message,
				})
			}
		}
	}
	return issues
}
