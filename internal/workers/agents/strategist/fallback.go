// internal/workers/agents/strategist/fallback.go
package strategist

import (
	"encoding/json"
	"strings"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/models"
)

// DefaultPages returns the built-in site structure for a package tier.
func DefaultPages(tier string) []models.PageSkeleton {
	home := models.PageSkeleton{Slug: "/", Title: "Home", Sections: []models.SectionSkeleton{
		{Type: models.SectionHero}, {Type: models.SectionFeatures}, {Type: models.SectionCTA},
	}}
	about := models.PageSkeleton{Slug: "/about", Title: "About", Sections: []models.SectionSkeleton{
		{Type: models.SectionText}, {Type: models.SectionTeam},
	}}
	contact := models.PageSkeleton{Slug: "/contact", Title: "Contact", Sections: []models.SectionSkeleton{
		{Type: models.SectionContact},
	}}

	switch strings.ToLower(tier) {
	case models.TierProfessional, models.TierEnterprise:
		services := models.PageSkeleton{Slug: "/services", Title: "Services", Sections: []models.SectionSkeleton{
			{Type: models.SectionServices}, {Type: models.SectionCTA},
		}}
		portfolio := models.PageSkeleton{Slug: "/portfolio", Title: "Portfolio", Sections: []models.SectionSkeleton{
			{Type: models.SectionGallery}, {Type: models.SectionTestimonials},
		}}
		return []models.PageSkeleton{home, about, services, portfolio, contact}
	default:
		return []models.PageSkeleton{home, about, contact}
	}
}

// Fallback builds a degraded strategy from whatever the model managed to
// produce plus the intake. raw may be empty or unparseable.
func Fallback(intake models.ProjectIntake, raw string) models.StrategyOutput {
	var out models.StrategyOutput
	if data, err := invoker.ExtractJSON(raw); err == nil {
		// partial answers are expected here; keep whatever decoded
		_ = json.Unmarshal(data, &out)
	}

	id := &out.BrandStrategy.Identity
	if strings.TrimSpace(id.Name) == "" {
		id.Name = intake.Name
	}
	if strings.TrimSpace(id.Tagline) == "" {
		id.Tagline = firstSentence(intake.Brief)
	}
	if len(out.SiteStructure.Pages) == 0 {
		out.SiteStructure.Pages = DefaultPages(intake.PackageTier)
	}
	out.Fallback = true
	return out
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
