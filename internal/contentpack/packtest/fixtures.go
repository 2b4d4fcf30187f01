// Package packtest builds content packs and intakes for tests.
package packtest

import "site-pipeline/internal/models"

// Intake returns the Acme GmbH intake with a home and a contact page.
func Intake() models.ProjectIntake {
	return models.ProjectIntake{
		ProjectID:      "proj-acme",
		Name:           "Acme GmbH",
		Brief:          "Precision tooling for small workshops",
		TargetAudience: "Independent craftspeople",
		Style:          "clean",
		PackageTier:    models.TierStarter,
		Industry:       "manufacturing",
		Location:       "Berlin",
		Language:       "en",
		ContactEmail:   "hello@acme.example",
		Pages: []models.PageSkeleton{
			{Slug: "home", Title: "Home", Sections: []models.SectionSkeleton{{Type: models.SectionHero}, {Type: models.SectionFeatures}}},
			{Slug: "contact", Title: "Contact", Sections: []models.SectionSkeleton{{Type: models.SectionContact}}},
		},
	}
}

// Strategy returns a complete strategist answer for Intake.
func Strategy() models.StrategyOutput {
	return models.StrategyOutput{
		BrandStrategy: models.BrandStrategy{
			Identity: models.BrandIdentity{Name: "Acme GmbH", Tagline: "Tools that last"},
			Voice:    models.BrandVoice{Tone: "confident"},
			Colors:   models.ColorPalette{Primary: "#1f4e79", Accent: "#f2a900"},
			Typography: models.Typography{
				HeadingFont: "Inter",
				BodyFont:    "Source Sans 3",
			},
		},
		ContentStrategy: models.ContentStrategy{
			KeyMessages:   []string{"Built to last"},
			CallsToAction: []string{"Request a quote"},
			SEOKeywords:   []string{"workshop tools"},
		},
		SiteStructure: models.SiteStructure{Pages: []models.PageSkeleton{
			{Slug: "/", Title: "Home"},
			{Slug: "/about", Title: "About"},
			{Slug: "/contact", Title: "Contact"},
		}},
	}
}

// Valid returns a pack that passes structural validation.
func Valid() *models.ContentPack {
	return &models.ContentPack{
		Settings: models.SiteSettings{
			Brand:      models.BrandSettings{Name: "Acme GmbH", Tagline: "Tools that last", LogoAlt: "Acme logo"},
			Colors:     models.ColorPalette{Primary: "#1f4e79", Accent: "#f2a900"},
			Typography: models.Typography{HeadingFont: "Inter", BodyFont: "Source Sans 3"},
			Contact:    models.ContactInfo{Email: "hello@acme.example", Phone: "{{TODO: phone number}}"},
			Business:   models.BusinessFacts{LegalName: "Acme GmbH"},
		},
		Pages: []models.Page{
			{
				Slug:  "/",
				Title: "Home",
				Sections: []models.Section{
					{ID: "hero", Type: models.SectionHero, Content: map[string]interface{}{
						"headline":    "Tools that last a lifetime",
						"subheadline": "Precision tooling for small workshops",
						"ctaLabel":    "Request a quote",
						"ctaHref":     "/contact",
					}},
					{ID: "features", Type: models.SectionFeatures, Content: map[string]interface{}{
						"title": "Why Acme",
						"items": []interface{}{
							map[string]interface{}{"title": "Hardened steel", "description": "Every tool is heat treated."},
						},
					}},
				},
			},
			{
				Slug:  "/contact",
				Title: "Contact",
				Sections: []models.Section{
					{ID: "contact", Type: models.SectionContact, Content: map[string]interface{}{
						"title": "Get in touch",
						"text":  "We answer within one business day.",
					}},
				},
			},
		},
		Navigation: models.Navigation{
			Items: []models.NavItem{{Label: "Home", Href: "/"}, {Label: "Contact", Href: "/contact"}},
			CTA:   &models.NavItem{Label: "Request a quote", Href: "/contact"},
		},
		Footer: models.Footer{
			Tagline:   "Tools that last",
			Copyright: "Acme GmbH. All rights reserved.",
			Columns: []models.FooterColumn{{Title: "Legal", Links: []models.NavItem{
				{Label: "Imprint", Href: "/imprint"},
				{Label: "Privacy", Href: "/privacy"},
			}}},
		},
		SEO: map[string]models.SEOEntry{
			"/":        {Title: "Acme GmbH | Workshop tools", Description: "Precision tooling for small workshops"},
			"/contact": {Title: "Contact Acme GmbH", Description: "Talk to our team"},
		},
		Legal: models.LegalContent{
			Imprint: &models.LegalDocument{Title: "Imprint", Sections: []models.LegalSection{
				{Heading: "Company", Body: "Acme GmbH\n\n{{TODO: registered address}}"},
				{Heading: "Register", Body: "{{TODO: commercial register number}}"},
			}},
			Privacy: &models.LegalDocument{Title: "Privacy Policy", Sections: []models.LegalSection{
				{Heading: "Data we collect", Body: "We only store what you send us through the **contact form**."},
			}},
		},
		Components: models.ComponentCopy{
			NotFound: models.NotFoundCopy{Title: "Page not found", Message: "This page does not exist.", BackLabel: "Back to home"},
			Loading:  models.LoadingCopy{Message: "Loading"},
		},
	}
}
