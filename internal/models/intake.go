// internal/models/intake.go
package models

import "strings"

// Package tiers offered to customers.
const (
	TierStarter      = "starter"
	TierProfessional = "professional"
	TierEnterprise   = "enterprise"
)

// ProjectIntake is the customer-supplied input for a run. The pipeline never
// mutates it; agents receive copies.
type ProjectIntake struct {
	ProjectID      string         `json:"projectId"`
	Name           string         `json:"name"`
	Brief          string         `json:"brief"`
	TargetAudience string         `json:"targetAudience"`
	Style          string         `json:"style"`
	PackageTier    string         `json:"packageTier"`
	Industry       string         `json:"industry,omitempty"`
	Location       string         `json:"location,omitempty"`
	Language       string         `json:"language,omitempty"`
	ContactEmail   string         `json:"contactEmail,omitempty"`
	SelectedAddons []string       `json:"selectedAddons,omitempty"`
	Pages          []PageSkeleton `json:"pages,omitempty"`
}

// PageSkeleton is a page outline authored by the user or the strategist.
type PageSkeleton struct {
	Slug     string            `json:"slug"`
	Title    string            `json:"title"`
	Purpose  string            `json:"purpose,omitempty"`
	Sections []SectionSkeleton `json:"sections,omitempty"`
}

// SectionSkeleton names a section and an optional hint for the writer.
type SectionSkeleton struct {
	Type string `json:"type"`
	Hint string `json:"hint,omitempty"`
}

// Clone returns a deep copy of the intake.
func (p ProjectIntake) Clone() ProjectIntake {
	out := p
	out.SelectedAddons = append([]string(nil), p.SelectedAddons...)
	out.Pages = make([]PageSkeleton, len(p.Pages))
	for i, page := range p.Pages {
		out.Pages[i] = page
		out.Pages[i].Sections = append([]SectionSkeleton(nil), page.Sections...)
	}
	return out
}

// HasAddon reports whether the add-on was selected.
func (p ProjectIntake) HasAddon(name string) bool {
	for _, a := range p.SelectedAddons {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// NormalizeSlug maps a slug onto its canonical form: lowercase, leading
// slash, no trailing slash, with "home" and "index" mapped to the root.
func NormalizeSlug(slug string) string {
	s := strings.ToLower(strings.TrimSpace(slug))
	s = strings.Trim(s, "/")
	switch s {
	case "", "home", "index":
		return "/"
	}
	return "/" + s
}

// IsRootSlug reports whether slug addresses the site root.
func IsRootSlug(slug string) bool {
	return NormalizeSlug(slug) == "/"
}
