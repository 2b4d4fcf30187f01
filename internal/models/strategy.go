// internal/models/strategy.go
package models

// StrategyOutput is produced once per run by the strategist and is read-only
// for every later stage.
type StrategyOutput struct {
	BrandStrategy   BrandStrategy   `json:"brandStrategy"`
	ContentStrategy ContentStrategy `json:"contentStrategy"`
	SiteStructure   SiteStructure   `json:"siteStructure"`
	// Fallback is set when the site structure came from the built-in default.
	Fallback bool `json:"fallback,omitempty"`
}

type BrandStrategy struct {
	Identity   BrandIdentity `json:"identity"`
	Voice      BrandVoice    `json:"voice"`
	Colors     ColorPalette  `json:"colors"`
	Typography Typography    `json:"typography"`
}

type BrandIdentity struct {
	Name     string   `json:"name"`
	Tagline  string   `json:"tagline"`
	Mission  string   `json:"mission,omitempty"`
	Values   []string `json:"values,omitempty"`
	Position string   `json:"positioning,omitempty"`
}

type BrandVoice struct {
	Tone        string   `json:"tone"`
	Personality []string `json:"personality,omitempty"`
	Dos         []string `json:"dos,omitempty"`
	Donts       []string `json:"donts,omitempty"`
}

type ColorPalette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary,omitempty"`
	Accent     string `json:"accent,omitempty"`
	Background string `json:"background,omitempty"`
	Text       string `json:"text,omitempty"`
}

type Typography struct {
	HeadingFont string `json:"headingFont"`
	BodyFont    string `json:"bodyFont"`
}

type ContentStrategy struct {
	KeyMessages    []string `json:"keyMessages,omitempty"`
	CallsToAction  []string `json:"callsToAction,omitempty"`
	SEOKeywords    []string `json:"seoKeywords,omitempty"`
	ContentPillars []string `json:"contentPillars,omitempty"`
}

type SiteStructure struct {
	Pages []PageSkeleton `json:"pages"`
}
