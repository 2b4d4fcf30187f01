// internal/models/contentpack.go
package models

import (
	"encoding/json"
	"time"
)

// ContentPack is the single source of truth for all site text. It is owned by
// the content pack generator and read-only for every consumer.
type ContentPack struct {
	ProjectID   string    `json:"projectId"`
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generatedAt"`
	Hash        string    `json:"hash"`
	SourceHash  string    `json:"sourceHash"`

	Settings   SiteSettings        `json:"settings"`
	Pages      []Page              `json:"pages"`
	Navigation Navigation          `json:"navigation"`
	Footer     Footer              `json:"footer"`
	SEO        map[string]SEOEntry `json:"seo"`
	Legal      LegalContent        `json:"legal"`
	Components ComponentCopy       `json:"components"`
}

type SiteSettings struct {
	Brand      BrandSettings `json:"brand"`
	Colors     ColorPalette  `json:"colors"`
	Typography Typography    `json:"typography"`
	Contact    ContactInfo   `json:"contact"`
	Business   BusinessFacts `json:"business"`
}

type BrandSettings struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline"`
	LogoAlt string `json:"logoAlt,omitempty"`
}

type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type BusinessFacts struct {
	LegalName    string   `json:"legalName,omitempty"`
	Representant string   `json:"representative,omitempty"`
	Register     string   `json:"register,omitempty"`
	VatID        string   `json:"vatId,omitempty"`
	OpeningHours []string `json:"openingHours,omitempty"`
}

// Page is an ordered list of sections addressed by slug.
type Page struct {
	Slug     string    `json:"slug"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Section types understood by the renderer.
const (
	SectionHero         = "hero"
	SectionFeatures     = "features"
	SectionServices     = "services"
	SectionTestimonials = "testimonials"
	SectionCTA          = "cta"
	SectionContact      = "contact"
	SectionText         = "text"
	SectionGallery      = "gallery"
	SectionFAQ          = "faq"
	SectionTeam         = "team"
	SectionPricing      = "pricing"
)

// Section carries a type tag and a payload whose shape depends on the type.
type Section struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Content map[string]interface{} `json:"content"`
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type Navigation struct {
	Items []NavItem `json:"items"`
	CTA   *NavItem  `json:"cta,omitempty"`
}

type FooterColumn struct {
	Title string    `json:"title"`
	Links []NavItem `json:"links"`
}

type Footer struct {
	Tagline   string         `json:"tagline"`
	Columns   []FooterColumn `json:"columns,omitempty"`
	Copyright string         `json:"copyright,omitempty"`
}

type SEOEntry struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	OGImageAlt  string   `json:"ogImageAlt,omitempty"`
}

// LegalContent must hold both documents; either may contain TODO placeholders.
type LegalContent struct {
	Imprint *LegalDocument `json:"imprint"`
	Privacy *LegalDocument `json:"privacy"`
}

type LegalDocument struct {
	Title    string         `json:"title"`
	Sections []LegalSection `json:"sections"`
}

// LegalSection bodies are markdown.
type LegalSection struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type ComponentCopy struct {
	NotFound NotFoundCopy      `json:"notFound"`
	Loading  LoadingCopy       `json:"loading"`
	Toasts   map[string]string `json:"toasts,omitempty"`
}

type NotFoundCopy struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	BackLabel string `json:"backLabel"`
}

type LoadingCopy struct {
	Message string `json:"message"`
}

// PageBySlug returns the page with the given normalized slug.
func (c *ContentPack) PageBySlug(slug string) (*Page, bool) {
	want := NormalizeSlug(slug)
	for i := range c.Pages {
		if NormalizeSlug(c.Pages[i].Slug) == want {
			return &c.Pages[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy through a JSON round trip.
func (c *ContentPack) Clone() (*ContentPack, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	var out ContentPack
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TodoMarker records one {{TODO: ...}} placeholder left for the customer.
type TodoMarker struct {
	Path        string `json:"path"`
	Placeholder string `json:"placeholder"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}
