package contentpack

import (
	"fmt"
	"strings"

	"site-pipeline/internal/models"
)

// Structural issue codes.
const (
	IssueMissingRootPage   = "MISSING_ROOT_PAGE"
	IssueMissingNavigation = "MISSING_NAVIGATION"
	IssueMissingFooterTag  = "MISSING_FOOTER_TAGLINE"
	IssueMissingSEO        = "MISSING_SEO"
	IssueMissingImprint    = "MISSING_IMPRINT"
	IssueMissingPrivacy    = "MISSING_PRIVACY"
	IssueInvalidSection    = "INVALID_SECTION"
	IssueDuplicateSlug     = "DUPLICATE_SLUG"
)

// Issue is one failed check.
type Issue struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s at %s: %s", i.Code, i.Path, i.Message)
}

// Validate checks the structural invariants a pack must satisfy before it can
// be rendered. An empty result means the pack is valid.
func Validate(pack *models.ContentPack) []Issue {
	if pack == nil {
		return []Issue{{Code: IssueMissingRootPage, Path: "pages", Message: "content pack is empty"}}
	}

	var issues []Issue

	hasRoot := false
	seen := make(map[string]bool, len(pack.Pages))
	for i, page := range pack.Pages {
		slug := models.NormalizeSlug(page.Slug)
		if slug == "/" {
			hasRoot = true
		}
		if seen[slug] {
			issues = append(issues, Issue{
				Code:    IssueDuplicateSlug,
				Path:    fmt.Sprintf("pages[%d].slug", i),
				Message: fmt.Sprintf("slug %q is used by more than one page", slug),
			})
		}
		seen[slug] = true

		entry, ok := seoFor(pack, page.Slug)
		if !ok || strings.TrimSpace(entry.Title) == "" {
			issues = append(issues, Issue{
				Code:    IssueMissingSEO,
				Path:    fmt.Sprintf("seo[%s]", slug),
				Message: fmt.Sprintf("page %q has no SEO title", slug),
			})
		}
	}
	if !hasRoot {
		issues = append(issues, Issue{Code: IssueMissingRootPage, Path: "pages", Message: "no page has the root slug"})
	}

	if len(pack.Navigation.Items) == 0 {
		issues = append(issues, Issue{Code: IssueMissingNavigation, Path: "navigation.items", Message: "navigation has no items"})
	}
	if strings.TrimSpace(pack.Footer.Tagline) == "" {
		issues = append(issues, Issue{Code: IssueMissingFooterTag, Path: "footer.tagline", Message: "footer tagline is empty"})
	}
	if pack.Legal.Imprint == nil {
		issues = append(issues, Issue{Code: IssueMissingImprint, Path: "legal.imprint", Message: "imprint is missing"})
	}
	if pack.Legal.Privacy == nil {
		issues = append(issues, Issue{Code: IssueMissingPrivacy, Path: "legal.privacy", Message: "privacy policy is missing"})
	}

	return issues
}

// Messages formats issues for error details.
func Messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.String()
	}
	return out
}

// HasCode reports whether any issue carries code.
func HasCode(issues []Issue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func seoFor(pack *models.ContentPack, slug string) (models.SEOEntry, bool) {
	if e, ok := pack.SEO[slug]; ok {
		return e, true
	}
	e, ok := pack.SEO[models.NormalizeSlug(slug)]
	return e, ok
}
