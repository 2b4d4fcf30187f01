// internal/workers/agents/code-renderer/render.go
package coderenderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"site-pipeline/internal/models"
)

// Fixed output paths.
const (
	ContentFile = "src/data/content.ts"
	LegalFile   = "src/data/legal.ts"
	dataDir     = "src/data/"
)

var (
	cssValuePattern = regexp.MustCompile(`^[#A-Za-z0-9(),.% -]+$`)
	fontPattern     = regexp.MustCompile(`^[A-Za-z0-9 -]+$`)
	slugPathPattern = regexp.MustCompile(`[^\p{L}\p{N}/_-]+`)
)

var templates = template.Must(template.New("renderer").
	Delims("<%", "%>").
	Funcs(template.FuncMap{
		"css":  cssValue,
		"font": fontValue,
	}).
	Parse(`<% define "layout" %>` + layoutTemplate + `<% end %>` +
		`<% define "globals" %>` + globalsTemplate + `<% end %>` +
		`<% define "navigation" %>` + navigationTemplate + `<% end %>` +
		`<% define "footer" %>` + footerTemplate + `<% end %>` +
		`<% define "sections" %>` + sectionRendererTemplate + `<% end %>` +
		`<% define "legalDocument" %>` + legalDocumentTemplate + `<% end %>` +
		`<% define "page" %>` + pageTemplate + `<% end %>` +
		`<% define "legalPage" %>` + legalPageTemplate + `<% end %>` +
		`<% define "notFound" %>` + notFoundTemplate + `<% end %>` +
		`<% define "loading" %>` + loadingTemplate + `<% end %>`))

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type renderer struct {
	pack   *models.ContentPack
	addons []string
}

func (r *renderer) execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

// shell renders the layout, stylesheet and shared components.
func (r *renderer) shell() ([]models.GeneratedFile, error) {
	_, hasRootSEO := r.pack.SEO["/"]

	specs := []struct {
		path, kind, tmpl string
		data             interface{}
	}{
		{"src/app/layout.tsx", models.FileTypePage, "layout", map[string]interface{}{
			"Analytics":  hasAddon(r.addons, "analytics"),
			"HasRootSEO": hasRootSEO,
		}},
		{"src/app/globals.css", models.FileTypeConfig, "globals", map[string]interface{}{
			"Colors":     r.pack.Settings.Colors,
			"Typography": r.pack.Settings.Typography,
		}},
		{"src/components/Navigation.tsx", models.FileTypeComponent, "navigation", map[string]interface{}{
			"HasCTA": r.pack.Navigation.CTA != nil,
		}},
		{"src/components/Footer.tsx", models.FileTypeComponent, "footer", map[string]interface{}{
			"HasColumns":   len(r.pack.Footer.Columns) > 0,
			"HasCopyright": r.pack.Footer.Copyright != "",
		}},
		{"src/components/SectionRenderer.tsx", models.FileTypeComponent, "sections", nil},
		{"src/components/LegalDocument.tsx", models.FileTypeComponent, "legalDocument", nil},
		{"src/app/not-found.tsx", models.FileTypePage, "notFound", nil},
		{"src/app/loading.tsx", models.FileTypePage, "loading", nil},
	}

	files := make([]models.GeneratedFile, 0, len(specs))
	for _, s := range specs {
		content, err := r.execute(s.tmpl, s.data)
		if err != nil {
			return nil, err
		}
		files = append(files, models.GeneratedFile{Path: s.path, Content: content, Type: s.kind})
	}
	return files, nil
}

// pages renders one route per content page plus the legal routes.
func (r *renderer) pages() ([]models.GeneratedFile, error) {
	var files []models.GeneratedFile
	taken := make(map[string]bool)

	for i, page := range r.pack.Pages {
		slug := models.NormalizeSlug(page.Slug)
		path := RoutePath(slug)
		if taken[path] {
			return nil, fmt.Errorf("two pages render to %s", path)
		}
		taken[path] = true

		slugJSON, _ := json.Marshal(slug)
		_, hasSEO := r.pack.SEO[slug]
		content, err := r.execute("page", map[string]interface{}{
			"Index":    i,
			"SlugJSON": string(slugJSON),
			"HasSEO":   hasSEO,
		})
		if err != nil {
			return nil, err
		}
		files = append(files, models.GeneratedFile{Path: path, Content: content, Type: models.FileTypePage})
	}

	for _, doc := range []struct {
		key string
		doc *models.LegalDocument
	}{
		{"imprint", r.pack.Legal.Imprint},
		{"privacy", r.pack.Legal.Privacy},
	} {
		path := RoutePath("/" + doc.key)
		if doc.doc == nil || taken[path] {
			continue
		}
		content, err := r.execute("legalPage", map[string]interface{}{"Key": doc.key})
		if err != nil {
			return nil, err
		}
		files = append(files, models.GeneratedFile{Path: path, Content: content, Type: models.FileTypePage})
	}
	return files, nil
}

type legalSectionHTML struct {
	Heading string `json:"heading"`
	HTML    string `json:"html"`
}

type legalDocHTML struct {
	Title    string             `json:"title"`
	Sections []legalSectionHTML `json:"sections"`
}

// legal converts the markdown legal documents into an HTML data module.
func (r *renderer) legal() ([]models.GeneratedFile, error) {
	docs := make(map[string]legalDocHTML)
	for key, doc := range map[string]*models.LegalDocument{
		"imprint": r.pack.Legal.Imprint,
		"privacy": r.pack.Legal.Privacy,
	} {
		if doc == nil {
			continue
		}
		out := legalDocHTML{Title: doc.Title, Sections: make([]legalSectionHTML, 0, len(doc.Sections))}
		for _, s := range doc.Sections {
			var buf bytes.Buffer
			if err := markdown.Convert([]byte(s.Body), &buf); err != nil {
				return nil, fmt.Errorf("convert legal %s markdown: %w", key, err)
			}
			out.Sections = append(out.Sections, legalSectionHTML{Heading: s.Heading, HTML: buf.String()})
		}
		docs[key] = out
	}

	data, err := marshalModule(docs)
	if err != nil {
		return nil, err
	}
	return []models.GeneratedFile{{
		Path:    LegalFile,
		Content: "export const legal = " + string(data) + " as const;\n",
		Type:    models.FileTypeUtility,
	}}, nil
}

// contentModule is the canonical export of the whole pack.
func contentModule(pack *models.ContentPack) (models.GeneratedFile, error) {
	data, err := marshalModule(pack)
	if err != nil {
		return models.GeneratedFile{}, fmt.Errorf("marshal content pack: %w", err)
	}
	return models.GeneratedFile{
		Path:    ContentFile,
		Content: "export const content = " + string(data) + " as const;\n\nexport type Content = typeof content;\n",
		Type:    models.FileTypeUtility,
	}, nil
}

// marshalModule encodes v as an indented object literal without HTML
// escaping.
func marshalModule(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RoutePath maps a normalized slug to its app router file. Letters and digits
// of any script are kept so the directory matches the navigation href.
func RoutePath(slug string) string {
	s := strings.Trim(models.NormalizeSlug(slug), "/")
	if s == "" {
		return "src/app/page.tsx"
	}
	s = slugPathPattern.ReplaceAllString(s, "-")
	return "src/app/" + s + "/page.tsx"
}

func cssValue(v string) string {
	v = strings.TrimSpace(v)
	if !cssValuePattern.MatchString(v) {
		return "initial"
	}
	return v
}

func fontValue(v string) string {
	v = strings.TrimSpace(v)
	if !fontPattern.MatchString(v) {
		return "inherit"
	}
	return `"` + v + `"`
}
