// internal/workers/agents/code-renderer/agent_test.go
package coderenderer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"site-pipeline/internal/agents/invoker"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/llm/llmtest"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/contentpack/packtest"
	"site-pipeline/internal/models"
	"site-pipeline/internal/taskrunner"
)

// ==========================
// Test Helpers
// ==========================

func newTestAgent(t *testing.T, mode string, p *llmtest.Provider) *Agent {
	log := logger.NewTestLogger(t)
	if p == nil {
		p = llmtest.New()
	}
	inv := invoker.New(p, log, invoker.WithBackoff(func(int) time.Duration { return 0 }))
	cfg := &Config{
		Mode:           mode,
		Invoker:        invoker.Config{Model: "test", MaxTokens: 1000, Timeout: time.Second, MaxRetries: 1},
		MaxConcurrency: 3,
	}
	return New(cfg, inv, taskrunner.NewLocalExecutor(3, 5*time.Second), log)
}

func fileByPath(files []models.GeneratedFile, path string) (models.GeneratedFile, bool) {
	for _, f := range files {
		if f.Path == path {
			return f, true
		}
	}
	return models.GeneratedFile{}, false
}

const tracedPage = `import { content } from "@/data/content";
import { content } from "@/data/content";

export default function Page() {
  return <h1 className="title">{content.pages[0].title}</h1>;
}
`

const inventedPage = `import { content } from "@/data/content";

export default function Page() {
  return <h1>Welcome to our website</h1>;
}
`

// ==========================
// Template mode
// ==========================

func TestRender_Template(t *testing.T) {
	defer goleak.VerifyNone(t)

	pack := packtest.Valid()
	pack.Hash = "abc123"
	out, err := newTestAgent(t, ModeTemplate, nil).Render(context.Background(), &Input{Pack: pack})
	require.NoError(t, err)

	for _, path := range []string{
		ContentFile,
		LegalFile,
		"src/app/layout.tsx",
		"src/app/page.tsx",
		"src/app/contact/page.tsx",
		"src/app/imprint/page.tsx",
		"src/app/privacy/page.tsx",
		"src/app/not-found.tsx",
		"src/app/loading.tsx",
		"src/components/Navigation.tsx",
		"src/components/Footer.tsx",
		"src/components/SectionRenderer.tsx",
	} {
		_, ok := fileByPath(out.Files, path)
		assert.True(t, ok, "missing %s", path)
	}

	contentTS, _ := fileByPath(out.Files, ContentFile)
	assert.True(t, strings.HasPrefix(contentTS.Content, "export const content = {"))
	assert.Contains(t, contentTS.Content, `"hash": "abc123"`)

	legalTS, _ := fileByPath(out.Files, LegalFile)
	assert.Contains(t, legalTS.Content, "<strong>contact form</strong>")

	home, _ := fileByPath(out.Files, "src/app/page.tsx")
	assert.Contains(t, home.Content, "content.pages[0]")
	assert.Contains(t, home.Content, `content.seo["/"]`)

	nav, _ := fileByPath(out.Files, "src/components/Navigation.tsx")
	assert.Contains(t, nav.Content, "nav.cta.label")

	violations, err := TraceCheck(out.Files, pack)
	require.NoError(t, err)
	assert.Empty(t, violations)

	for i := 1; i < len(out.Files); i++ {
		assert.Less(t, out.Files[i-1].Path, out.Files[i].Path)
	}
	assert.Equal(t, []models.Dependency{
		{Name: "next", Version: "^14.2.5"},
		{Name: "react", Version: "^18.3.1"},
		{Name: "react-dom", Version: "^18.3.1"},
	}, out.Dependencies)
	assert.Empty(t, out.EnvVars)
	assert.Zero(t, out.Usage.InputTokens)
}

func TestRender_TemplateAddons(t *testing.T) {
	pack := packtest.Valid()
	pack.Navigation.CTA = nil
	out, err := newTestAgent(t, ModeTemplate, nil).Render(context.Background(), &Input{
		Pack:   pack,
		Addons: []string{"analytics", "cms", "unknown"},
	})
	require.NoError(t, err)

	layout, _ := fileByPath(out.Files, "src/app/layout.tsx")
	assert.Contains(t, layout.Content, "<Analytics />")

	nav, _ := fileByPath(out.Files, "src/components/Navigation.tsx")
	assert.NotContains(t, nav.Content, "nav.cta")

	var envNames []string
	for _, e := range out.EnvVars {
		envNames = append(envNames, e.Name)
	}
	assert.Equal(t, []string{"CMS_API_TOKEN", "CMS_API_URL", "NEXT_PUBLIC_ANALYTICS_ID"}, envNames)

	var depNames []string
	for _, d := range out.Dependencies {
		depNames = append(depNames, d.Name)
	}
	assert.Contains(t, depNames, "@vercel/analytics")
	assert.Contains(t, depNames, "@sanity/client")
}

func TestRender_NilPack(t *testing.T) {
	_, err := newTestAgent(t, ModeTemplate, nil).Render(context.Background(), &Input{})
	assert.Error(t, err)
}

// ==========================
// Model mode
// ==========================

func TestRender_ModelRetriesUntraceableOutput(t *testing.T) {
	p := llmtest.New().OnSequence(AgentName,
		llmtest.JSON(map[string]interface{}{
			"files": []models.GeneratedFile{{Path: "src/app/page.tsx", Content: inventedPage, Type: models.FileTypePage}},
		}),
		llmtest.JSON(map[string]interface{}{
			"files": []models.GeneratedFile{
				{Path: "src/app/page.tsx", Content: strings.ReplaceAll(tracedPage, "\n", "\r\n")},
				{Path: ContentFile, Content: "export const content = {};"},
			},
			"dependencies": []models.Dependency{{Name: "clsx", Version: "^2.1.1"}},
		}),
	)

	out, err := newTestAgent(t, ModeModel, p).Render(context.Background(), &Input{Pack: packtest.Valid()})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Calls(AgentName))
	assert.Equal(t, 2, out.Invocations)
	assert.Equal(t, 20, out.Usage.InputTokens)

	page, ok := fileByPath(out.Files, "src/app/page.tsx")
	require.True(t, ok)
	assert.NotContains(t, page.Content, "\r")
	assert.Equal(t, 1, strings.Count(page.Content, "import { content }"))
	assert.Equal(t, models.FileTypePage, page.Type)

	contentTS, _ := fileByPath(out.Files, ContentFile)
	assert.Contains(t, contentTS.Content, "Acme GmbH")

	var depNames []string
	for _, d := range out.Dependencies {
		depNames = append(depNames, d.Name)
	}
	assert.Contains(t, depNames, "clsx")
}

func TestRender_ModelFailureReturnsNoFiles(t *testing.T) {
	p := llmtest.New().On(AgentName, llmtest.Fail(errors.New("gateway down")))

	out, err := newTestAgent(t, ModeModel, p).Render(context.Background(), &Input{Pack: packtest.Valid()})
	require.Error(t, err)
	assert.Nil(t, out)

	agentErr, ok := apperrors.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindProviderError, agentErr.Kind)
}

// ==========================
// TraceCheck / helpers
// ==========================

func TestTraceCheck(t *testing.T) {
	pack := packtest.Valid()
	files := []models.GeneratedFile{
		{Path: "src/app/page.tsx", Content: inventedPage},
		{Path: "src/app/about/page.tsx", Content: `export const x = { title: "Made up headline" };` + "\n"},
		{Path: "src/app/contact/page.tsx", Content: `export const y = "Get in touch";` + "\n" + `const z = <p>Tools that last</p>;` + "\n"},
		{Path: "src/data/anything.ts", Content: `export const z = "Free text is fine here";`},
		{Path: "src/app/globals.css", Content: `body { font-family: "Open Sans"; }`},
	}

	violations, err := TraceCheck(files, pack)
	require.NoError(t, err)
	require.Len(t, violations, 2)
	assert.Equal(t, "Welcome to our website", violations[0].Literal)
	assert.Equal(t, 4, violations[0].Line)
	assert.Equal(t, "Made up headline", violations[1].Literal)
}

func TestTraceCheck_SingleWordLiterals(t *testing.T) {
	pack := packtest.Valid()
	files := []models.GeneratedFile{{Path: "src/components/Hero.tsx", Content: strings.Join([]string{
		`export default function Hero() {`,
		`  return (`,
		`    <section className="hero" role="banner">`,
		`      <img src="/hero.jpg" alt="Willkommensbild" />`,
		`      <nav aria-label="Hauptnavigation" title={"Sonderangebot"}>`,
		`        <a href={"mailto:" + "hello@acme.example"}>{"Kontakt"}</a>`,
		`        <span title="Contact" data-kind="cta">{"Home"}</span>`,
		`      </nav>`,
		`      <p>{"Acme"}</p>`,
		`    </section>`,
		`  );`,
		`}`,
	}, "\n")}}

	violations, err := TraceCheck(files, pack)
	require.NoError(t, err)

	var literals []string
	for _, v := range violations {
		literals = append(literals, v.Literal)
	}
	assert.Equal(t, []string{"Willkommensbild", "Hauptnavigation", "Sonderangebot", "Kontakt", "Acme"}, literals)
	assert.Equal(t, 4, violations[0].Line)
	assert.Equal(t, 9, violations[4].Line)
}

func TestStructural(t *testing.T) {
	tests := map[string]bool{
		"":                true,
		"/":               true,
		"/über-uns":       true,
		"@/data/content":  true,
		"#contact":        true,
		"mailto:":         true,
		"https://acme.io": true,
		"hero":            true,
		"ctaHref":         true,
		"1.5rem":          true,
		"Sonderangebot":   false,
		"Read more":       false,
		"hello world":     false,
	}
	for lit, want := range tests {
		assert.Equal(t, want, structural(lit), lit)
	}
}

func TestRoutePath(t *testing.T) {
	tests := map[string]string{
		"/":             "src/app/page.tsx",
		"home":          "src/app/page.tsx",
		"/about":        "src/app/about/page.tsx",
		"Services/Web/": "src/app/services/web/page.tsx",
		"/über-uns":     "src/app/über-uns/page.tsx",
		"/Über uns":     "src/app/über-uns/page.tsx",
		"/öber":         "src/app/öber/page.tsx",
		"/kontakt_2":    "src/app/kontakt_2/page.tsx",
		"/a&b":          "src/app/a-b/page.tsx",
	}
	for slug, want := range tests {
		assert.Equal(t, want, RoutePath(slug), slug)
	}
}

func TestRender_UnicodeSlugs(t *testing.T) {
	pack := packtest.Valid()
	pack.Pages = append(pack.Pages,
		models.Page{Slug: "/über", Title: "Über", Sections: pack.Pages[1].Sections},
		models.Page{Slug: "/öber", Title: "Öber", Sections: pack.Pages[1].Sections},
	)
	pack.Navigation.Items = append(pack.Navigation.Items, models.NavItem{Label: "Über", Href: "/über"})

	out, err := newTestAgent(t, ModeTemplate, nil).Render(context.Background(), &Input{Pack: pack})
	require.NoError(t, err)

	uber, ok := fileByPath(out.Files, "src/app/über/page.tsx")
	require.True(t, ok)
	assert.Contains(t, uber.Content, "content.pages[2]")
	_, ok = fileByPath(out.Files, "src/app/öber/page.tsx")
	assert.True(t, ok)
	for _, item := range pack.Navigation.Items[1:] {
		assert.Equal(t, "src/app"+item.Href+"/page.tsx", RoutePath(item.Href))
	}
}

func TestRender_CollidingSlugsFail(t *testing.T) {
	pack := packtest.Valid()
	pack.Pages = append(pack.Pages,
		models.Page{Slug: "/über uns", Title: "Über uns", Sections: pack.Pages[1].Sections},
		models.Page{Slug: "/über-uns", Title: "Über uns", Sections: pack.Pages[1].Sections},
	)

	out, err := newTestAgent(t, ModeTemplate, nil).Render(context.Background(), &Input{Pack: pack})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "src/app/über-uns/page.tsx")
}

func TestPostProcessHelpers(t *testing.T) {
	assert.Equal(t, "a\nb\n", normalizeLines("a  \r\nb\r\n\r\n"))
	assert.Equal(t, "import a from \"a\";\nx\n", dedupeImports("import a from \"a\";\nimport a from \"a\"\nx\n"))
	assert.Equal(t, models.FileTypeConfig, inferType("tailwind.config.json"))
	assert.Equal(t, models.FileTypeComponent, inferType("src/components/Hero.tsx"))
}
