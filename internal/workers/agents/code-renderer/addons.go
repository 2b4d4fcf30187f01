// internal/workers/agents/code-renderer/addons.go
package coderenderer

import (
	"sort"
	"strings"

	"site-pipeline/internal/models"
)

type addon struct {
	deps []models.Dependency
	env  []models.EnvVar
}

var baseDependencies = []models.Dependency{
	{Name: "next", Version: "^14.2.5"},
	{Name: "react", Version: "^18.3.1"},
	{Name: "react-dom", Version: "^18.3.1"},
}

var addonCatalog = map[string]addon{
	"analytics": {
		deps: []models.Dependency{{Name: "@vercel/analytics", Version: "^1.3.1"}},
		env:  []models.EnvVar{{Name: "NEXT_PUBLIC_ANALYTICS_ID", Description: "Analytics property id", Required: true}},
	},
	"contact-form": {
		deps: []models.Dependency{{Name: "react-hook-form", Version: "^7.53.0"}, {Name: "zod", Version: "^3.23.8"}},
		env:  []models.EnvVar{{Name: "CONTACT_FORM_ENDPOINT", Description: "URL that receives contact form submissions", Required: true}},
	},
	"cms": {
		deps: []models.Dependency{{Name: "@sanity/client", Version: "^6.21.3"}},
		env: []models.EnvVar{
			{Name: "CMS_API_URL", Description: "Headless CMS API base URL", Required: true},
			{Name: "CMS_API_TOKEN", Description: "Headless CMS read token", Required: true},
		},
	},
	"newsletter": {
		env: []models.EnvVar{{Name: "NEWSLETTER_API_KEY", Description: "Newsletter provider API key", Required: true}},
	},
	"seo-plus": {
		deps: []models.Dependency{{Name: "next-sitemap", Version: "^4.2.3"}},
		env:  []models.EnvVar{{Name: "SITE_URL", Description: "Public site URL used in the sitemap", Required: true}},
	},
}

// requirements merges the base stack with the selected add-ons. Unknown
// add-ons are ignored. Extra dependencies from a model answer are kept unless
// they duplicate a known one.
func requirements(addons []string, extra []models.Dependency) ([]models.Dependency, []models.EnvVar) {
	deps := make(map[string]string)
	for _, d := range baseDependencies {
		deps[d.Name] = d.Version
	}
	env := make(map[string]models.EnvVar)

	for _, name := range addons {
		a, ok := addonCatalog[strings.ToLower(name)]
		if !ok {
			continue
		}
		for _, d := range a.deps {
			deps[d.Name] = d.Version
		}
		for _, e := range a.env {
			env[e.Name] = e
		}
	}
	for _, d := range extra {
		if _, ok := deps[d.Name]; !ok && d.Name != "" {
			deps[d.Name] = d.Version
		}
	}

	outDeps := make([]models.Dependency, 0, len(deps))
	for name, version := range deps {
		outDeps = append(outDeps, models.Dependency{Name: name, Version: version})
	}
	sort.Slice(outDeps, func(i, j int) bool { return outDeps[i].Name < outDeps[j].Name })

	outEnv := make([]models.EnvVar, 0, len(env))
	for _, e := range env {
		outEnv = append(outEnv, e)
	}
	sort.Slice(outEnv, func(i, j int) bool { return outEnv[i].Name < outEnv[j].Name })

	return outDeps, outEnv
}

func hasAddon(addons []string, name string) bool {
	for _, a := range addons {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}
