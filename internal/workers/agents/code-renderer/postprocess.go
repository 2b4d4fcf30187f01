// internal/workers/agents/code-renderer/postprocess.go
package coderenderer

import (
	"sort"
	"strings"

	"site-pipeline/internal/models"
)

// postProcess normalizes line endings and trailing whitespace, removes
// duplicate import declarations, replaces any content module with the
// canonical one and orders files by path.
func postProcess(files []models.GeneratedFile, pack *models.ContentPack) ([]models.GeneratedFile, error) {
	canonical, err := contentModule(pack)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(files))
	out := make([]models.GeneratedFile, 0, len(files)+1)
	for _, f := range files {
		f.Path = strings.TrimPrefix(strings.TrimSpace(f.Path), "/")
		if f.Path == "" || f.Path == ContentFile || seen[f.Path] {
			continue
		}
		seen[f.Path] = true

		f.Content = normalizeLines(f.Content)
		if isScript(f.Path) {
			f.Content = dedupeImports(f.Content)
		}
		if f.Type == "" {
			f.Type = inferType(f.Path)
		}
		out = append(out, f)
	}
	out = append(out, canonical)

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func normalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

func dedupeImports(s string) string {
	lines := strings.Split(s, "\n")
	seen := make(map[string]bool)
	out := lines[:0]
	for _, l := range lines {
		key := strings.TrimSpace(l)
		if strings.HasPrefix(key, "import ") {
			key = strings.TrimSuffix(key, ";")
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func isScript(path string) bool {
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func inferType(path string) string {
	switch {
	case strings.HasPrefix(path, "src/app/"):
		return models.FileTypePage
	case strings.HasPrefix(path, "src/components/"):
		return models.FileTypeComponent
	case strings.HasSuffix(path, ".json"), strings.HasSuffix(path, ".css"), strings.HasPrefix(path, "."):
		return models.FileTypeConfig
	default:
		return models.FileTypeUtility
	}
}
