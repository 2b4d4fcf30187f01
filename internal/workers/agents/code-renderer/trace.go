// internal/workers/agents/code-renderer/trace.go
package coderenderer

import (
	"fmt"
	"regexp"
	"strings"

	"site-pipeline/internal/contentpack"
	"site-pipeline/internal/models"
)

// Violation is a rendered string that does not come from the content pack.
type Violation struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Literal string `json:"literal"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s:%d: %q", v.Path, v.Line, v.Literal)
}

const literal = `"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'`

var (
	classNamePattern = regexp.MustCompile(`className=("[^"]*"|'[^']*')`)
	stringPattern    = regexp.MustCompile(`"((?:[^"\\\n]|\\.)*)"|'((?:[^'\\\n]|\\.)*)'`)
	jsxTextPattern   = regexp.MustCompile(`>([^<>{}\n]+)<`)
	commentPattern   = regexp.MustCompile(`\{/\*.*?\*/\}`)

	// Attributes a browser shows or announces.
	visibleAttrPattern = regexp.MustCompile(`\b(?:alt|title|placeholder|label|aria-[a-z]+)=(` + literal + `|\{[^{}\n]*\})`)
	// A string literal that is the whole of a JSX expression.
	jsxLiteralPattern = regexp.MustCompile(`\{\s*(` + literal + `)\s*\}`)

	pathPattern       = regexp.MustCompile(`^(?:/|\./|\.\./|@/|#)\S*$`)
	schemePattern     = regexp.MustCompile(`^[a-z][a-z0-9+.-]*:\S*$`)
	identifierPattern = regexp.MustCompile(`^[a-z_$][A-Za-z0-9_$.-]*$`)
	numberPattern     = regexp.MustCompile(`^-?[0-9.]+(?:px|rem|em|%|ms|s)?$`)
)

// TraceCheck returns every literal in source files that cannot be traced to
// the pack. Literals in visible attributes and bare JSX expressions must equal
// a pack value. Elsewhere only paths, URL schemes, lowercase identifiers and
// numbers are treated as structural. Data modules, stylesheets, imports and
// class names are skipped.
func TraceCheck(files []models.GeneratedFile, pack *models.ContentPack) ([]Violation, error) {
	values, err := contentpack.Strings(pack)
	if err != nil {
		return nil, err
	}

	var out []Violation
	for _, f := range files {
		if !checked(f.Path) {
			continue
		}
		for i, line := range strings.Split(f.Content, "\n") {
			if skipLine(strings.TrimSpace(line)) {
				continue
			}
			report := func(lit string) {
				out = append(out, Violation{Path: f.Path, Line: i + 1, Literal: lit})
			}

			line = classNamePattern.ReplaceAllString(line, "")
			line = commentPattern.ReplaceAllString(line, "")

			strict := func(segment string) string {
				for _, lit := range literals(segment) {
					if !values.Has(lit) {
						report(lit)
					}
				}
				return ""
			}
			line = visibleAttrPattern.ReplaceAllStringFunc(line, strict)
			line = jsxLiteralPattern.ReplaceAllStringFunc(line, strict)

			for _, lit := range literals(line) {
				if structural(lit) || values.Has(lit) {
					continue
				}
				report(lit)
			}

			for _, m := range jsxTextPattern.FindAllStringSubmatch(stringPattern.ReplaceAllString(line, `""`), -1) {
				text := strings.TrimSpace(m[1])
				if text == "" || strings.Contains(text, "=>") || values.Has(text) {
					continue
				}
				report(text)
			}
		}
	}
	return out, nil
}

func literals(s string) []string {
	var out []string
	for _, m := range stringPattern.FindAllStringSubmatch(s, -1) {
		lit := m[1]
		if lit == "" {
			lit = m[2]
		}
		out = append(out, lit)
	}
	return out
}

func checked(path string) bool {
	if strings.HasPrefix(path, dataDir) {
		return false
	}
	return strings.HasSuffix(path, ".tsx") || strings.HasSuffix(path, ".ts") ||
		strings.HasSuffix(path, ".jsx") || strings.HasSuffix(path, ".js")
}

func skipLine(trimmed string) bool {
	return trimmed == "" ||
		strings.HasPrefix(trimmed, "import ") ||
		strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "\"use ") ||
		strings.HasPrefix(trimmed, "'use ")
}

// structural literals are paths, schemes, type tags and similar tokens such
// as "/contact", "mailto:", "hero" or "1.5rem".
func structural(lit string) bool {
	lit = strings.TrimSpace(lit)
	return lit == "" ||
		pathPattern.MatchString(lit) ||
		schemePattern.MatchString(lit) ||
		identifierPattern.MatchString(lit) ||
		numberPattern.MatchString(lit)
}
