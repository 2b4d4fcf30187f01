package contentpack

import (
	"regexp"
	"strings"

	"site-pipeline/internal/models"
)

var todoPattern = regexp.MustCompile(`\{\{\s*TODO:\s*([^}]*)\}\}`)

// ScanTodos returns one marker per {{TODO: ...}} placeholder found in any
// string value of the pack. Markers under legal content are required.
func ScanTodos(pack *models.ContentPack) ([]models.TodoMarker, error) {
	if pack == nil {
		return nil, nil
	}
	doc, err := toGeneric(pack)
	if err != nil {
		return nil, err
	}

	var markers []models.TodoMarker
	walkStrings(doc, "", func(l leaf) {
		for _, m := range todoPattern.FindAllStringSubmatch(l.Value, -1) {
			markers = append(markers, models.TodoMarker{
				Path:        l.Path,
				Placeholder: m[0],
				Description: strings.TrimSpace(m[1]),
				Required:    requiredPath(l.Path),
			})
		}
	})
	return markers, nil
}

func requiredPath(path string) bool {
	p := strings.ToLower(path)
	return strings.HasPrefix(p, "legal") || strings.Contains(p, "imprint")
}

// ContainsTodo reports whether s holds a placeholder.
func ContainsTodo(s string) bool {
	return todoPattern.MatchString(s)
}
