package contentpack

import (
	"strings"

	"site-pipeline/internal/models"
)

// StringSet is the set of every text value in a pack.
type StringSet map[string]struct{}

// Has reports whether v, trimmed, is exactly one of the pack values. The
// empty string is always present.
func (s StringSet) Has(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	_, ok := s[v]
	return ok
}

// Strings flattens all string values of a pack, plus the SEO page keys.
func Strings(pack *models.ContentPack) (StringSet, error) {
	doc, err := toGeneric(pack)
	if err != nil {
		return nil, err
	}
	set := make(StringSet)
	walkStrings(doc, "", func(l leaf) {
		if v := strings.TrimSpace(l.Value); v != "" {
			set[v] = struct{}{}
		}
	})
	for k := range pack.SEO {
		set[k] = struct{}{}
	}
	return set, nil
}
