package contentpack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// leaf is a string value found in a JSON document.
type leaf struct {
	Path  string
	Value string
}

// toGeneric converts v to decoded JSON (maps, slices and scalars).
func toGeneric(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// walkStrings visits every string leaf in document order, with map keys
// sorted. Paths look like pages[0].sections[1].content.headline.
func walkStrings(node interface{}, path string, visit func(leaf)) {
	switch n := node.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkStrings(n[k], joinPath(path, k), visit)
		}
	case []interface{}:
		for i, item := range n {
			walkStrings(item, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	case string:
		visit(leaf{Path: path, Value: n})
	}
}

func joinPath(base, key string) string {
	if strings.ContainsAny(key, "./[]") {
		return fmt.Sprintf("%s[%q]", base, key)
	}
	if base == "" {
		return key
	}
	return base + "." + key
}
