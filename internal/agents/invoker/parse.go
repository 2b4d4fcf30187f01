package invoker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"site-pipeline/internal/common/validation"
)

var ErrNoJSON = errors.New("no JSON object found in model output")

// fenceLine matches a markdown code fence on a line of its own. A fence
// inside a JSON string value never starts a raw line, since newlines there
// are escaped.
var fenceLine = regexp.MustCompile("(?m)^[ \t]*```[A-Za-z0-9_-]*[ \t]*$")

// ExtractJSON pulls the first JSON object out of model text. Bare JSON is
// returned as is; otherwise markdown code fences, surrounding prose,
// comments and trailing commas are tolerated.
func ExtractJSON(text string) ([]byte, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return []byte(s), nil
	}

	if fences := fenceLine.FindAllStringIndex(s, -1); len(fences) > 0 {
		body := s[fences[0][1]:]
		if len(fences) > 1 {
			last := fences[len(fences)-1]
			body = s[fences[0][1]:last[0]]
		}
		s = strings.TrimSpace(body)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	out := jsonc.ToJSON([]byte(s[start : end+1]))
	if !json.Valid(out) {
		return nil, fmt.Errorf("malformed JSON in model output")
	}
	return out, nil
}

// Decode extracts, schema-checks and unmarshals model text into T.
func Decode[T any](text string, schema *validation.Schema) (T, error) {
	var out T

	data, err := ExtractJSON(text)
	if err != nil {
		return out, err
	}

	if schema != nil {
		if res := schema.ValidateJSON(data); !res.Valid {
			return out, fmt.Errorf("schema %s: %s", schema.Name(), res.Error())
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
