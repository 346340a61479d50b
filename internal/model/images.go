package model

import (
	"encoding/json"
	"strings"
)

// ParseImages normalizes an image-list value into a list of references.
//
// The value may be a native list ([]string or []any of strings), a JSON
// encoding of a list (string, []byte or json.RawMessage), or a JSON string
// holding such an encoding. Anything else, including malformed JSON and
// non-string elements, yields an empty, non-nil list.
func ParseImages(v any) []string {
	switch t := v.(type) {
	case nil:
		return []string{}
	case []string:
		return cleanImages(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return cleanImages(out)
	case string:
		return parseEncodedImages([]byte(t))
	case []byte:
		return parseEncodedImages(t)
	case json.RawMessage:
		return parseEncodedImages(t)
	default:
		return []string{}
	}
}

func parseEncodedImages(b []byte) []string {
	if len(strings.TrimSpace(string(b))) == 0 {
		return []string{}
	}
	var decoded any
	if err := json.Unmarshal(b, &decoded); err != nil {
		return []string{}
	}
	switch d := decoded.(type) {
	case []any:
		return ParseImages(d)
	case string:
		// A list serialized once more as a JSON string.
		var inner []any
		if err := json.Unmarshal([]byte(d), &inner); err != nil {
			return []string{}
		}
		return ParseImages(inner)
	default:
		return []string{}
	}
}

func cleanImages(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FirstImage returns the first image reference or "".
func FirstImage(images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[0]
}
