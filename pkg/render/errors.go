package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

// ErrorMapping splits an error payload into field-level and form-level
// messages keyed by the dotted field paths used throughout the render
// pipeline.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// MapErrorPayload normalises server error payloads (dotted paths, JSON
// pointers, bracketed indexes) into field paths known to form. A message for
// a child path the form does not declare attaches to its nearest declared
// ancestor, so "photo.base64" lands on "photo" when only "photo" renders
// errors. Unknown paths become form-level errors.
func MapErrorPayload(form model.FormModel, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{})
	collectFieldPaths(form.Fields, "", known)

	for raw, messages := range payload {
		messages = normalizeMessages(messages)
		if len(messages) == 0 {
			continue
		}
		path := mapErrorPath(raw, known)
		if path == "" {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[path] = append(mapping.Fields[path], messages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) string {
	if isFormLevelKey(raw) {
		return ""
	}
	segments := parsePathSegments(raw)
	if len(segments) == 0 {
		return ""
	}

	best := ""
	for _, candidate := range [][]string{
		segments,
		dropWrapperSegments(segments),
		stripNumericSegments(dropWrapperSegments(segments)),
	} {
		path := longestMatchingPath(candidate, known)
		if strings.Count(path, ".") > strings.Count(best, ".") || best == "" {
			best = path
		}
	}
	return best
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimLeft(clean, "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"request": {},
	"payload": {},
	"data":    {},
	"form":    {},
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 1 {
		if _, ok := wrapperSegments[strings.ToLower(out[0])]; !ok {
			break
		}
		out = out[1:]
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func longestMatchingPath(segments []string, known map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := known[candidate]; ok {
			return candidate
		}
	}
	return ""
}

func collectFieldPaths(fields []model.Field, prefix string, dest map[string]struct{}) {
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		path := joinPath(prefix, name)
		dest[path] = struct{}{}
		collectFieldPaths(field.Nested, path, dest)
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "__all__", "non_field_errors":
		return true
	}
	return false
}
