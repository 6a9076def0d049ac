package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetImageCrop = "image-crop"
	WidgetHidden    = "hidden"
	WidgetCheckbox  = "checkbox"
	WidgetText      = "text"
)

// Formats that mark a string field as carrying image content.
var imageFormats = map[string]struct{}{
	"image":        {},
	"image-base64": {},
	"image-crop":   {},
}

// Matcher decides whether a widget renderer should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widget renderers for fields based on explicit hints or
// registered matchers. Higher priority wins; ties fall back to registration
// order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. Callers should avoid duplicate names; the
// latest registration wins during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field. Explicit hints (widget
// metadata or UI hints) are honoured before matcher evaluation.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := ExplicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Decorate implements model.Decorator, applying registry resolution to every
// field in the form. When a widget is resolved, both Metadata["widget"] and
// UIHints["widget"] are set to the chosen name, preserving existing values
// when present.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.Field, len(fields))
	for idx, field := range fields {
		decorated[idx] = r.decorateField(field)
	}
	return decorated
}

func (r *Registry) decorateField(field model.Field) model.Field {
	if widget, ok := r.Resolve(field); ok && widget != "" {
		if field.Metadata == nil {
			field.Metadata = make(map[string]string)
		}
		if field.Metadata[model.MetadataWidget] == "" {
			field.Metadata[model.MetadataWidget] = widget
		}
		if field.UIHints == nil {
			field.UIHints = make(map[string]string)
		}
		if field.UIHints["widget"] == "" {
			field.UIHints["widget"] = widget
		}
	}
	if len(field.Nested) > 0 {
		field.Nested = r.decorateFields(field.Nested)
	}
	return field
}

// ExplicitWidget returns the widget named in field metadata or UI hints.
func ExplicitWidget(field model.Field) string {
	if field.Metadata != nil {
		if widget := strings.TrimSpace(field.Metadata["admin.widget"]); widget != "" {
			return widget
		}
		if widget := strings.TrimSpace(field.Metadata[model.MetadataWidget]); widget != "" {
			return widget
		}
	}
	if field.UIHints != nil {
		if widget := strings.TrimSpace(field.UIHints["widget"]); widget != "" {
			return widget
		}
	}
	return ""
}

// IsImageFormat reports whether format marks a string field as image content.
func IsImageFormat(format string) bool {
	_, ok := imageFormats[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetImageCrop, 100, func(field model.Field) bool {
		return field.Type == model.FieldTypeString && IsImageFormat(field.Format)
	})

	r.Register(WidgetHidden, 90, func(field model.Field) bool {
		if field.UIHints == nil {
			return false
		}
		return strings.EqualFold(strings.TrimSpace(field.UIHints["inputType"]), "hidden")
	})

	r.Register(WidgetCheckbox, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})

	r.Register(WidgetText, 10, func(field model.Field) bool {
		return field.Type == model.FieldTypeString
	})
}
