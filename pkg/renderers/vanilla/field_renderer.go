package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	"github.com/goliatone/go-formgen-image/pkg/render/template"
	"github.com/goliatone/go-formgen-image/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

type fieldRenderer struct {
	templates template.TemplateRenderer
	registry  *components.Registry
	policy    *bluemonday.Policy
	options   render.RenderOptions
	errors    map[string][]string

	used  map[string]struct{}
	order []string
}

func newFieldRenderer(templates template.TemplateRenderer, registry *components.Registry, policy *bluemonday.Policy, options render.RenderOptions, errors map[string][]string) *fieldRenderer {
	return &fieldRenderer{
		templates: templates,
		registry:  registry,
		policy:    policy,
		options:   options,
		errors:    errors,
		used:      make(map[string]struct{}),
	}
}

// render renders field at path. A nil value falls back to the value
// recorded in RenderOptions.Values for path.
func (r *fieldRenderer) render(field model.Field, path string, value any) (string, error) {
	name := resolveComponentName(field)
	descriptor, ok := r.registry.Descriptor(name)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", name, path)
	}
	if value == nil {
		value = r.options.Values[path]
	}

	renderChild := func(child model.Field, childValue any) (string, error) {
		return r.render(child, joinPath(path, child.Name), childValue)
	}
	data := components.ComponentData{
		Template:    r.templates,
		RenderChild: renderChild,
		Path:        path,
		InputName:   inputName(path),
		ControlID:   controlID(path),
		Value:       value,
		Vars:        r.options.WidgetVars(path),
		Locale:      r.options.Locale,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", name, path, err)
	}
	if _, seen := r.used[name]; !seen {
		r.used[name] = struct{}{}
		r.order = append(r.order, name)
	}

	if descriptor.Chromeless {
		return control.String(), nil
	}
	return r.chrome(field, name, path, control.String()), nil
}

func (r *fieldRenderer) chrome(field model.Field, componentName, path, control string) string {
	messages := r.errors[path]

	var b strings.Builder
	b.Grow(len(control) + 256)
	b.WriteString(`<div class="imagefield-field`)
	if len(messages) > 0 {
		b.WriteString(` has-error`)
	}
	b.WriteString(`" data-component="`)
	b.WriteString(html.EscapeString(componentName))
	b.WriteString("\">\n")

	if label := strings.TrimSpace(field.Label); label != "" && field.UIHints["hideLabel"] != "true" {
		b.WriteString(`<label for="`)
		b.WriteString(html.EscapeString(controlID(path)))
		b.WriteString(`">`)
		b.WriteString(r.policy.Sanitize(label))
		if field.Required {
			b.WriteString(` *`)
		}
		b.WriteString("</label>\n")
	}

	b.WriteString(strings.TrimRight(control, "\n"))
	b.WriteByte('\n')

	if desc := strings.TrimSpace(field.Description); desc != "" {
		b.WriteString(`<small class="imagefield-help">`)
		b.WriteString(r.policy.Sanitize(desc))
		b.WriteString("</small>\n")
	}
	for _, message := range messages {
		b.WriteString(`<p class="imagefield-error">`)
		b.WriteString(html.EscapeString(message))
		b.WriteString("</p>\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}

func (r *fieldRenderer) assets() ([]string, []components.Script) {
	return r.registry.Assets(r.order)
}

func resolveComponentName(field model.Field) string {
	if widget := widgets.ExplicitWidget(field); widget != "" {
		switch widget {
		case widgets.WidgetText:
			return components.NameInput
		default:
			return widget
		}
	}
	switch field.Type {
	case model.FieldTypeBoolean:
		return components.NameCheckbox
	case model.FieldTypeObject:
		return components.NameObject
	}
	if strings.EqualFold(field.UIHints["inputType"], "hidden") {
		return components.NameHidden
	}
	return components.NameInput
}

// inputName converts a dotted path into bracket notation
// ("photo.base64" becomes "photo[base64]").
func inputName(path string) string {
	parts := strings.Split(path, ".")
	if len(parts) == 1 {
		return path
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteByte('[')
		b.WriteString(part)
		b.WriteByte(']')
	}
	return b.String()
}

func controlID(path string) string {
	return "fg-" + strings.ReplaceAll(path, ".", "-")
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
