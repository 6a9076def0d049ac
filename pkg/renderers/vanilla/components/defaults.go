package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

const templatePrefix = "components/"

// Asset names shipped with the image crop component.
const (
	ImageCropStylesheet = "imagefield.css"
	ImageCropScript     = "imagefield-cropper.js"
)

// MetadataEndpoint is the field metadata key carrying the aspect ratio
// endpoint the cropper runtime may refresh labels from.
const MetadataEndpoint = "imagecrop.endpoint"

// NewDefaultRegistry constructs a registry with the built-in components.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "input"),
	})
	registry.MustRegister(NameHidden, Descriptor{
		Renderer:   templateComponentRenderer(templatePrefix + "hidden"),
		Chromeless: true,
	})
	registry.MustRegister(NameCheckbox, Descriptor{
		Renderer: templateComponentRenderer(templatePrefix + "checkbox"),
	})
	registry.MustRegister(NameObject, Descriptor{
		Renderer: objectRenderer,
	})
	registry.MustRegister(NameImageCrop, Descriptor{
		Renderer:    imageCropRenderer,
		Stylesheets: []string{ImageCropStylesheet},
		Scripts:     []Script{{Src: ImageCropScript, Defer: true}},
	})

	return registry
}

func templateComponentRenderer(name string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", name)
		}
		rendered, err := data.Template.RenderTemplate(name, map[string]any{
			"id":       data.ControlID,
			"name":     data.InputName,
			"value":    valueString(data.Value),
			"checked":  truthy(data.Value),
			"required": field.Required,
			"class":    field.UIHints["class"],
		})
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", name, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

func objectRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if data.RenderChild == nil {
		return fmt.Errorf("components: child renderer not configured for %q", data.Path)
	}
	buf.WriteString(`<fieldset class="imagefield-object" id="`)
	buf.WriteString(data.ControlID)
	buf.WriteString("\">\n")
	for _, child := range field.Nested {
		html, err := data.RenderChild(child, nil)
		if err != nil {
			return err
		}
		buf.WriteString(html)
	}
	buf.WriteString("</fieldset>\n")
	return nil
}

// imageCropRenderer renders the cropper chrome from the widget variables,
// then the hidden base64 carrier and, when the variables include it, the
// delete checkbox.
func imageCropRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if data.Template == nil || data.RenderChild == nil {
		return fmt.Errorf("components: image-crop renderer not configured for %q", data.Path)
	}

	vars := make(map[string]any, len(data.Vars))
	for key, value := range data.Vars {
		if key == "object" {
			continue
		}
		vars[key] = value
	}

	payload := map[string]any{
		"id":       data.ControlID,
		"name":     data.InputName,
		"vars":     vars,
		"locale":   data.Locale,
		"endpoint": field.Metadata[MetadataEndpoint],
	}

	for _, child := range field.Nested {
		switch child.Name {
		case "base64":
			html, err := data.RenderChild(child, vars["value"])
			if err != nil {
				return err
			}
			payload["base64"] = html
		case "delete":
			del, ok := vars["delete"].(map[string]any)
			if !ok {
				continue
			}
			html, err := data.RenderChild(child, del["checked"])
			if err != nil {
				return err
			}
			payload["delete"] = html
		}
	}

	rendered, err := data.Template.RenderTemplate(templatePrefix+"image_crop", payload)
	if err != nil {
		return fmt.Errorf("components: render image-crop %q: %w", data.Path, err)
	}
	buf.WriteString(rendered)
	return nil
}

func valueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "1"
		}
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes", "checked":
			return true
		}
	}
	return false
}
