package formgenwiring

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formgen-image/components/imagecrop"
	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

// Metadata keys read from a source field to override the declared options,
// and written onto the expanded field.
const (
	MetadataMaxWidth    = "imagecrop.maxWidth"
	MetadataMaxHeight   = "imagecrop.maxHeight"
	MetadataAllowDelete = "imagecrop.allowDelete"
	MetadataDownloadURI = "imagecrop.downloadUri"
	MetadataEndpoint    = "imagecrop.endpoint"
)

// ImageCropDecorator returns a model.Decorator that swaps every field the
// registry resolves to the image-crop widget for the adapter's field schema
// (an object with a hidden base64 child). Label, description and required
// flags carry over from the source field. The aspect ratio endpoint is
// recorded under MetadataEndpoint, mounted at <basePath><RoutePath>.
func ImageCropDecorator(adapter *imagecrop.Adapter, registry *widgets.Registry, basePath string, fns ...imagecrop.OptionFn) model.Decorator {
	if adapter == nil {
		adapter = imagecrop.New(nil, nil, nil)
	}
	if registry == nil {
		registry = widgets.NewRegistry()
	}
	endpoint := imagecrop.MountPath(basePath)

	return model.DecoratorFunc(func(form *model.FormModel) error {
		if form == nil {
			return nil
		}
		form.Fields = expandFields(adapter, registry, endpoint, form.Fields, fns)
		return nil
	})
}

func expandFields(adapter *imagecrop.Adapter, registry *widgets.Registry, endpoint string, fields []model.Field, fns []imagecrop.OptionFn) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	out := make([]model.Field, len(fields))
	for idx, field := range fields {
		widget, _ := registry.Resolve(field)
		switch {
		case widget == widgets.WidgetImageCrop && !isExpanded(field):
			out[idx] = expandField(adapter, endpoint, field, fns)
		case len(field.Nested) > 0 && !isExpanded(field):
			field.Nested = expandFields(adapter, registry, endpoint, field.Nested, fns)
			out[idx] = field
		default:
			out[idx] = field
		}
	}
	return out
}

func expandField(adapter *imagecrop.Adapter, endpoint string, src model.Field, fns []imagecrop.OptionFn) model.Field {
	all := append(append([]imagecrop.OptionFn(nil), fns...), metadataOptions(src.Metadata)...)
	opts := adapter.DeclareOptions(all...)

	field := adapter.DeclareFields(src.Name, opts)
	field.Label = src.Label
	field.Description = src.Description
	field.Required = src.Required
	for key, value := range src.Metadata {
		if _, ok := field.Metadata[key]; !ok {
			field.Metadata[key] = value
		}
	}
	for key, value := range src.UIHints {
		if _, ok := field.UIHints[key]; !ok {
			field.UIHints[key] = value
		}
	}
	field.Metadata[MetadataEndpoint] = endpoint
	return field
}

func metadataOptions(meta map[string]string) []imagecrop.OptionFn {
	if len(meta) == 0 {
		return nil
	}
	var fns []imagecrop.OptionFn
	if n, err := strconv.Atoi(strings.TrimSpace(meta[MetadataMaxWidth])); err == nil {
		fns = append(fns, imagecrop.WithMaxWidth(n))
	}
	if n, err := strconv.Atoi(strings.TrimSpace(meta[MetadataMaxHeight])); err == nil {
		fns = append(fns, imagecrop.WithMaxHeight(n))
	}
	if allow, err := strconv.ParseBool(strings.TrimSpace(meta[MetadataAllowDelete])); err == nil {
		fns = append(fns, imagecrop.WithAllowDelete(allow))
	}
	if uri := strings.TrimSpace(meta[MetadataDownloadURI]); uri != "" {
		fns = append(fns, imagecrop.WithDownloadURI(uri))
	}
	if domain := strings.TrimSpace(meta[model.MetadataTranslationDomain]); domain != "" {
		fns = append(fns, imagecrop.WithTranslationDomain(domain))
	}
	return fns
}

func isExpanded(field model.Field) bool {
	if field.Type != model.FieldTypeObject {
		return false
	}
	_, ok := field.Child(imagecrop.FieldBase64)
	return ok
}

// ImageCropFields returns the top-level names of fields already expanded by
// ImageCropDecorator, in declaration order.
func ImageCropFields(form model.FormModel) []string {
	var names []string
	for _, field := range form.Fields {
		if isExpanded(field) && widgets.ExplicitWidget(field) == widgets.WidgetImageCrop {
			names = append(names, field.Name)
		}
	}
	return names
}

// FieldOptions resolves the options an expanded field was declared with, so
// request handlers can bind a form matching the decorated schema. fns apply
// before the field metadata, as in ImageCropDecorator.
func FieldOptions(adapter *imagecrop.Adapter, field model.Field, fns ...imagecrop.OptionFn) imagecrop.Options {
	if adapter == nil {
		adapter = imagecrop.New(nil, nil, nil)
	}
	all := append(append([]imagecrop.OptionFn(nil), fns...), metadataOptions(field.Metadata)...)
	return adapter.DeclareOptions(all...)
}

// AttachForm replaces the children of the expanded top-level field named
// after bound with the bound form's children, carrying over the delete
// checkbox once it is attached. It reports whether the field was found.
func AttachForm(form *model.FormModel, bound *imagecrop.Form) bool {
	if form == nil || bound == nil {
		return false
	}
	field, ok := form.Field(bound.Name())
	if !ok || !isExpanded(*field) {
		return false
	}
	field.Nested = bound.Schema().Nested
	return true
}
