package imagecrop

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

// Child field names.
const (
	FieldBase64 = "base64"
	FieldDelete = "delete"
)

// Form is the request-scoped state of one rendered image field: its schema,
// the delete lifecycle, and the bound data. It is not safe for concurrent use.
type Form struct {
	name        string
	opts        Options
	schema      model.Field
	transformer DataTransformer

	state         DeleteState
	bound         bool
	submitted     bool
	postSubmitted bool

	data          *Image
	payload       string
	deleteChecked bool
	errs          []error
}

// Name returns the field name the form is bound under.
func (f *Form) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// Options returns a copy of the resolved options.
func (f *Form) Options() Options {
	if f == nil {
		return Options{}
	}
	return f.opts.Clone()
}

// Schema returns a copy of the current field schema, including the delete
// checkbox once it has been attached.
func (f *Form) Schema() model.Field {
	if f == nil {
		return model.Field{}
	}
	out := f.schema
	out.Nested = append([]model.Field(nil), f.schema.Nested...)
	return out
}

// State returns the delete lifecycle state.
func (f *Form) State() DeleteState {
	if f == nil {
		return NoDeleteField
	}
	return f.state
}

// Has reports whether the schema contains the named child field.
func (f *Form) Has(child string) bool {
	if f == nil {
		return false
	}
	_, ok := f.schema.Child(child)
	return ok
}

// Data returns the bound image (initial data, or the decoded submission).
func (f *Form) Data() *Image {
	if f == nil {
		return nil
	}
	return f.data
}

// SetData seeds the model value before rendering, typically with the image
// currently attached to the entity.
func (f *Form) SetData(img *Image) {
	if f == nil {
		return
	}
	f.data = img
}

// Submitted reports whether Submit ran.
func (f *Form) Submitted() bool {
	return f != nil && f.submitted
}

// DeleteRequested reports whether the delete checkbox was submitted checked.
func (f *Form) DeleteRequested() bool {
	return f != nil && f.deleteChecked
}

// Errors returns the validation errors collected during submission.
func (f *Form) Errors() []error {
	if f == nil || len(f.errs) == 0 {
		return nil
	}
	return append([]error(nil), f.errs...)
}

// Valid reports whether the submission produced no validation errors.
func (f *Form) Valid() bool {
	return f != nil && len(f.errs) == 0
}

// ErrorPayload returns validation messages keyed by field path, the shape
// render.MapErrorPayload consumes.
func (f *Form) ErrorPayload() map[string][]string {
	if f == nil || len(f.errs) == 0 {
		return nil
	}
	out := make(map[string][]string, 1)
	for _, err := range f.errs {
		msg := err.Error()
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			msg = decodeErr.Message()
		}
		out[f.name] = append(out[f.name], msg)
	}
	return out
}

// Submit binds submitted child values (keyed "base64" and "delete"). A
// payload that fails the inward transform is recorded as a validation error
// and returned as a *DecodeError; the form still counts as submitted so the
// post-submit hook runs.
func (f *Form) Submit(values map[string]string) error {
	if f == nil {
		return ErrNilForm
	}
	if f.submitted {
		return ErrPhaseRepeated
	}
	f.submitted = true

	if f.Has(FieldDelete) {
		f.deleteChecked = parseCheckbox(values[FieldDelete])
	}

	f.payload = values[FieldBase64]
	img, err := f.transformer.ReverseTransform(f.payload)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Field == "" {
			decodeErr.Field = f.name
		}
		f.errs = append(f.errs, err)
		return err
	}
	if img != nil {
		f.data = img
	}
	return nil
}

// SubmittedValues extracts the child values for field name from a posted
// form, accepting bracket ("photo[base64]") and dotted ("photo.base64")
// input names.
func SubmittedValues(values url.Values, name string) map[string]string {
	out := make(map[string]string, 2)
	for _, child := range []string{FieldBase64, FieldDelete} {
		for _, key := range []string{name + "[" + child + "]", name + "." + child} {
			if _, ok := values[key]; ok {
				out[child] = values.Get(key)
				break
			}
		}
	}
	return out
}

func (f *Form) attachDeleteField() {
	f.schema.Nested = append(f.schema.Nested, deleteField(f.opts))
	f.state = DeleteFieldPresent
}

func parseCheckbox(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return false
	case "on", "yes", "y", "checked":
		return true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return parsed
}

func baseField(name string, opts Options) model.Field {
	return model.Field{
		Name: name,
		Type: model.FieldTypeObject,
		Metadata: map[string]string{
			model.MetadataWidget:            widgets.WidgetImageCrop,
			model.MetadataTranslationDomain: opts.TranslationDomain,
			"imagecrop.maxWidth":            strconv.Itoa(opts.MaxWidth),
			"imagecrop.maxHeight":           strconv.Itoa(opts.MaxHeight),
			"imagecrop.allowDelete":         strconv.FormatBool(opts.AllowDelete),
		},
		UIHints: map[string]string{
			"widget": widgets.WidgetImageCrop,
		},
		Nested: []model.Field{base64Field()},
	}
}

func base64Field() model.Field {
	return model.Field{
		Name:   FieldBase64,
		Type:   model.FieldTypeString,
		Format: "byte",
		Metadata: map[string]string{
			model.MetadataWidget: widgets.WidgetHidden,
		},
		UIHints: map[string]string{
			"widget":    widgets.WidgetHidden,
			"inputType": "hidden",
			"class":     "cropper-base64",
		},
	}
}

func deleteField(opts Options) model.Field {
	return model.Field{
		Name:     FieldDelete,
		Type:     model.FieldTypeBoolean,
		Required: false,
		Label:    opts.DeleteLabel,
		Metadata: map[string]string{
			model.MetadataWidget:            widgets.WidgetCheckbox,
			model.MetadataMapped:            "false",
			model.MetadataTranslationDomain: opts.TranslationDomain,
		},
		UIHints: map[string]string{
			"widget": widgets.WidgetCheckbox,
		},
	}
}
