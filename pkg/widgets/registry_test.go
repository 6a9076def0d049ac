package widgets

import (
	"testing"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

func TestResolve_ExplicitWidgetWins(t *testing.T) {
	reg := NewRegistry()
	field := model.Field{
		Type: model.FieldTypeBoolean,
		Metadata: map[string]string{
			"admin.widget": "custom-toggle",
		},
	}

	if got, ok := reg.Resolve(field); !ok || got != "custom-toggle" {
		t.Fatalf("expected explicit widget to win, got %q (ok=%v)", got, ok)
	}
}

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{
			name:   "image format",
			field:  model.Field{Type: model.FieldTypeString, Format: "image"},
			expect: WidgetImageCrop,
		},
		{
			name:   "image format case insensitive",
			field:  model.Field{Type: model.FieldTypeString, Format: " Image-Base64 "},
			expect: WidgetImageCrop,
		},
		{
			name: "hidden input",
			field: model.Field{
				Type:    model.FieldTypeString,
				Format:  "byte",
				UIHints: map[string]string{"inputType": "hidden"},
			},
			expect: WidgetHidden,
		},
		{
			name:   "boolean checkbox",
			field:  model.Field{Type: model.FieldTypeBoolean},
			expect: WidgetCheckbox,
		},
		{
			name:   "plain string",
			field:  model.Field{Type: model.FieldTypeString},
			expect: WidgetText,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if !ok || got != tc.expect {
				t.Fatalf("expected %q, got %q (ok=%v)", tc.expect, got, ok)
			}
		})
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	reg := &Registry{}
	if got, ok := reg.Resolve(model.Field{Type: model.FieldTypeBoolean}); ok {
		t.Fatalf("expected no widget from empty registry, got %q", got)
	}
}

func TestRegister_PriorityOverridesBuiltins(t *testing.T) {
	reg := NewRegistry()
	reg.Register("switch", 200, func(field model.Field) bool {
		return field.Type == model.FieldTypeBoolean
	})

	if got, _ := reg.Resolve(model.Field{Type: model.FieldTypeBoolean}); got != "switch" {
		t.Fatalf("expected custom widget to win, got %q", got)
	}
}

func TestDecorate_SetsWidgetOnNestedFields(t *testing.T) {
	reg := NewRegistry()
	form := &model.FormModel{
		Fields: []model.Field{
			{
				Name: "photo",
				Type: model.FieldTypeObject,
				Nested: []model.Field{
					{Name: "delete", Type: model.FieldTypeBoolean},
				},
			},
			{Name: "avatar", Type: model.FieldTypeString, Format: "image"},
		},
	}

	if err := reg.Decorate(form); err != nil {
		t.Fatalf("decorate: %v", err)
	}

	if got := form.Fields[0].Nested[0].Metadata["widget"]; got != WidgetCheckbox {
		t.Fatalf("expected nested checkbox widget, got %q", got)
	}
	if got := form.Fields[1].UIHints["widget"]; got != WidgetImageCrop {
		t.Fatalf("expected image-crop ui hint, got %q", got)
	}
	if _, ok := form.Fields[0].Metadata["widget"]; ok {
		t.Fatalf("did not expect widget on unmatched object field: %#v", form.Fields[0].Metadata)
	}
}
