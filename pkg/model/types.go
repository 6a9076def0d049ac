package model

// FieldType is the simplified enum for form-friendly field kinds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
)

// Metadata keys shared by builders, decorators, and renderers.
const (
	MetadataWidget            = "widget"
	MetadataMapped            = "mapped"
	MetadataTranslationDomain = "translationDomain"
)

// Field models an individual input inside a form. Struct fields are annotated
// so renderers can serialise them directly when needed.
type Field struct {
	Name        string            `json:"name"`
	Type        FieldType         `json:"type"`
	Format      string            `json:"format,omitempty"`
	Required    bool              `json:"required"`
	Label       string            `json:"label,omitempty"`
	Description string            `json:"description,omitempty"`
	Default     any               `json:"default,omitempty"`
	Nested      []Field           `json:"nested,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Child returns the nested field with the supplied name.
func (f *Field) Child(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Nested {
		if f.Nested[i].Name == name {
			return &f.Nested[i], true
		}
	}
	return nil, false
}

// Mapped reports whether the field binds onto the parent data model. Fields
// default to mapped unless Metadata["mapped"] is "false".
func (f Field) Mapped() bool {
	if f.Metadata == nil {
		return true
	}
	return f.Metadata[MetadataMapped] != "false"
}

// FormModel is the top-level representation renderers consume.
type FormModel struct {
	OperationID string            `json:"operationId"`
	Endpoint    string            `json:"endpoint"`
	Method      string            `json:"method"`
	Summary     string            `json:"summary,omitempty"`
	Fields      []Field           `json:"fields"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	UIHints     map[string]string `json:"uiHints,omitempty"`
}

// Field returns a pointer to the top-level field with the supplied name.
func (f *FormModel) Field(name string) (*Field, bool) {
	if f == nil {
		return nil, false
	}
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the field, including nested fields and maps.
// Default is copied by value.
func (f Field) Clone() Field {
	out := f
	out.Metadata = cloneStrings(f.Metadata)
	out.UIHints = cloneStrings(f.UIHints)
	if f.Nested != nil {
		out.Nested = make([]Field, len(f.Nested))
		for i, child := range f.Nested {
			out.Nested[i] = child.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the form model.
func (f FormModel) Clone() FormModel {
	out := f
	out.Metadata = cloneStrings(f.Metadata)
	out.UIHints = cloneStrings(f.UIHints)
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, field := range f.Fields {
			out.Fields[i] = field.Clone()
		}
	}
	return out
}

func cloneStrings(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
