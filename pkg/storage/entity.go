package storage

import (
	"fmt"
	"reflect"
	"strings"
)

// TagName is the struct tag naming the form field a string field stores the
// file name for.
const TagName = "imagefield"

// Uploadable entities manage their own stored file names.
type Uploadable interface {
	UploadedFile(field string) (string, bool)
	SetUploadedFile(field, name string)
}

// FileName returns the stored file name recorded on entity for field. The
// boolean is false when the entity maps the field but records no file.
func FileName(entity any, field string) (string, bool, error) {
	if u, ok := entity.(Uploadable); ok {
		name, ok := u.UploadedFile(field)
		return name, ok && name != "", nil
	}
	value, err := taggedField(entity, field, false)
	if err != nil {
		return "", false, err
	}
	name := value.String()
	return name, name != "", nil
}

// SetFileName records name on entity for field. An empty name clears it.
func SetFileName(entity any, field, name string) error {
	if u, ok := entity.(Uploadable); ok {
		u.SetUploadedFile(field, name)
		return nil
	}
	value, err := taggedField(entity, field, true)
	if err != nil {
		return err
	}
	value.SetString(name)
	return nil
}

func taggedField(entity any, field string, settable bool) (reflect.Value, error) {
	v := reflect.ValueOf(entity)
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %q on nil entity", ErrUnmappedField, field)
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, ErrNotAddressable
		}
		v = v.Elem()
	} else if settable {
		return reflect.Value{}, ErrNotAddressable
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %q on %s", ErrUnmappedField, field, v.Type())
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, _, _ := strings.Cut(sf.Tag.Get(TagName), ",")
		if tag != field {
			continue
		}
		if sf.Type.Kind() != reflect.String || !sf.IsExported() {
			return reflect.Value{}, fmt.Errorf("storage: %s.%s must be an exported string to hold %q", t.Name(), sf.Name, field)
		}
		return v.Field(i), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %q on %s", ErrUnmappedField, field, t)
}
