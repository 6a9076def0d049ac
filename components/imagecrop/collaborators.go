package imagecrop

import "context"

// BundleDomain is the translation domain aspect ratio labels are looked up in,
// and the default domain for the delete checkbox label.
const BundleDomain = "PrestaImageBundle"

// Entity is the object owning the image field. The adapter never inspects it;
// it only hands it to the storage collaborators.
type Entity = any

// Translator resolves a message key inside a translation domain. Missing keys
// follow the implementation's own fallback policy.
type Translator interface {
	Translate(key, domain string) string
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(key, domain string) string

// Translate calls the wrapped function, echoing the key when fn is nil.
func (fn TranslatorFunc) Translate(key, domain string) string {
	if fn == nil {
		return key
	}
	return fn(key, domain)
}

// StorageResolver locates the file stored for an entity field. A false ok
// with a nil error means no file is stored.
type StorageResolver interface {
	ResolvePath(ctx context.Context, entity Entity, field string) (string, bool, error)
	ResolveURI(ctx context.Context, entity Entity, field string) (string, bool, error)
}

// UploadRemover deletes the stored file for an entity field and clears the
// entity's reference to it.
type UploadRemover interface {
	Remove(ctx context.Context, entity Entity, field string) error
}

// UploadRemoverFunc adapts a function into an UploadRemover.
type UploadRemoverFunc func(ctx context.Context, entity Entity, field string) error

// Remove calls the wrapped function.
func (fn UploadRemoverFunc) Remove(ctx context.Context, entity Entity, field string) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, entity, field)
}
