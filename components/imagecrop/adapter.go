package imagecrop

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

// Adapter declares the image crop field and drives its per-request
// lifecycle. It holds no per-request state and is safe for concurrent use
// as long as its collaborators are.
type Adapter struct {
	translator  Translator
	storage     StorageResolver
	remover     UploadRemover
	transformer DataTransformer
	logger      *slog.Logger
}

// AdapterOption configures an Adapter at construction.
type AdapterOption func(*Adapter)

// WithLogger routes lifecycle debug logs to logger.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTransformer swaps the base64 transformer.
func WithTransformer(t DataTransformer) AdapterOption {
	return func(a *Adapter) {
		if t != nil {
			a.transformer = t
		}
	}
}

// New constructs an adapter around its three collaborators.
func New(translator Translator, storage StorageResolver, remover UploadRemover, options ...AdapterOption) *Adapter {
	a := &Adapter{
		translator:  translator,
		storage:     storage,
		remover:     remover,
		transformer: Base64ImageTransformer{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// DeclareOptions resolves the field options: defaults, the five canonical
// aspect ratios labelled through the translator, then fns.
func (a *Adapter) DeclareOptions(fns ...OptionFn) Options {
	return NewOptions(a.translator, fns...)
}

// DeclareFields returns the field schema: an object carrying one hidden
// base64 child. The delete checkbox is attached per form by OnInitialBind.
func (a *Adapter) DeclareFields(name string, opts Options) model.Field {
	return baseField(name, opts)
}

// NewForm creates the request-scoped state for one field instance.
func (a *Adapter) NewForm(name string, opts Options) *Form {
	opts = normalizeOptions(opts)
	return &Form{
		name:        name,
		opts:        opts,
		schema:      a.DeclareFields(name, opts),
		transformer: a.transformer,
		state:       NoDeleteField,
	}
}

// OnInitialBind runs once when initial data is bound to the form. It attaches
// the delete checkbox when deletion is allowed, a parent entity exists, and
// the storage resolver finds a stored file for the field. Resolver errors are
// returned unmodified.
func (a *Adapter) OnInitialBind(ctx context.Context, form *Form, parent Entity) error {
	if form == nil {
		return ErrNilForm
	}
	if form.bound {
		return ErrPhaseRepeated
	}
	form.bound = true

	if !form.opts.AllowDelete {
		return nil
	}
	if isAbsent(parent) || a.storage == nil {
		a.logger.DebugContext(ctx, "imagecrop: no entity, delete field skipped", "field", form.name)
		return nil
	}

	path, ok, err := a.storage.ResolvePath(ctx, parent, form.name)
	if err != nil {
		return err
	}
	if !ok || path == "" {
		a.logger.DebugContext(ctx, "imagecrop: no stored file, delete field skipped", "field", form.name)
		return nil
	}

	form.attachDeleteField()
	a.logger.DebugContext(ctx, "imagecrop: delete field attached", "field", form.name, "path", path)
	return nil
}

// OnPostSubmit runs once after submission. When the delete checkbox was
// attached and submitted checked it removes the upload exactly once; any
// other outcome keeps the file. Removal errors are returned unmodified and
// leave the form in DeleteFieldPresent.
func (a *Adapter) OnPostSubmit(ctx context.Context, form *Form, parent Entity) error {
	if form == nil {
		return ErrNilForm
	}
	if form.postSubmitted {
		return ErrPhaseRepeated
	}
	form.postSubmitted = true

	if !form.opts.AllowDelete {
		return nil
	}
	if form.state != DeleteFieldPresent || !form.deleteChecked || a.remover == nil {
		form.state = Kept
		return nil
	}

	if err := a.remover.Remove(ctx, parent, form.name); err != nil {
		return err
	}
	form.state = Removed
	a.logger.DebugContext(ctx, "imagecrop: upload removed", "field", form.name)
	return nil
}

// Bind creates a form and runs the initial binding phase.
func (a *Adapter) Bind(ctx context.Context, name string, opts Options, parent Entity) (*Form, error) {
	form := a.NewForm(name, opts)
	if err := a.OnInitialBind(ctx, form, parent); err != nil {
		return nil, err
	}
	return form, nil
}

// Handle submits values and runs the post-submit phase. The post-submit hook
// runs even when the payload fails to decode; its error takes precedence over
// the validation error.
func (a *Adapter) Handle(ctx context.Context, form *Form, parent Entity, values map[string]string) error {
	if form == nil {
		return ErrNilForm
	}
	submitErr := form.Submit(values)
	if submitErr != nil && !IsDecodeError(submitErr) {
		return submitErr
	}
	if err := a.OnPostSubmit(ctx, form, parent); err != nil {
		return err
	}
	return submitErr
}

func isAbsent(entity Entity) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
