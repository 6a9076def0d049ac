package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	rendertemplate "github.com/goliatone/go-formgen-image/pkg/render/template"
	"github.com/goliatone/go-formgen-image/pkg/render/template/pongo"
	"github.com/goliatone/go-formgen-image/pkg/renderers/vanilla/components"
)

const defaultSubmitLabel = "Save"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	translator       render.Translator
	policy           *bluemonday.Policy
	assetBaseURL     string
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithTranslator sets the translator used by templates and, when a request
// supplies none, by label localisation.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithSanitizer replaces the policy applied to labels and descriptions.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// WithAssetBaseURL sets the URL prefix component assets are linked under.
func WithAssetBaseURL(prefix string) Option {
	return func(cfg *config) {
		cfg.assetBaseURL = strings.TrimSpace(prefix)
	}
}

// Renderer renders form models to HTML through pongo2 templates.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	registry     *components.Registry
	translator   render.Translator
	policy       *bluemonday.Policy
	assetBaseURL string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		assetBaseURL: "/assets/",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.policy == nil {
		cfg.policy = bluemonday.UGCPolicy()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tpl"),
			pongo.WithTemplateFuncs(render.TemplateI18nFuncs(cfg.translator, nil)),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:    templates,
		registry:     cfg.registry,
		translator:   cfg.translator,
		policy:       cfg.policy,
		assetBaseURL: cfg.assetBaseURL,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render renders form as an HTML form. The form model is copied before
// localisation so callers can reuse it across requests.
func (r *Renderer) Render(_ context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	working := form.Clone()
	if options.Translator == nil {
		options.Translator = r.translator
	}
	render.LocalizeFormModel(&working, options)
	mapping := render.MapErrorPayload(working, options.Errors)

	fields := newFieldRenderer(r.templates, r.registry, r.policy, options, mapping.Fields)
	htmlFields := make([]string, 0, len(working.Fields))
	for _, field := range working.Fields {
		html, err := fields.render(field, field.Name, nil)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		htmlFields = append(htmlFields, html)
	}

	method, override := resolveMethod(working.Method, options.Method)
	hidden := options.HiddenFields
	if override != "" {
		hidden = render.MergeHiddenFields(hidden, render.Hidden("_method", override))
	}

	stylesheets, scripts := fields.assets()
	for i, href := range stylesheets {
		stylesheets[i] = r.assetURL(href)
	}
	for i := range scripts {
		if scripts[i].Src != "" {
			scripts[i].Src = r.assetURL(scripts[i].Src)
		}
	}

	submit := strings.TrimSpace(working.UIHints["submitLabel"])
	if submit == "" {
		submit = defaultSubmitLabel
	}

	result, err := r.templates.RenderTemplate("form", map[string]any{
		"form": map[string]any{
			"id":     working.OperationID,
			"action": working.Endpoint,
			"method": method,
			"title":  working.UIHints["layout.title"],
			"submit": submit,
		},
		"fields":      htmlFields,
		"hidden":      render.SortedHiddenFields(hidden),
		"errors":      mapping.Form,
		"stylesheets": stylesheets,
		"scripts":     scripts,
		"locale":      options.Locale,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) assetURL(name string) string {
	if strings.Contains(name, "://") || strings.HasPrefix(name, "/") {
		return name
	}
	base := r.assetBaseURL
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + name
}

// resolveMethod returns the method the browser submits with and, for verbs
// browsers cannot send, the verb to carry in a _method field.
func resolveMethod(declared, override string) (string, string) {
	method := strings.ToUpper(strings.TrimSpace(override))
	if method == "" {
		method = strings.ToUpper(strings.TrimSpace(declared))
	}
	switch method {
	case "", http.MethodPost:
		return "post", ""
	case http.MethodGet:
		return "get", ""
	}
	if slices.Contains([]string{http.MethodPut, http.MethodPatch, http.MethodDelete}, method) {
		return "post", method
	}
	return "post", ""
}
