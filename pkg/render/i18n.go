package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

// DefaultDomain is the catalog domain used when a field names none.
const DefaultDomain = "messages"

const (
	formTitleKeyHint        = "layout.titleKey"
	fieldLabelKeyHint       = "labelKey"
	fieldDescriptionKeyHint = "descriptionKey"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// translator is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key within a catalog domain for a locale.
type Translator interface {
	Translate(locale, domain, key string) (string, error)
}

// MissingTranslationHandler returns the string rendered when a key has no
// translation. err is the translator error, or ErrMissingTranslator.
type MissingTranslationHandler func(locale, domain, key string, err error) string

func missingTranslationDefault(_, _, key string, _ error) string {
	return key
}

// LocalizeFormModel translates labels and descriptions in place.
//
// A field whose metadata (or an ancestor's) names a translation domain has
// its label treated as a message key in that domain. Explicit labelKey/descriptionKey UI hints
// take precedence, falling back to the current text when missing.
func LocalizeFormModel(form *model.FormModel, opts RenderOptions) {
	if form == nil {
		return
	}
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	if key := strings.TrimSpace(form.UIHints[formTitleKeyHint]); key != "" {
		form.UIHints["layout.title"] = translate(opts, DefaultDomain, key, form.UIHints["layout.title"], onMissing)
	}
	for i := range form.Fields {
		localizeField(&form.Fields[i], opts, DefaultDomain, false, onMissing)
	}
}

func localizeField(field *model.Field, opts RenderOptions, domain string, keyed bool, onMissing MissingTranslationHandler) {
	if field == nil {
		return
	}
	if explicit := strings.TrimSpace(field.Metadata[model.MetadataTranslationDomain]); explicit != "" {
		domain = explicit
		keyed = true
	}

	switch key := strings.TrimSpace(field.UIHints[fieldLabelKeyHint]); {
	case key != "":
		field.Label = translate(opts, domain, key, field.Label, onMissing)
	case keyed && strings.TrimSpace(field.Label) != "":
		field.Label = translate(opts, domain, strings.TrimSpace(field.Label), "", onMissing)
	}
	if key := strings.TrimSpace(field.UIHints[fieldDescriptionKeyHint]); key != "" {
		field.Description = translate(opts, domain, key, field.Description, onMissing)
	}

	for i := range field.Nested {
		localizeField(&field.Nested[i], opts, domain, keyed, onMissing)
	}
}

func translate(opts RenderOptions, domain, key, fallback string, onMissing MissingTranslationHandler) string {
	if opts.Translator == nil {
		if strings.TrimSpace(fallback) != "" {
			return fallback
		}
		return onMissing(opts.Locale, domain, key, ErrMissingTranslator)
	}
	msg, err := opts.Translator.Translate(opts.Locale, domain, key)
	if err == nil && strings.TrimSpace(msg) != "" {
		return msg
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return onMissing(opts.Locale, domain, key, err)
}

// TemplateI18nFuncs returns template helpers bound to t:
//
//	translate(locale, key, domain) string
//
// An empty domain resolves in DefaultDomain. Missing keys render through
// onMissing, or as the key when onMissing is nil.
func TemplateI18nFuncs(t Translator, onMissing MissingTranslationHandler) map[string]any {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	return map[string]any{
		"translate": func(locale, key, domain string) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			if strings.TrimSpace(domain) == "" {
				domain = DefaultDomain
			}
			return translate(RenderOptions{Locale: locale, Translator: t}, domain, key, "", onMissing)
		},
	}
}
