package imagecrop

import (
	"context"

	"github.com/goliatone/go-formgen-image/pkg/model"
)

// ViewVars is what the rendering layer receives for one field instance.
type ViewVars struct {
	Name              string
	AspectRatios      AspectRatios
	MaxWidth          int
	MaxHeight         int
	Object            Entity
	DownloadURI       string
	TranslationDomain string
	Value             string
	Preview           string
	Delete            *model.Field
	DeleteChecked     bool
	Errors            []string
}

// HasDownloadURI reports whether a download link should be rendered.
func (v ViewVars) HasDownloadURI() bool {
	return v.DownloadURI != ""
}

// Map returns the variables keyed the way templates read them. The
// download_uri and delete keys are omitted when absent.
func (v ViewVars) Map() map[string]any {
	out := map[string]any{
		"name":               v.Name,
		"aspect_ratios":      aspectRatioViews(v.AspectRatios),
		"max_width":          v.MaxWidth,
		"max_height":         v.MaxHeight,
		"object":             v.Object,
		"translation_domain": v.TranslationDomain,
		"value":              v.Value,
		"preview":            v.Preview,
		"errors":             v.Errors,
	}
	if v.DownloadURI != "" {
		out["download_uri"] = v.DownloadURI
	}
	if v.Delete != nil {
		out["delete"] = map[string]any{
			"name":    v.Delete.Name,
			"label":   v.Delete.Label,
			"checked": v.DeleteChecked,
			"domain":  v.Delete.Metadata[model.MetadataTranslationDomain],
		}
	}
	return out
}

func aspectRatioViews(ratios AspectRatios) []map[string]any {
	out := make([]map[string]any, 0, len(ratios))
	for _, entry := range ratios {
		out = append(out, map[string]any{
			"key":     entry.Key,
			"value":   entry.Value.Value(),
			"label":   entry.Value.Label,
			"checked": entry.Value.Checked,
		})
	}
	return out
}

// PopulateView builds the view variables for one render. When download links
// are enabled and a parent entity is bound, the download URI comes from the
// DownloadURI option or, when that is empty, from the storage resolver; a
// resolver miss leaves it empty. Resolver errors are returned unmodified.
func (a *Adapter) PopulateView(ctx context.Context, form *Form, parent Entity) (ViewVars, error) {
	if form == nil {
		return ViewVars{}, ErrNilForm
	}
	opts := form.opts
	vars := ViewVars{
		Name:              form.name,
		AspectRatios:      opts.AspectRatios.Clone(),
		MaxWidth:          opts.MaxWidth,
		MaxHeight:         opts.MaxHeight,
		TranslationDomain: opts.TranslationDomain,
		DeleteChecked:     form.deleteChecked,
	}
	if !isAbsent(parent) {
		vars.Object = parent
	}

	// The stored file wins over a configured DownloadURI.
	if opts.DownloadLink && vars.Object != nil {
		if a.storage != nil {
			uri, ok, err := a.storage.ResolveURI(ctx, parent, form.name)
			if err != nil {
				return vars, err
			}
			if ok {
				vars.DownloadURI = uri
			}
		}
		if vars.DownloadURI == "" {
			vars.DownloadURI = opts.DownloadURI
		}
	}

	if del, ok := form.schema.Child(FieldDelete); ok && form.state != Removed {
		field := *del
		vars.Delete = &field
	}

	if form.submitted && !form.Valid() {
		vars.Value = form.payload
	} else if form.data != nil {
		value, err := a.transformer.Transform(form.data)
		if err != nil {
			return vars, err
		}
		vars.Value = value
		if preview, err := form.data.Preview(opts.MaxWidth, opts.MaxHeight); err != nil {
			a.logger.WarnContext(ctx, "imagecrop: preview failed", "field", form.name, "error", err)
		} else {
			vars.Preview = preview.DataURI()
		}
	}

	for _, msgs := range form.ErrorPayload() {
		vars.Errors = append(vars.Errors, msgs...)
	}
	return vars, nil
}
