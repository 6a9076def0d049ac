package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without mutating the form model pipeline.
type RenderOptions struct {
	// Method overrides the HTTP method declared by the form model. Verbs other
	// than GET and POST are sent as POST plus a hidden _method input.
	Method string
	// Values pre-populates rendered controls using dotted field paths (e.g.
	// "photo.base64").
	Values map[string]any
	// Errors surfaces server-side validation feedback keyed by field path.
	// Paths are normalised through MapErrorPayload.
	Errors map[string][]string
	// HiddenFields are emitted as hidden inputs ahead of the visible schema.
	HiddenFields map[string]string
	// Widgets carries per-field widget variables keyed by field path, for
	// widgets whose markup needs more than the field definition (the image
	// crop widget's ratios, preview and download link).
	Widgets map[string]map[string]any
	// Locale selects the catalog Translator reads from.
	Locale string
	// Translator localises labels, descriptions and widget strings. Nil
	// leaves keys untouched.
	Translator Translator
	// OnMissing decides what a missing translation renders as. Defaults to
	// the key itself.
	OnMissing MissingTranslationHandler
}

// WidgetVars returns the widget variables registered for path.
func (o RenderOptions) WidgetVars(path string) map[string]any {
	if len(o.Widgets) == 0 {
		return nil
	}
	return o.Widgets[path]
}
