package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

// Renderer implements render.Renderer for terminal-driven sessions: it walks
// the form, prompts for each field and serializes the collected values.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	readFile          FileReader
	submitTransformer SubmitTransformer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       NewSurveyDriver(nil),
		outputFormat: OutputFormatJSON,
		readFile:     defaultFileReader,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field of form and returns the collected values.
// Labels are localised with options.Translator, prefilled values seed the
// prompt defaults and options.Widgets supplies image crop widget variables.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}

	working := form.Clone()
	render.LocalizeFormModel(&working, options)
	mapping := render.MapErrorPayload(working, options.Errors)

	session := &session{
		renderer: r,
		state:    NewState(options.Values, mapping.Fields),
		options:  options,
	}
	for _, message := range mapping.Form {
		if err := r.driver.Info(ctx, "! "+message); err != nil {
			return nil, err
		}
	}
	for _, field := range working.Fields {
		if err := session.promptField(ctx, field, field.Name); err != nil {
			return nil, err
		}
	}

	values := session.state.Values()
	if r.submitTransformer != nil {
		var err error
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}
	return r.serialize(values)
}

type session struct {
	renderer *Renderer
	state    *State
	options  render.RenderOptions
}

func (s *session) promptField(ctx context.Context, field model.Field, path string) error {
	if err := s.showErrors(ctx, path); err != nil {
		return err
	}
	switch widget := resolveWidget(field); {
	case widget == widgets.WidgetImageCrop:
		return s.promptImageCrop(ctx, field, path)
	case widget == widgets.WidgetHidden:
		return nil
	case field.Type == model.FieldTypeObject:
		for _, child := range field.Nested {
			if err := s.promptField(ctx, child, path+"."+child.Name); err != nil {
				return err
			}
		}
		return nil
	case field.Type == model.FieldTypeBoolean:
		return s.promptBoolean(ctx, field, path)
	case field.Type == model.FieldTypeInteger, field.Type == model.FieldTypeNumber:
		return s.promptNumber(ctx, field, path)
	default:
		return s.promptString(ctx, field, path)
	}
}

func (s *session) promptString(ctx context.Context, field model.Field, path string) error {
	response, err := s.renderer.driver.Input(ctx, InputConfig{
		Message:   displayLabel(field),
		Default:   defaultStringValue(s.state, path, field.Default),
		Help:      field.Description,
		Validator: requiredValidator(field),
	})
	if err != nil {
		return err
	}
	return s.state.SetValue(path, response)
}

func (s *session) promptBoolean(ctx context.Context, field model.Field, path string) error {
	response, err := s.renderer.driver.Confirm(ctx, ConfirmConfig{
		Message: displayLabel(field),
		Default: defaultBoolValue(s.state, path, field.Default),
		Help:    field.Description,
	})
	if err != nil {
		return err
	}
	return s.state.SetValue(path, response)
}

func (s *session) promptNumber(ctx context.Context, field model.Field, path string) error {
	integer := field.Type == model.FieldTypeInteger
	for {
		response, err := s.renderer.driver.Input(ctx, InputConfig{
			Message:   displayLabel(field),
			Default:   defaultStringValue(s.state, path, field.Default),
			Help:      field.Description,
			Validator: requiredValidator(field),
		})
		if err != nil {
			return err
		}
		response = strings.TrimSpace(response)
		if response == "" && !field.Required {
			return nil
		}
		if integer {
			if v, err := strconv.ParseInt(response, 10, 64); err == nil {
				return s.state.SetValue(path, v)
			}
		} else if v, err := strconv.ParseFloat(response, 64); err == nil {
			return s.state.SetValue(path, v)
		}
		if err := s.renderer.driver.Info(ctx, fmt.Sprintf("Invalid %s: %q is not a number", path, response)); err != nil {
			return err
		}
	}
}

// promptImageCrop asks for a file, the aspect ratio to crop it to and, when
// the widget offers one and no replacement was picked, whether to delete the
// stored file. The encoded image lands at path.base64 and the checkbox at
// path.delete.
func (s *session) promptImageCrop(ctx context.Context, field model.Field, path string) error {
	driver := s.renderer.driver
	vars := s.options.WidgetVars(path)
	base64Path := path + ".base64"
	if err := s.showErrors(ctx, base64Path); err != nil {
		return err
	}
	if uri, _ := vars["download_uri"].(string); uri != "" {
		if err := driver.Info(ctx, fmt.Sprintf("%s: current file %s", displayLabel(field), uri)); err != nil {
			return err
		}
	}

	picked := false
	for {
		filePath, err := driver.Input(ctx, InputConfig{
			Message: displayLabel(field) + " (image file)",
			Help:    joinHelp(field.Description, "Leave empty to keep the current image."),
		})
		if err != nil {
			return err
		}
		filePath = strings.TrimSpace(filePath)
		if filePath == "" {
			if _, ok := s.state.GetValue(base64Path); !ok {
				if value, _ := vars["value"].(string); value != "" {
					if err := s.state.SetValue(base64Path, value); err != nil {
						return err
					}
				}
			}
			break
		}

		data, err := s.renderer.readFile(filePath)
		if err == nil {
			var req cropRequest
			req, err = s.promptCrop(ctx, vars)
			if err != nil {
				return err
			}
			var uri string
			if uri, err = prepareImage(data, req); err == nil {
				if err := s.state.SetValue(base64Path, uri); err != nil {
					return err
				}
				picked = true
				break
			}
		}
		if errors.Is(err, ErrAborted) || ctx.Err() != nil {
			return err
		}
		if infoErr := driver.Info(ctx, fmt.Sprintf("Invalid %s: %v", path, err)); infoErr != nil {
			return infoErr
		}
	}

	del, ok := vars["delete"].(map[string]any)
	if !ok || picked {
		return nil
	}
	label, _ := del["label"].(string)
	if child, ok := field.Child("delete"); ok && child.Label != "" {
		label = child.Label
	}
	if label == "" {
		label = "Delete"
	}
	checked, _ := del["checked"].(bool)
	remove, err := driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked})
	if err != nil {
		return err
	}
	return s.state.SetValue(path+".delete", remove)
}

func (s *session) promptCrop(ctx context.Context, vars map[string]any) (cropRequest, error) {
	req := cropRequest{
		MaxWidth:  intVar(vars["max_width"]),
		MaxHeight: intVar(vars["max_height"]),
	}
	ratios, _ := vars["aspect_ratios"].([]map[string]any)
	if len(ratios) == 0 {
		return req, nil
	}
	labels := make([]string, len(ratios))
	defaultIdx := 0
	for i, entry := range ratios {
		label, _ := entry["label"].(string)
		if label == "" {
			label, _ = entry["key"].(string)
		}
		labels[i] = label
		if checked, _ := entry["checked"].(bool); checked {
			defaultIdx = i
		}
	}
	idx, err := s.renderer.driver.Select(ctx, SelectConfig{
		Message:      "Aspect ratio",
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return req, err
	}
	if idx < 0 || idx >= len(ratios) {
		idx = defaultIdx
	}
	value, _ := ratios[idx]["value"].(string)
	req.Ratio = parseRatio(value)
	return req, nil
}

func (s *session) showErrors(ctx context.Context, path string) error {
	for _, message := range s.state.ErrorsFor(path) {
		if err := s.renderer.driver.Info(ctx, fmt.Sprintf("! %s: %s", path, message)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func resolveWidget(field model.Field) string {
	if widget := widgets.ExplicitWidget(field); widget != "" {
		return widget
	}
	if field.UIHints["inputType"] == "hidden" {
		return widgets.WidgetHidden
	}
	return ""
}

func displayLabel(field model.Field) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	if field.Required {
		label += " *"
	}
	return label
}

func joinHelp(parts ...string) string {
	var out []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

func requiredValidator(field model.Field) func(string) error {
	if !field.Required {
		return nil
	}
	name := displayLabel(field)
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", strings.TrimSuffix(name, " *"))
		}
		return nil
	}
}

func defaultStringValue(state *State, path string, def any) string {
	if v, ok := state.GetValue(path); ok && v != nil {
		return fmt.Sprint(v)
	}
	if def != nil {
		return fmt.Sprint(def)
	}
	return ""
}

func defaultBoolValue(state *State, path string, def any) bool {
	value, ok := state.GetValue(path)
	if !ok {
		value = def
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(v)
		return parsed
	default:
		return false
	}
}

func intVar(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	flatten("", values, flattened)
	return flattened.Encode()
}

func flatten(prefix string, value any, out url.Values) {
	switch v := value.(type) {
	case map[string]any:
		for key, val := range v {
			next := key
			if prefix != "" {
				next = prefix + "[" + key + "]"
			}
			flatten(next, val, out)
		}
	case bool:
		if v {
			out.Set(prefix, "1")
		}
	default:
		out.Set(prefix, fmt.Sprint(v))
	}
}

func prettyPrint(values map[string]any) string {
	var b strings.Builder
	writePretty(&b, "", values)
	return b.String()
}

func writePretty(b *strings.Builder, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			writePretty(b, next, v[key])
		}
	case string:
		if strings.HasPrefix(v, "data:") && len(v) > 48 {
			v = fmt.Sprintf("%s… (%d bytes)", v[:strings.IndexByte(v+",", ',')], len(v))
		}
		fmt.Fprintf(b, "%s=%s\n", prefix, v)
	default:
		fmt.Fprintf(b, "%s=%v\n", prefix, v)
	}
}
