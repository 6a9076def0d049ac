package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-formgen-image/components/imagecrop"
	"github.com/goliatone/go-formgen-image/components/imagecrop/formgenwiring"
	"github.com/goliatone/go-formgen-image/pkg/i18n"
	"github.com/goliatone/go-formgen-image/pkg/model"
	"github.com/goliatone/go-formgen-image/pkg/render"
	"github.com/goliatone/go-formgen-image/pkg/renderers/tui"
	"github.com/goliatone/go-formgen-image/pkg/storage"
	"github.com/goliatone/go-formgen-image/pkg/widgets"
)

type config struct {
	field     string
	label     string
	locale    string
	format    string
	output    string
	current   string
	maxWidth  int
	maxHeight int
	noDelete  bool
}

// entity records the currently stored file for the prompted field.
type entity struct {
	field string
	name  string
}

func (e *entity) UploadedFile(field string) (string, bool) {
	if field != e.field {
		return "", false
	}
	return e.name, e.name != ""
}

func (e *entity) SetUploadedFile(field, name string) {
	if field == e.field {
		e.name = name
	}
}

func main() {
	var cfg config
	flag.StringVar(&cfg.field, "field", "photo", "image field name")
	flag.StringVar(&cfg.label, "label", "Photo", "image field label")
	flag.StringVar(&cfg.locale, "locale", "en", "locale for labels")
	flag.StringVar(&cfg.format, "format", string(tui.OutputFormatJSON), "output format: json, form or pretty")
	flag.StringVar(&cfg.output, "output", "", "output file (stdout if empty)")
	flag.StringVar(&cfg.current, "current", "", "currently stored image; offers the delete prompt")
	flag.IntVar(&cfg.maxWidth, "max-width", 0, "maximum image width (default widget value when 0)")
	flag.IntVar(&cfg.maxHeight, "max-height", 0, "maximum image height (default widget value when 0)")
	flag.BoolVar(&cfg.noDelete, "no-delete", false, "never offer to delete the current image")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	payload, err := run(ctx, cfg, tui.NewSurveyDriver(os.Stderr), logger)
	if errors.Is(err, tui.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		logger.Error("imagefield-cli", "error", err)
		os.Exit(1)
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, payload, 0o644); err != nil {
			logger.Error("write output", "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Payload written to %s\n", cfg.output)
		return
	}
	fmt.Println(string(payload))
}

func run(ctx context.Context, cfg config, driver tui.PromptDriver, logger *slog.Logger) ([]byte, error) {
	catalog, err := i18n.Default()
	if err != nil {
		return nil, err
	}
	locale := catalog.Match(cfg.locale)

	var (
		resolver imagecrop.StorageResolver
		parent   imagecrop.Entity
	)
	if cfg.current != "" {
		store, err := storage.NewLocalStore(filepath.Dir(cfg.current), "file://"+filepath.ToSlash(filepath.Dir(absPath(cfg.current))))
		if err != nil {
			return nil, err
		}
		resolver = storage.NewResolver(store)
		parent = &entity{field: cfg.field, name: filepath.Base(cfg.current)}
	}
	adapter := imagecrop.New(catalog.For(locale), resolver, nil, imagecrop.WithLogger(logger))

	form := model.FormModel{
		OperationID: "imagefield",
		Fields: []model.Field{{
			Name:     cfg.field,
			Type:     model.FieldTypeString,
			Format:   "image-base64",
			Label:    cfg.label,
			Metadata: fieldMetadata(cfg),
		}},
	}
	if err := model.Decorate(&form, formgenwiring.ImageCropDecorator(adapter, widgets.NewRegistry(), "")); err != nil {
		return nil, err
	}
	field, _ := form.Field(cfg.field)
	bound, err := adapter.Bind(ctx, cfg.field, formgenwiring.FieldOptions(adapter, *field), parent)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", cfg.field, err)
	}
	vars, err := adapter.PopulateView(ctx, bound, parent)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", cfg.field, err)
	}
	formgenwiring.AttachForm(&form, bound)

	renderer, err := tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(tui.OutputFormat(strings.ToLower(cfg.format))),
	)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, form, render.RenderOptions{
		Locale:     locale,
		Translator: catalog,
		Widgets:    map[string]map[string]any{cfg.field: vars.Map()},
	})
}

func fieldMetadata(cfg config) map[string]string {
	meta := map[string]string{}
	if cfg.maxWidth > 0 {
		meta[formgenwiring.MetadataMaxWidth] = strconv.Itoa(cfg.maxWidth)
	}
	if cfg.maxHeight > 0 {
		meta[formgenwiring.MetadataMaxHeight] = strconv.Itoa(cfg.maxHeight)
	}
	if cfg.noDelete {
		meta[formgenwiring.MetadataAllowDelete] = "false"
	}
	return meta
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
