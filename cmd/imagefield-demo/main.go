package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formgen-image/components/imagecrop"
	"github.com/goliatone/go-formgen-image/pkg/i18n"
	"github.com/goliatone/go-formgen-image/pkg/renderers/vanilla"
	"github.com/goliatone/go-formgen-image/pkg/storage"
)

func main() {
	var (
		addrFlag      = flag.String("addr", ":8384", "HTTP listen address")
		uploadsFlag   = flag.String("uploads", "uploads", "Local upload directory (ignored with -s3-bucket)")
		bucketFlag    = flag.String("s3-bucket", "", "Store uploads in this S3 bucket")
		regionFlag    = flag.String("s3-region", "", "S3 bucket region")
		basePathFlag  = flag.String("base", "/admin", "Mount prefix for the aspect ratio endpoint")
		presetFlag    = flag.String("preset", "", "YAML file with image field options")
		localeFlag    = flag.String("locale", "en", "Fallback locale")
		debugFlag     = flag.Bool("debug", false, "Enable debug logging")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "Shutdown grace period")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	catalog, err := i18n.Default(i18n.WithFallback(*localeFlag))
	if err != nil {
		fatal(logger, "load translations", err)
	}

	mux := http.NewServeMux()
	var store storage.Store
	if bucket := strings.TrimSpace(*bucketFlag); bucket != "" {
		s3Store, err := storage.NewS3StoreFromEnv(context.Background(), bucket, *regionFlag)
		if err != nil {
			fatal(logger, "s3 storage", err)
		}
		store = s3Store
	} else {
		local, err := storage.NewLocalStore(*uploadsFlag, "/uploads")
		if err != nil {
			fatal(logger, "local storage", err)
		}
		mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Root()))))
		store = local
	}

	var fieldFns []imagecrop.OptionFn
	if path := strings.TrimSpace(*presetFlag); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fatal(logger, "read preset", err)
		}
		preset, err := imagecrop.ParsePreset(data)
		if err != nil {
			fatal(logger, "parse preset", err)
		}
		fieldFns = preset.OptionFns(catalog.For(*localeFlag))
	}

	renderer, err := vanilla.New(
		vanilla.WithTranslator(catalog),
		vanilla.WithSanitizer(bluemonday.UGCPolicy()),
	)
	if err != nil {
		fatal(logger, "renderer", err)
	}

	srv := &server{
		logger:   logger,
		catalog:  catalog,
		resolver: storage.NewResolver(store),
		uploads:  storage.NewUploadHandler(store, storage.WithDirectory("photos"), storage.WithHandlerLogger(logger)),
		renderer: renderer,
		profiles: newProfileStore(Profile{ID: 1, Name: "Ada Lovelace"}, Profile{ID: 2, Name: "Grace Hopper"}),
		basePath: *basePathFlag,
		fieldFns: fieldFns,
	}
	if err := srv.routes(mux); err != nil {
		fatal(logger, "routes", err)
	}

	httpServer := &http.Server{
		Addr:              *addrFlag,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", *addrFlag, "form", "/profiles/1")

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		fatal(logger, "listen", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *shutdownGrace)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
