// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/starford/pagesmith/internal/api"
	"github.com/starford/pagesmith/internal/checksum"
	"github.com/starford/pagesmith/internal/manifest"
	"github.com/starford/pagesmith/internal/mcpserver"
	"github.com/starford/pagesmith/internal/pageservice"
	"github.com/starford/pagesmith/internal/processor"
	"github.com/starford/pagesmith/internal/render"
	"github.com/starford/pagesmith/internal/site"
	"github.com/starford/pagesmith/internal/sse"
	"github.com/starford/pagesmith/internal/storage"
)

// ErrPagesFailed is returned by Build when at least one document could not
// be built. The rest of the site is still written.
var ErrPagesFailed = errors.New("some pages failed to build")

// runtime holds everything a command needs once the config is applied.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	db      *manifest.DB
	builder *site.Builder
}

func (rt *runtime) Close() error {
	return rt.db.Close()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(cfg ApplicationConfig, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// setup opens the manifest and wires the builder. Logs go to logOut unless
// a logger was supplied through WithLogger.
func (a *application) setup(logOut io.Writer, extra ...site.Option) (*runtime, error) {
	cfg := a.config

	logger := a.logger
	if logger == nil {
		logger = newLogger(cfg.App, logOut)
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("source_dir", cfg.Source.RootDir),
		slog.String("templates_dir", cfg.Source.TemplatesDir),
		slog.String("output_dir", cfg.Output.RootDir),
		slog.String("manifest_path", cfg.Build.ManifestPath),
		slog.Int("workers", cfg.Build.Workers),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Output.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Build.ManifestPath), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest dir: %w", err)
	}

	source, err := storage.NewFS(cfg.Source.RootDir, storage.WithExclusions(storage.Exclusions{
		Dirs:  cfg.Source.ExcludeDirs,
		Files: cfg.Source.ExcludeFiles,
	}))
	if err != nil {
		return nil, fmt.Errorf("init source storage: %w", err)
	}
	output, err := storage.NewFS(cfg.Output.RootDir)
	if err != nil {
		return nil, fmt.Errorf("init output storage: %w", err)
	}

	env := processor.Env{
		Theme:           cfg.Theme,
		Listing:         cfg.Defaults.Listing,
		ListingFile:     cfg.Source.ListingFile,
		CatalogSubtitle: cfg.Defaults.Catalog.Subtitle,
		Compiled:        site.CompiledMonth(time.Now()),
	}
	registry, err := processor.Build(env, cfg.Processors)
	if err != nil {
		return nil, fmt.Errorf("init processors: %w", err)
	}
	fingerprint, err := processorFingerprint(env, cfg.Processors)
	if err != nil {
		return nil, fmt.Errorf("init processors: %w", err)
	}

	templates, err := render.New(cfg.Source.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("init templates: %w", err)
	}

	db, err := manifest.Open(cfg.Build.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("init manifest: %w", err)
	}

	siteOpts := append([]site.Option{site.WithManifest(db), site.WithLogger(logger)}, extra...)
	builder := site.New(site.Config{
		ContentTypes: cfg.ContentTypes,
		FooterText:   cfg.Defaults.FooterText,
		Workers:      cfg.Build.Workers,
		Incremental:  cfg.Build.Incremental,
		Fingerprint:  fingerprint,
	}, source, output, registry, templates, siteOpts...)

	return &runtime{cfg: cfg, logger: logger, db: db, builder: builder}, nil
}

// processorFingerprint digests everything the processors read besides the
// document, so a theme, default or rule change invalidates built pages.
func processorFingerprint(env processor.Env, rules []processor.RuleConfig) (string, error) {
	data, err := yaml.Marshal(struct {
		Env   processor.Env          `yaml:"env"`
		Rules []processor.RuleConfig `yaml:"rules"`
	}{env, rules})
	if err != nil {
		return "", err
	}
	return checksum.Sum(data), nil
}

// Build renders the whole site once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	report, err := rt.builder.Build(ctx, app.force)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrPagesFailed,
			len(report.Failed), len(report.Built)+len(report.Skipped)+len(report.Failed))
	}
	return nil
}

// newHTTPHandler assembles the preview server: health checks, the JSON API
// with its event stream, and the rendered site for everything else.
func newHTTPHandler(cfg *Config, svc *pageservice.Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))
	r.Handle("/*", api.NewStaticHandler(cfg.Output.RootDir))
	return r
}

// Serve builds the site, then serves it with live reload until a shutdown
// signal arrives or ctx is cancelled.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	rt, err := app.setup(os.Stdout, site.WithEvents(broker.PublishPageEvent))
	if err != nil {
		return err
	}
	defer rt.Close()
	logger := rt.logger

	if _, err := rt.builder.Build(ctx, app.force); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	svc := pageservice.NewService(rt.builder, rt.db)
	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild on source and template changes; results reach clients via SSE.
	g.Go(func() error {
		if err := rt.builder.Watch(gCtx, cfg.Source.TemplatesDir); err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Open SSE streams only end when the broker closes them.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the errgroup so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// MCP serves the authoring tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func MCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup(os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Search answers from the manifest, so bring it up to date first.
	if _, err := rt.builder.Build(ctx, app.force); err != nil {
		rt.logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(pageservice.NewService(rt.builder, rt.db), rt.builder.Source())
	rt.logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
