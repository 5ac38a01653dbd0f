package app

import (
	"context"
	"fmt"
	"log/slog"

	"ArticleArchiver/internal/config"
	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/infrastructure/document"
	"ArticleArchiver/internal/infrastructure/fetcher"
	"ArticleArchiver/internal/infrastructure/imagestore"
	"ArticleArchiver/internal/infrastructure/parser"
	"ArticleArchiver/internal/infrastructure/storage"
	"ArticleArchiver/internal/logging"
	"ArticleArchiver/internal/render"
	"ArticleArchiver/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	runner   *usecase.Runner
}

// New builds a runnable application instance. It fails on configuration the
// adapters cannot honour, such as an unknown document format.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	registry := document.NewRegistry()
	registry.Register(document.DOCXWriter{})
	registry.Register(document.EPUBWriter{Lang: cfg.Document.Lang})
	registry.Register(document.PDFWriter{FontPath: cfg.Document.FontPath, BoldFontPath: cfg.Document.BoldFontPath})

	writer, err := registry.Resolve(cfg.Document.Format)
	if err != nil {
		return nil, err
	}
	if writer.Format() == "pdf" && cfg.Document.FontPath == "" {
		return nil, fmt.Errorf("pdf output needs document.fontPath pointing at a CJK TrueType font")
	}

	policy, err := render.ParsePolicy(cfg.Document.EmptyParagraphs)
	if err != nil {
		return nil, err
	}

	client := fetcher.NewClient(cfg.Fetch.Timeout, cfg.Fetch.Fingerprint(), cfg.Fetch.Proxy)

	pageFetcher := fetcher.NewHTTPFetcher(client, fetcher.Options{
		UserAgent:      cfg.Fetch.UserAgent,
		AcceptLanguage: cfg.Fetch.AcceptLanguage,
		MaxBytes:       cfg.Fetch.MaxBytes,
	}, baseLogger.With("component", "fetcher"))
	readyFetcher := fetcher.NewReadyFetcher(pageFetcher, cfg.Fetch.Marker(), cfg.Fetch.ReadyAttempts,
		cfg.Fetch.ReadyInterval, baseLogger.With("component", "fetcher.ready"))

	extractor := parser.NewArticleParser(baseLogger.With("component", "parser"),
		parser.WithReadabilityFallback(cfg.Extract.ReadabilityFallback))

	renderer := render.NewRenderer(domain.DocumentStyle{
		FontFace:     cfg.Document.FontFace,
		FontSizePt:   cfg.Document.FontSize,
		SpaceAfterPt: cfg.Document.SpaceAfter,
	}, policy, baseLogger.With("component", "renderer"))

	images := imagestore.NewDownloader(client, imagestore.Options{
		UserAgent: cfg.Fetch.UserAgent,
		Referer:   cfg.Images.Referer,
		Attempts:  cfg.Images.Attempts,
		Timeout:   cfg.Images.Timeout,
		Backoff:   cfg.Images.Backoff,
		MaxBytes:  cfg.Images.MaxBytes,
		Verify:    cfg.Images.Verify,
	}, baseLogger.With("component", "images"))

	archiver := storage.NewArchiver(writer, images, storage.Layout{
		DocumentName: cfg.Archive.DocumentName,
		ImageDir:     cfg.Archive.ImageDir,
	}, cfg.Images.Concurrency, baseLogger.With("component", "archiver"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:   readyFetcher,
		Extractor: extractor,
		Renderer:  renderer,
		Archiver:  archiver,
		Logger:    baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, pipeline: pipeline, runner: usecase.NewRunner(pipeline)}, nil
}

// Run archives one article synchronously. An empty root uses archive.root.
func (a *Application) Run(ctx context.Context, url, root string) (domain.ArchiveSummary, error) {
	return a.pipeline.Process(ctx, a.request(url, root))
}

// Start archives one article in the background.
func (a *Application) Start(ctx context.Context, url, root string) *usecase.Job {
	return a.runner.Start(ctx, a.request(url, root))
}

func (a *Application) request(url, root string) usecase.Request {
	if root == "" {
		root = a.cfg.Archive.Root
	}
	return usecase.Request{URL: url, DestinationRoot: root}
}
