package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

// ErrCancelled is returned when the context is cancelled between stages.
var ErrCancelled = errors.New("archive cancelled")

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Fetcher   ports.Fetcher
	Extractor ports.Extractor
	Renderer  ports.Renderer
	Archiver  ports.Archiver
	Logger    *slog.Logger
}

// Pipeline implements the fetch, extract, render, archive workflow.
type Pipeline struct {
	fetcher   ports.Fetcher
	extractor ports.Extractor
	renderer  ports.Renderer
	archiver  ports.Archiver
	logger    *slog.Logger
}

// Request names one article and where its folder should be created.
type Request struct {
	URL             string
	DestinationRoot string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		renderer:  deps.Renderer,
		archiver:  deps.Archiver,
		logger:    logger,
	}
}

// Process archives one article. Cancellation is observed only between
// stages; a stage that has started runs to completion.
func (p *Pipeline) Process(ctx context.Context, req Request) (domain.ArchiveSummary, error) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		return domain.ArchiveSummary{}, fmt.Errorf("%w: empty url", domain.ErrFetch)
	}
	stageCtx := context.WithoutCancel(ctx)
	log := p.logger.With("url", url)

	if err := checkpoint(ctx, "fetch"); err != nil {
		return domain.ArchiveSummary{}, err
	}
	log.Info("fetching article")
	raw, err := p.fetcher.Fetch(stageCtx, url)
	if err != nil {
		return domain.ArchiveSummary{}, fmt.Errorf("fetch article: %w", err)
	}

	if err := checkpoint(ctx, "extract"); err != nil {
		return domain.ArchiveSummary{}, err
	}
	article := p.extractor.Extract(raw, url)
	log.Info("article extracted",
		"title", article.Title,
		"date", article.DateKey(),
		"blocks", len(article.Blocks),
		"images", len(article.ImageRefs),
		"truncated", article.Truncated)

	if err := checkpoint(ctx, "render"); err != nil {
		return domain.ArchiveSummary{}, err
	}
	doc := p.renderer.Render(article)

	if err := checkpoint(ctx, "archive"); err != nil {
		return domain.ArchiveSummary{}, err
	}
	summary, err := p.archiver.Archive(stageCtx, ports.ArchiveRequest{
		Document:  doc,
		ImageRefs: article.ImageRefs,
		Root:      req.DestinationRoot,
		DateKey:   article.DateKey(),
		Title:     article.Title,
	})
	if err != nil {
		return summary, fmt.Errorf("archive article: %w", err)
	}

	log.Info("article archived",
		"folder", summary.Folder,
		"document", summary.DocumentPath,
		"images_saved", summary.ImagesSaved,
		"images_total", summary.ImagesTotal)
	return summary, nil
}

func checkpoint(ctx context.Context, next string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w before %s: %w", ErrCancelled, next, err)
	}
	return nil
}
