package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

const (
	// DefaultDocumentName is the base name of the document file; the writer adds the extension.
	DefaultDocumentName = "article"
	// DefaultImageDir is the image subfolder inside an archive folder.
	DefaultImageDir = "images"
	defaultImageExt = ".jpg"
)

// Layout names the files inside an archive folder.
type Layout struct {
	DocumentName string
	ImageDir     string
}

// Archiver writes one article folder per run on the local filesystem.
type Archiver struct {
	writer      ports.DocumentWriter
	images      ports.ImageDownloader
	layout      Layout
	concurrency int
	logger      *slog.Logger
}

var _ ports.Archiver = (*Archiver)(nil)

// NewArchiver wires the document writer and image downloader. concurrency
// below 1 downloads images one at a time.
func NewArchiver(writer ports.DocumentWriter, images ports.ImageDownloader, layout Layout, concurrency int, logger *slog.Logger) *Archiver {
	if layout.DocumentName == "" {
		layout.DocumentName = DefaultDocumentName
	}
	if layout.ImageDir == "" {
		layout.ImageDir = DefaultImageDir
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Archiver{writer: writer, images: images, layout: layout, concurrency: concurrency, logger: logger}
}

// Archive creates {root}/{dateKey}_{title}/, writes the document and then
// downloads every image. Folder or document errors wrap domain.ErrFilesystem;
// image failures are only counted.
func (a *Archiver) Archive(ctx context.Context, req ports.ArchiveRequest) (domain.ArchiveSummary, error) {
	root := req.Root
	if root == "" {
		root = "."
	}

	folder := filepath.Join(root, domain.FolderName(req.DateKey, req.Title))
	imageDir := filepath.Join(folder, a.layout.ImageDir)
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		return domain.ArchiveSummary{}, fmt.Errorf("%w: create %s: %w", domain.ErrFilesystem, imageDir, err)
	}

	summary := domain.ArchiveSummary{
		Folder:      folder,
		ImageDir:    imageDir,
		ImagesTotal: len(req.ImageRefs),
	}

	docPath := filepath.Join(folder, a.layout.DocumentName+a.writer.Extension())
	if err := a.writer.WriteFile(docPath, req.Document); err != nil {
		return summary, fmt.Errorf("%w: write %s: %w", domain.ErrFilesystem, docPath, err)
	}
	summary.DocumentPath = docPath
	a.info("document saved", "path", docPath, "paragraphs", len(req.Document.Paragraphs))

	saved, failed := a.downloadAll(ctx, req.ImageRefs, imageDir)
	summary.ImagesSaved = saved
	summary.FailedImages = failed

	a.info("images downloaded", "saved", saved, "total", summary.ImagesTotal)
	return summary, nil
}

func (a *Archiver) downloadAll(ctx context.Context, refs []string, dir string) (int, []string) {
	ok := make([]bool, len(refs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, ref := range refs {
		dest := filepath.Join(dir, ImageFileName(i+1, ref))
		g.Go(func() error {
			err := a.images.Download(ctx, ref, dest)
			if err != nil {
				a.warn("image skipped", "index", i+1, "url", ref, "error", err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	saved := 0
	var failed []string
	for i, done := range ok {
		if done {
			saved++
			continue
		}
		failed = append(failed, refs[i])
	}
	return saved, failed
}

// ImageFileName is image_{index}{ext} with ext taken from the URL path,
// defaulting to .jpg.
func ImageFileName(index int, ref string) string {
	ext := ""
	if u, err := url.Parse(ref); err == nil {
		ext = path.Ext(u.Path)
	}
	if ext == "" || ext == "." {
		ext = defaultImageExt
	}
	return fmt.Sprintf("image_%d%s", index, ext)
}

func (a *Archiver) info(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Info(msg, args...)
	}
}

func (a *Archiver) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
