package ports

import (
	"context"

	"ArticleArchiver/internal/domain"
)

// Fetcher retrieves the raw markup of an article page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns raw markup into an Article. pageURL may be empty and is
// only used to resolve relative image references. It never fails; missing
// fields degrade to fallback values.
type Extractor interface {
	Extract(raw, pageURL string) domain.Article
}

// Renderer produces the styled document for an extracted article.
type Renderer interface {
	Render(article domain.Article) domain.Document
}

// DocumentWriter persists a rendered document in one file format.
type DocumentWriter interface {
	Format() string
	Extension() string
	WriteFile(path string, doc domain.Document) error
}

// ImageDownloader saves one remote image to dest.
type ImageDownloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Archiver lays the rendered document and its images out on disk.
type Archiver interface {
	Archive(ctx context.Context, req ArchiveRequest) (domain.ArchiveSummary, error)
}

// ArchiveRequest carries everything the Archiver needs for one article.
type ArchiveRequest struct {
	Document  domain.Document
	ImageRefs []string
	Root      string
	DateKey   string
	Title     string
}
