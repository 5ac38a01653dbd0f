package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

type fakeWriter struct {
	err error
}

func (fakeWriter) Format() string    { return "txt" }
func (fakeWriter) Extension() string { return ".txt" }

func (w fakeWriter) WriteFile(path string, doc domain.Document) error {
	if w.err != nil {
		return w.err
	}
	var lines []string
	for _, p := range doc.Paragraphs {
		lines = append(lines, p.Text())
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
}

type fakeImages struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeImages) Download(_ context.Context, url, dest string) error {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.fail[url] {
		return errors.New("boom")
	}
	return os.WriteFile(dest, []byte(url), 0o644)
}

func request(root string, refs ...string) ports.ArchiveRequest {
	return ports.ArchiveRequest{
		Document: domain.Document{Paragraphs: []domain.Paragraph{
			{Runs: []domain.Run{{Text: "one"}}},
			{Runs: []domain.Run{{Text: "two"}}},
		}},
		ImageRefs: refs,
		Root:      root,
		DateKey:   "20240305",
		Title:     `T: "x"/y`,
	}
}

func TestArchiveLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	images := &fakeImages{}
	a := NewArchiver(fakeWriter{}, images, Layout{}, 0, nil)

	summary, err := a.Archive(context.Background(), request(root,
		"https://img.example/a.png",
		"https://img.example/mmbiz_jpg/640?wx_fmt=jpeg",
		"https://img.example/a.png",
	))
	require.NoError(t, err)

	folder := filepath.Join(root, "20240305_T xy")
	assert.Equal(t, folder, summary.Folder)
	assert.Equal(t, filepath.Join(folder, "article.txt"), summary.DocumentPath)
	assert.Equal(t, filepath.Join(folder, "images"), summary.ImageDir)
	assert.Equal(t, 3, summary.ImagesSaved)
	assert.Equal(t, 3, summary.ImagesTotal)
	assert.Empty(t, summary.FailedImages)

	doc, err := os.ReadFile(summary.DocumentPath)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", string(doc))

	entries, err := os.ReadDir(summary.ImageDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"image_1.png", "image_2.jpg", "image_3.png"}, names)
	assert.Equal(t, []string{"https://img.example/a.png", "https://img.example/mmbiz_jpg/640?wx_fmt=jpeg", "https://img.example/a.png"}, images.calls)
}

func TestArchiveIsolatesImageFailures(t *testing.T) {
	t.Parallel()

	images := &fakeImages{fail: map[string]bool{"https://img.example/2.gif": true}}
	a := NewArchiver(fakeWriter{}, images, Layout{ImageDir: "pics", DocumentName: "text"}, 4, nil)

	summary, err := a.Archive(context.Background(), request(t.TempDir(),
		"https://img.example/1.png",
		"https://img.example/2.gif",
		"https://img.example/3.webp",
	))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ImagesSaved)
	assert.Equal(t, 3, summary.ImagesTotal)
	assert.Equal(t, []string{"https://img.example/2.gif"}, summary.FailedImages)
	assert.FileExists(t, filepath.Join(summary.Folder, "pics", "image_3.webp"))
	assert.NoFileExists(t, filepath.Join(summary.Folder, "pics", "image_2.gif"))
	assert.FileExists(t, filepath.Join(summary.Folder, "text.txt"))
}

func TestArchiveFilesystemFailures(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	a := NewArchiver(fakeWriter{}, &fakeImages{}, Layout{}, 1, nil)
	_, err := a.Archive(context.Background(), request(blocker))
	assert.ErrorIs(t, err, domain.ErrFilesystem)

	images := &fakeImages{}
	a = NewArchiver(fakeWriter{err: errors.New("disk full")}, images, Layout{}, 1, nil)
	_, err = a.Archive(context.Background(), request(root, "https://img.example/1.png"))
	assert.ErrorIs(t, err, domain.ErrFilesystem)
	assert.Empty(t, images.calls)
}

func TestImageFileName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://a.example/x.png":            "image_7.png",
		"https://a.example/x.JPEG?x=1":       "image_7.JPEG",
		"https://a.example/mmbiz_png/abc/640": "image_7.jpg",
		"https://a.example/dir.d/":           "image_7.jpg",
		"::bad":                              "image_7.jpg",
	}
	for ref, want := range cases {
		assert.Equal(t, want, ImageFileName(7, ref), ref)
	}
}
