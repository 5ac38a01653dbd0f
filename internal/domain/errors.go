package domain

import "errors"

var (
	// ErrFetch marks a page that could not be retrieved. Fatal for the run.
	ErrFetch = errors.New("fetch failed")
	// ErrFilesystem marks a destination folder or document that could not be written. Fatal for the run.
	ErrFilesystem = errors.New("filesystem failure")
	// ErrImageDownload marks one image that failed after all attempts. Isolated.
	ErrImageDownload = errors.New("image download failed")
	// ErrParagraph marks one paragraph with malformed inline markup. Isolated.
	ErrParagraph = errors.New("paragraph render failed")
)
