// Package document writes rendered articles to docx, epub or pdf files.
package document

import (
	"fmt"
	"sort"
	"strings"

	"ArticleArchiver/internal/ports"
)

// Registry keeps document writers by format name.
type Registry struct {
	writers map[string]ports.DocumentWriter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{writers: map[string]ports.DocumentWriter{}}
}

// Register adds or replaces a writer.
func (r *Registry) Register(w ports.DocumentWriter) {
	if r.writers == nil {
		r.writers = map[string]ports.DocumentWriter{}
	}
	r.writers[strings.ToLower(w.Format())] = w
}

// Resolve returns the writer for format or an error if it is absent.
func (r *Registry) Resolve(format string) (ports.DocumentWriter, error) {
	if w, ok := r.writers[strings.ToLower(strings.TrimSpace(format))]; ok {
		return w, nil
	}
	return nil, fmt.Errorf("document format %q is not registered (have %s)", format, strings.Join(r.Formats(), ", "))
}

// Formats lists registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
