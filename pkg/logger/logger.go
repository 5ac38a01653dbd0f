// Package logger renders log entries and run summaries for a terminal user.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/logging"
)

// Console is a logging.Sink that prints entries as short colored lines.
type Console struct {
	mu        sync.Mutex
	out       io.Writer
	useColors bool
	// Keys lists the attributes shown after the message; nil shows all.
	Keys []string
}

var _ logging.Sink = (*Console)(nil)

// New returns a console writing to out. Colors follow NO_COLOR and TERM
// unless forced with useColors.
func New(out io.Writer, useColors bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		useColors = false
	}
	return &Console{out: out, useColors: useColors}
}

// Publish implements logging.Sink.
func (c *Console) Publish(e logging.Entry) {
	var b strings.Builder
	b.WriteString(c.badge(e.Level))
	b.WriteByte(' ')
	b.WriteString(e.Message)
	for _, a := range e.Attrs {
		if !c.shows(a.Key) {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(c.dim(a.Key + "="))
		b.WriteString(a.Value)
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = io.WriteString(c.out, b.String())
}

// Summary prints the outcome of one archived article.
func (c *Console) Summary(s domain.ArchiveSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.line(color.FgGreen, "[OK]", "archived to %s", s.Folder)
	fmt.Fprintf(c.out, "  document: %s\n", s.DocumentPath)
	if s.ImagesSaved == s.ImagesTotal {
		fmt.Fprintf(c.out, "  images:   %d/%d\n", s.ImagesSaved, s.ImagesTotal)
		return
	}
	c.line(color.FgYellow, "[WARN]", "images:   %d/%d", s.ImagesSaved, s.ImagesTotal)
	for _, u := range s.FailedImages {
		fmt.Fprintf(c.out, "    missing %s\n", u)
	}
}

// Error prints a fatal error.
func (c *Console) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.line(color.FgRed, "[ERROR]", "%v", err)
}

func (c *Console) line(attr color.Attribute, plain, format string, args ...any) {
	if c.useColors {
		color.New(attr).Fprintf(c.out, format+"\n", args...)
		return
	}
	fmt.Fprintf(c.out, plain+" "+format+"\n", args...)
}

func (c *Console) badge(level slog.Level) string {
	label := level.String()
	if !c.useColors {
		return "[" + label + "]"
	}
	switch {
	case level >= slog.LevelError:
		return color.RedString(label)
	case level >= slog.LevelWarn:
		return color.YellowString(label)
	case level >= slog.LevelInfo:
		return color.CyanString(label)
	default:
		return color.New(color.Faint).Sprint(label)
	}
}

func (c *Console) dim(s string) string {
	if c.useColors {
		return color.New(color.Faint).Sprint(s)
	}
	return s
}

func (c *Console) shows(key string) bool {
	if c.Keys == nil {
		return true
	}
	for _, k := range c.Keys {
		if k == key {
			return true
		}
	}
	return false
}
