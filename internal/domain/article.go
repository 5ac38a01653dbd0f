package domain

import (
	"fmt"
	"strings"
	"time"
)

// UntitledSentinel is used when no title element can be found.
const UntitledSentinel = "untitled"

// Date is a calendar date without time or zone.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateFromTime truncates t to its calendar date in t's location.
func DateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Key returns the zero-padded YYYYMMDD form used in folder names.
func (d Date) Key() string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, d.Month, d.Day)
}

// Valid reports whether the date exists on the calendar.
func (d Date) Valid() bool {
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return false
	}
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return t.Year() == d.Year && int(t.Month()) == d.Month && t.Day() == d.Day
}

// InlineKind enumerates the inline vocabulary recognised inside a paragraph.
type InlineKind uint8

const (
	InlineText InlineKind = iota
	InlineBold
	InlineColored
)

func (k InlineKind) String() string {
	switch k {
	case InlineText:
		return "text"
	case InlineBold:
		return "bold"
	case InlineColored:
		return "colored"
	}
	return fmt.Sprintf("InlineKind(%d)", k)
}

// Inline is one rich text fragment of a paragraph.
type Inline struct {
	Kind InlineKind
	Text string
	// Style holds the raw inline style declaration carrying the color.
	// Only set for InlineColored.
	Style string
	// Bold marks an InlineColored run that is also bold.
	Bold bool
}

// Block is one paragraph slot of the article body.
type Block struct {
	Inlines []Inline
}

// Text flattens the block's inline text.
func (b Block) Text() string {
	var sb strings.Builder
	for _, in := range b.Inlines {
		sb.WriteString(in.Text)
	}
	return sb.String()
}

// Placeholder reports whether the block carries no visible text.
func (b Block) Placeholder() bool {
	return strings.TrimSpace(b.Text()) == ""
}

// Article is the structure-preserving representation of one extracted page.
type Article struct {
	PublishDate Date
	Title       string
	Blocks      []Block
	ImageRefs   []string
	Truncated   bool
}

// DateKey is shorthand for PublishDate.Key().
func (a Article) DateKey() string {
	return a.PublishDate.Key()
}

// ArchiveSummary reports what an archive run left on disk.
type ArchiveSummary struct {
	Folder       string
	DocumentPath string
	ImageDir     string
	ImagesSaved  int
	ImagesTotal  int
	FailedImages []string
}
