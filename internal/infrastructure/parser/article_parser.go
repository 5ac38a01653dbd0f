package parser

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
	"ArticleArchiver/internal/selector"
)

var (
	scriptCreateTime = regexp.MustCompile(`var\s+ct\s*=\s*"(\d{9,11})"`)
	scriptCreateText = regexp.MustCompile(`createTime\s*=\s*'([^']+)'`)
)

// ArticleParser extracts WeChat article pages with goquery.
type ArticleParser struct {
	logger      *slog.Logger
	now         func() time.Time
	readability bool

	dates      selector.Chain[domain.Date]
	titles     selector.Chain[string]
	containers selector.Chain[*goquery.Selection]
}

var _ ports.Extractor = (*ArticleParser)(nil)

// Option customises an ArticleParser.
type Option func(*ArticleParser)

// WithClock replaces time.Now for the date fallback.
func WithClock(now func() time.Time) Option {
	return func(p *ArticleParser) { p.now = now }
}

// WithReadabilityFallback runs go-readability when no content container matches.
func WithReadabilityFallback(enabled bool) Option {
	return func(p *ArticleParser) { p.readability = enabled }
}

// NewArticleParser wires the field strategy chains; logger may be nil.
func NewArticleParser(logger *slog.Logger, opts ...Option) *ArticleParser {
	p := &ArticleParser{
		logger: logger,
		now:    time.Now,
		dates: selector.Chain[domain.Date]{
			dateElement("publish_time", "#publish_time"),
			dateElement("meta-text", "div.rich_media_meta_text"),
			dateElement("meta-em", "em.rich_media_meta"),
			dateAttr("published-time-meta", `meta[property="article:published_time"]`, "content"),
			dateScript(),
		},
		titles: selector.Chain[string]{
			selector.Attr("og:title", `meta[property="og:title"]`, "content"),
			selector.Text("rich_media_title", "h1.rich_media_title"),
			selector.Text("activity-name", "h1#activity-name"),
			selector.Text("title", "title"),
		},
		containers: selector.Chain[*goquery.Selection]{
			selector.Element("rich_media_content", ".rich_media_content"),
			selector.Element("js_content", "#js_content"),
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract builds the Article for raw markup. It never fails.
func (p *ArticleParser) Extract(raw, pageURL string) domain.Article {
	base, err := url.Parse(pageURL)
	if err != nil || pageURL == "" {
		base = nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		p.warn("unparseable markup, using fallbacks", "error", err)
		return domain.Article{
			PublishDate: domain.DateFromTime(p.now()),
			Title:       domain.UntitledSentinel,
		}
	}

	article := domain.Article{
		PublishDate: p.resolveDate(doc.Selection),
		Title:       p.resolveTitle(doc.Selection),
	}

	container, ok := p.resolveContainer(doc.Selection, raw, base)
	if !ok {
		return article
	}

	content := walkContent(container, base)
	article.Blocks = content.blocks
	article.ImageRefs = content.images
	article.Truncated = content.truncated

	p.debug("article extracted",
		"date", article.DateKey(),
		"title", article.Title,
		"blocks", len(article.Blocks),
		"images", len(article.ImageRefs),
		"truncated", article.Truncated)
	return article
}

func (p *ArticleParser) resolveDate(doc *goquery.Selection) domain.Date {
	if d, name, ok := p.dates.Resolve(doc); ok {
		p.debug("publish date resolved", "strategy", name, "date", d.Key())
		return d
	}
	d := domain.DateFromTime(p.now())
	p.warn("publish date not found, using current date", "date", d.Key(), "tried", p.dates.Names())
	return d
}

func (p *ArticleParser) resolveTitle(doc *goquery.Selection) string {
	if title, name, ok := p.titles.Resolve(doc); ok {
		p.debug("title resolved", "strategy", name)
		return title
	}
	p.warn("title not found", "fallback", domain.UntitledSentinel, "tried", p.titles.Names())
	return domain.UntitledSentinel
}

func (p *ArticleParser) resolveContainer(doc *goquery.Selection, raw string, base *url.URL) (*goquery.Selection, bool) {
	if sel, name, ok := p.containers.Resolve(doc); ok {
		p.debug("content container resolved", "strategy", name)
		return sel, true
	}
	if p.readability {
		if sel, ok := readabilityContent(raw, base); ok {
			p.warn("content container not found, using readability output")
			return sel, true
		}
	}
	p.warn("content container not found, article body is empty", "tried", p.containers.Names())
	return nil, false
}

func (p *ArticleParser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *ArticleParser) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func dateElement(name, query string) selector.Strategy[domain.Date] {
	return selector.Strategy[domain.Date]{
		Name: name,
		Find: func(doc *goquery.Selection) (domain.Date, bool) {
			var (
				found domain.Date
				ok    bool
			)
			doc.Find(query).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := s.Text()
				if !anyDate.MatchString(text) {
					return true
				}
				found, ok = parseDate(text)
				return !ok
			})
			return found, ok
		},
	}
}

func dateAttr(name, query, attr string) selector.Strategy[domain.Date] {
	return selector.Strategy[domain.Date]{
		Name: name,
		Find: func(doc *goquery.Selection) (domain.Date, bool) {
			v, exists := doc.Find(query).First().Attr(attr)
			if !exists {
				return domain.Date{}, false
			}
			return parseDate(v)
		},
	}
}

// dateScript reads the variables WeChat uses to fill #publish_time client-side.
func dateScript() selector.Strategy[domain.Date] {
	return selector.Strategy[domain.Date]{
		Name: "script-create-time",
		Find: func(doc *goquery.Selection) (domain.Date, bool) {
			var (
				found domain.Date
				ok    bool
			)
			doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				body := s.Text()
				if m := scriptCreateTime.FindStringSubmatch(body); m != nil {
					if text, valid := unixDate(m[1]); valid {
						found, ok = parseDate(text)
					}
				}
				if !ok {
					if m := scriptCreateText.FindStringSubmatch(body); m != nil {
						found, ok = parseDate(m[1])
					}
				}
				return !ok
			})
			return found, ok
		},
	}
}
