// Package extractor pulls the structured fields sift reports out of an HTML
// document: the page title, the meta description, the first paragraph and the
// absolute hyperlink targets.
package extractor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/sift/internal/logger"
)

// Kind names a single-valued field.
type Kind int

const (
	KindTitle Kind = iota
	KindMetaDescription
	KindFirstParagraph
)

// String returns the field name used in logs.
func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindMetaDescription:
		return "description"
	case KindFirstParagraph:
		return "first_paragraph"
	default:
		return "unknown"
	}
}

// Selectors holds the CSS selectors used for each field.
type Selectors struct {
	Title       string
	Description string // must select an element carrying a content attribute
	Paragraph   string
	Link        string // must select elements carrying an href attribute
}

// DefaultSelectors returns the selectors for plain HTML pages.
func DefaultSelectors() Selectors {
	return Selectors{
		Title:       "title",
		Description: `meta[name="description"]`,
		Paragraph:   "p",
		Link:        "a[href]",
	}
}

// Fields is the extraction output for one document.
// Absent optional fields are nil; Title is empty when no title exists.
type Fields struct {
	Title          string
	Description    *string
	FirstParagraph *string
	Links          []string
}

// FieldExtractor extracts Fields from HTML. It holds no mutable state and is
// safe for concurrent use.
type FieldExtractor struct {
	sel Selectors
}

// New creates a FieldExtractor. Empty selectors fall back to the defaults.
func New(sel Selectors) *FieldExtractor {
	def := DefaultSelectors()
	if sel.Title == "" {
		sel.Title = def.Title
	}
	if sel.Description == "" {
		sel.Description = def.Description
	}
	if sel.Paragraph == "" {
		sel.Paragraph = def.Paragraph
	}
	if sel.Link == "" {
		sel.Link = def.Link
	}
	return &FieldExtractor{sel: sel}
}

// Extract parses html once and returns every field. A document that cannot be
// parsed yields empty Fields; missing elements are never an error.
func (e *FieldExtractor) Extract(html string) Fields {
	doc, ok := parse(html)
	if !ok {
		return Fields{Links: []string{}}
	}

	var f Fields
	if title := e.first(doc, KindTitle); title != nil {
		f.Title = *title
	}
	f.Description = e.first(doc, KindMetaDescription)
	f.FirstParagraph = e.first(doc, KindFirstParagraph)
	f.Links = e.links(doc)
	return f
}

// First returns the first match for kind, or nil when nothing matches.
func (e *FieldExtractor) First(html string, kind Kind) *string {
	doc, ok := parse(html)
	if !ok {
		return nil
	}
	return e.first(doc, kind)
}

// Links returns every href that looks like an absolute URL, in document order.
// Duplicates are kept.
func (e *FieldExtractor) Links(html string) []string {
	doc, ok := parse(html)
	if !ok {
		return []string{}
	}
	return e.links(doc)
}

func (e *FieldExtractor) first(doc *goquery.Document, kind Kind) *string {
	switch kind {
	case KindTitle:
		s := doc.Find(e.sel.Title).First()
		if s.Length() == 0 {
			return nil
		}
		return ptr(cleanText(s.Text()))

	case KindMetaDescription:
		s := doc.Find(e.sel.Description).First()
		content, exists := s.Attr("content")
		if !exists {
			return nil
		}
		return ptr(strings.TrimSpace(content))

	case KindFirstParagraph:
		s := doc.Find(e.sel.Paragraph).First()
		if s.Length() == 0 {
			return nil
		}
		return ptr(cleanText(s.Text()))
	}
	return nil
}

func (e *FieldExtractor) links(doc *goquery.Document) []string {
	links := make([]string, 0)
	doc.Find(e.sel.Link).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if !IsAbsolute(href) {
			return
		}
		links = append(links, href)
	})
	return links
}

// IsAbsolute reports whether href looks like an absolute http(s) URL.
func IsAbsolute(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var defaultExtractor = New(DefaultSelectors())

// Extract runs the default extractor over html.
func Extract(html string) Fields {
	return defaultExtractor.Extract(html)
}

func parse(html string) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		logger.Debug("html parse failed", "error", err)
		return nil, false
	}
	return doc, true
}

// cleanText normalizes whitespace in text.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func ptr(s string) *string {
	return &s
}
