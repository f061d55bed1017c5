package extractor

import (
	"reflect"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>
    Example   Domain
  </title>
  <meta name="description" content=" An example page. ">
</head>
<body>
  <h1>Example</h1>
  <p>This domain is for use in
     illustrative examples.</p>
  <p>Second paragraph.</p>
  <a href="https://www.iana.org/domains/example">More</a>
  <a href="/relative/path">Relative</a>
  <a href="#top">Fragment</a>
  <a href="mailto:someone@example.com">Mail</a>
  <a href="HTTP://UPPER.example.com/">Upper</a>
  <a href="https://www.iana.org/domains/example">Again</a>
  <a>No href</a>
</body>
</html>`

// --- Extract Tests ---

func TestExtract_AllFields(t *testing.T) {
	f := Extract(samplePage)

	if f.Title != "Example Domain" {
		t.Errorf("Title = %q, want %q", f.Title, "Example Domain")
	}
	if f.Description == nil || *f.Description != "An example page." {
		t.Errorf("Description = %v, want %q", f.Description, "An example page.")
	}
	if f.FirstParagraph == nil || *f.FirstParagraph != "This domain is for use in illustrative examples." {
		t.Errorf("FirstParagraph = %v", f.FirstParagraph)
	}

	wantLinks := []string{
		"https://www.iana.org/domains/example",
		"HTTP://UPPER.example.com/",
		"https://www.iana.org/domains/example",
	}
	if !reflect.DeepEqual(f.Links, wantLinks) {
		t.Errorf("Links = %v, want %v", f.Links, wantLinks)
	}
}

func TestExtract_MissingFields(t *testing.T) {
	f := Extract(`<html><body><div>nothing here</div></body></html>`)

	if f.Title != "" {
		t.Errorf("expected empty title, got %q", f.Title)
	}
	if f.Description != nil {
		t.Errorf("expected nil description, got %q", *f.Description)
	}
	if f.FirstParagraph != nil {
		t.Errorf("expected nil first paragraph, got %q", *f.FirstParagraph)
	}
	if f.Links == nil || len(f.Links) != 0 {
		t.Errorf("expected empty non-nil links, got %#v", f.Links)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	f := Extract("")
	if f.Title != "" || f.Description != nil || f.FirstParagraph != nil || len(f.Links) != 0 {
		t.Errorf("expected zero fields for empty document, got %+v", f)
	}
}

func TestExtract_DescriptionWithoutContent(t *testing.T) {
	f := Extract(`<html><head><meta name="description"></head></html>`)
	if f.Description != nil {
		t.Errorf("meta without content attribute should be absent, got %q", *f.Description)
	}
}

func TestExtract_DescriptionUsesFirstMetaOnly(t *testing.T) {
	f := Extract(`<html><head><meta name="description"><meta name="description" content="later"></head></html>`)
	if f.Description != nil {
		t.Errorf("only the first description meta is read, got %q", *f.Description)
	}
}

func TestExtract_EmptyParagraphIsPresent(t *testing.T) {
	f := Extract(`<html><body><p></p><p>later</p></body></html>`)
	if f.FirstParagraph == nil {
		t.Fatal("first <p> exists, expected a value")
	}
	if *f.FirstParagraph != "" {
		t.Errorf("expected empty first paragraph, got %q", *f.FirstParagraph)
	}
}

// --- First Tests ---

func TestFirst(t *testing.T) {
	e := New(Selectors{})

	tests := []struct {
		name string
		kind Kind
		want *string
	}{
		{"title", KindTitle, ptr("Example Domain")},
		{"description", KindMetaDescription, ptr("An example page.")},
		{"paragraph", KindFirstParagraph, ptr("This domain is for use in illustrative examples.")},
		{"unknown", Kind(42), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.First(samplePage, tt.kind)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("First() = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("First() = %q, want %q", *got, *tt.want)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	if KindTitle.String() != "title" {
		t.Errorf("unexpected %q", KindTitle.String())
	}
	if KindMetaDescription.String() != "description" {
		t.Errorf("unexpected %q", KindMetaDescription.String())
	}
	if KindFirstParagraph.String() != "first_paragraph" {
		t.Errorf("unexpected %q", KindFirstParagraph.String())
	}
	if Kind(9).String() != "unknown" {
		t.Errorf("unexpected %q", Kind(9).String())
	}
}

// --- Custom Selector Tests ---

func TestNew_CustomSelectors(t *testing.T) {
	e := New(Selectors{
		Title:     "h1",
		Paragraph: "p.lead",
		Link:      "nav a[href]",
	})

	html := `<html><head><title>ignored</title></head><body>
		<h1>Heading</h1>
		<p>plain</p><p class="lead">lead text</p>
		<nav><a href="https://a.example/">a</a></nav>
		<a href="https://b.example/">b</a>
	</body></html>`

	f := e.Extract(html)
	if f.Title != "Heading" {
		t.Errorf("Title = %q, want Heading", f.Title)
	}
	if f.FirstParagraph == nil || *f.FirstParagraph != "lead text" {
		t.Errorf("FirstParagraph = %v, want lead text", f.FirstParagraph)
	}
	if !reflect.DeepEqual(f.Links, []string{"https://a.example/"}) {
		t.Errorf("Links = %v", f.Links)
	}
}

// --- IsAbsolute Tests ---

func TestIsAbsolute(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"HTTPS://EXAMPLE.COM", true},
		{"/relative", false},
		{"relative/path", false},
		{"#anchor", false},
		{"mailto:a@b.c", false},
		{"javascript:void(0)", false},
		{"//cdn.example.com/x.js", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsAbsolute(tt.href); got != tt.want {
			t.Errorf("IsAbsolute(%q) = %v, want %v", tt.href, got, tt.want)
		}
	}
}
