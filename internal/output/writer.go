// Package output serialises scrape results for the CLI.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jmylchreest/sift/pkg/sift"
)

// Format represents output format types.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats in flag-help order.
var Formats = []Format{FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat resolves a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", name)
}

// Writer serialises results.
type Writer interface {
	// Write outputs or buffers a single result.
	Write(r sift.Result) error

	// Flush ensures all data is written.
	Flush() error

	// Close flushes the writer.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
}

// WithPretty enables pretty-printing of JSON.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the JSON indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes every result of report, in order, and closes the writer.
func WriteReport(w io.Writer, format Format, report *sift.BatchReport, opts ...WriterOption) error {
	out, err := NewWriter(w, format, opts...)
	if err != nil {
		return err
	}
	for _, r := range report.Results {
		if err := out.Write(r); err != nil {
			return fmt.Errorf("writing result for %s: %w", r.URL, err)
		}
	}
	return out.Close()
}
