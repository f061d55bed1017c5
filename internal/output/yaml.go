package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/sift/pkg/sift"
)

// YAMLWriter buffers results and writes them as one YAML sequence.
type YAMLWriter struct {
	w       *bufio.Writer
	results []sift.Result
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:       bufio.NewWriter(w),
		results: make([]sift.Result, 0),
	}
}

// Write buffers a result.
func (w *YAMLWriter) Write(r sift.Result) error {
	w.results = append(w.results, r)
	return nil
}

// Flush writes the buffered results.
func (w *YAMLWriter) Flush() error {
	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)

	if err := encoder.Encode(w.results); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	w.results = w.results[:0]

	return w.w.Flush()
}

// Close flushes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
