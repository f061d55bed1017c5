package sift

import "time"

// Request is one entry of a batch. Index is the position in the caller's
// input and is used to restore input order.
type Request struct {
	URL   string
	Index int
}

// Result is the terminal record for one Request. Exactly one Result is
// produced per Request however many attempts were made.
//
// StatusCode 0 means no HTTP response was ever received; Error is set in
// exactly that case.
type Result struct {
	URL            string   `json:"url" yaml:"url"`
	Title          string   `json:"title" yaml:"title"`
	Description    *string  `json:"description,omitempty" yaml:"description,omitempty"`
	FirstParagraph *string  `json:"first_paragraph,omitempty" yaml:"first_paragraph,omitempty"`
	Links          []string `json:"links" yaml:"links"`
	StatusCode     int      `json:"status_code" yaml:"status_code"`
	FetchTimeMs    int64    `json:"fetch_time_ms" yaml:"fetch_time_ms"`
	Error          *string  `json:"error,omitempty" yaml:"error,omitempty"`
	Attempts       int      `json:"attempts" yaml:"attempts"`
}

// OK reports whether the task obtained an HTTP response.
func (r Result) OK() bool {
	return r.Error == nil
}

// BatchReport holds every Result of one Scrape call, in input order.
// Summary figures are derived from Results on demand.
type BatchReport struct {
	Results []Result      `json:"results" yaml:"results"`
	Elapsed time.Duration `json:"-" yaml:"-"`
}

// Len returns the number of results.
func (b *BatchReport) Len() int {
	return len(b.Results)
}

// Succeeded counts results that obtained an HTTP response, whatever its status.
func (b *BatchReport) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed counts results whose fetch never succeeded.
func (b *BatchReport) Failed() int {
	return b.Len() - b.Succeeded()
}

// TotalLinks sums the extracted links over all results.
func (b *BatchReport) TotalLinks() int {
	n := 0
	for _, r := range b.Results {
		n += len(r.Links)
	}
	return n
}

// StatusCounts groups results by status code. Failed fetches count under 0.
func (b *BatchReport) StatusCounts() map[int]int {
	counts := make(map[int]int)
	for _, r := range b.Results {
		counts[r.StatusCode]++
	}
	return counts
}

// Summary is a serialisable snapshot of the derived counts.
type Summary struct {
	Total      int   `json:"total" yaml:"total"`
	Succeeded  int   `json:"succeeded" yaml:"succeeded"`
	Failed     int   `json:"failed" yaml:"failed"`
	TotalLinks int   `json:"total_links" yaml:"total_links"`
	ElapsedMs  int64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// Summary computes the derived counts.
func (b *BatchReport) Summary() Summary {
	return Summary{
		Total:      b.Len(),
		Succeeded:  b.Succeeded(),
		Failed:     b.Failed(),
		TotalLinks: b.TotalLinks(),
		ElapsedMs:  b.Elapsed.Milliseconds(),
	}
}
