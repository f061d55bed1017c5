package sift

// collector is the fan-in point for terminal results. Tasks send from any
// goroutine; Collect receives exactly n of them.
type collector struct {
	results chan indexedResult
}

type indexedResult struct {
	index  int
	result Result
}

func newCollector(n int) *collector {
	// Buffered so that no task blocks on send once it is terminal.
	return &collector{results: make(chan indexedResult, n)}
}

func (c *collector) send(index int, r Result) {
	c.results <- indexedResult{index: index, result: r}
}

// Collect blocks until n results have arrived and returns them at their
// input positions, whatever order they arrived in.
func (c *collector) Collect(n int) *BatchReport {
	out := make([]Result, n)
	for i := 0; i < n; i++ {
		ir := <-c.results
		out[ir.index] = ir.result
	}
	return &BatchReport{Results: out}
}
