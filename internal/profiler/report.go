package profiler

import (
	"bufio"
	"fmt"
	"io"
)

// Span is one closed START/END pair.
type Span struct {
	Name  string
	Start float64
	End   float64
	// Depth is the number of spans enclosing this one.
	Depth int
	// Path holds the enclosing span names root first, ending with Name.
	Path []string
}

// Duration returns the span's wall time in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// Report is the result of replaying a run. Spans are in closing order.
type Report struct {
	Samples uint64
	Elapsed float64
	Rate    float64
	Spans   []Span
}

// WriteTo writes the text report: two summary lines, then one
// "<name> <seconds>" line per span.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	_, _ = fmt.Fprintf(bw, "Captured: %d samples in %.2f seconds\n", r.Samples, r.Elapsed)
	_, _ = fmt.Fprintf(bw, "Sample rate: %.2f samples/sec\n", r.Rate)
	for _, s := range r.Spans {
		_, _ = fmt.Fprintf(bw, "%s %.2f\n", s.Name, s.Duration())
	}

	err := bw.Flush()
	return cw.n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
