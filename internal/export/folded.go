package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/coral-mesh/pace/internal/profiler"
)

// WriteFolded writes one "root;...;leaf <self-microseconds>" line per
// distinct span path, the input format of flamegraph.pl.
func WriteFolded(w io.Writer, report *profiler.Report) error {
	bw := bufio.NewWriter(w)
	for _, st := range aggregate(report.Spans) {
		us := int64(math.Round(st.self * 1e6))
		if us <= 0 {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s %d\n", strings.Join(st.path, pathSep), us); err != nil {
			return err
		}
	}
	return bw.Flush()
}
