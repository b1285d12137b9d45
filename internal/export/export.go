// Package export writes profiling reports in formats other tools read:
// folded stacks for flame graphs, pprof profiles and OTLP/JSON traces.
package export

import (
	"slices"
	"strings"
	"time"

	"github.com/coral-mesh/pace/internal/profiler"
)

// Options carries run metadata the report does not hold.
type Options struct {
	// Start is the wall-clock time the run started.
	Start time.Time
	// Interval is the sampling period.
	Interval time.Duration
	// RunID becomes the OTLP trace ID when it parses as a UUID.
	RunID string
}

// pathStat aggregates every span sharing a root-first path.
type pathStat struct {
	path []string
	// total is the summed inclusive wall time in seconds.
	total float64
	// self is total minus the inclusive time of direct children.
	self  float64
	count int64
}

const pathSep = ";"

// aggregate groups spans by path, sorted by path.
func aggregate(spans []profiler.Span) []*pathStat {
	byKey := make(map[string]*pathStat)
	for _, s := range spans {
		key := strings.Join(s.Path, pathSep)
		st, ok := byKey[key]
		if !ok {
			st = &pathStat{path: s.Path}
			byKey[key] = st
		}
		st.total += s.Duration()
		st.count++
	}

	for key, st := range byKey {
		st.self += st.total
		if len(st.path) < 2 {
			continue
		}
		parent := key[:len(key)-len(st.path[len(st.path)-1])-len(pathSep)]
		if p, ok := byKey[parent]; ok {
			p.self -= st.total
		}
	}

	stats := make([]*pathStat, 0, len(byKey))
	for _, st := range byKey {
		st.self = max(st.self, 0)
		stats = append(stats, st)
	}
	slices.SortFunc(stats, func(a, b *pathStat) int {
		return slices.Compare(a.path, b.path)
	})
	return stats
}
