package export

import (
	"fmt"
	"io"

	"github.com/google/pprof/profile"

	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/internal/safe"
)

// BuildProfile converts report into a pprof profile with one sample per span
// path. Sample values are self wall time in nanoseconds and the number of spans.
func BuildProfile(report *profiler.Report, opts Options) (*profile.Profile, error) {
	elapsed, _ := safe.SecondsToNanos(report.Elapsed)

	prof := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "wall", Unit: "nanoseconds"},
			{Type: "spans", Unit: "count"},
		},
		PeriodType:    &profile.ValueType{Type: "wall", Unit: "nanoseconds"},
		Period:        opts.Interval.Nanoseconds(),
		DurationNanos: elapsed,
	}
	if !opts.Start.IsZero() {
		prof.TimeNanos = opts.Start.UnixNano()
	}

	m := &profile.Mapping{ID: 1, HasFunctions: true}
	prof.Mapping = []*profile.Mapping{m}

	locations := make(map[string]*profile.Location)
	location := func(name string) *profile.Location {
		if loc, ok := locations[name]; ok {
			return loc
		}
		fn := &profile.Function{
			ID:         uint64(len(prof.Function)) + 1,
			Name:       name,
			SystemName: name,
		}
		prof.Function = append(prof.Function, fn)

		loc := &profile.Location{
			ID:      uint64(len(prof.Location)) + 1,
			Mapping: m,
			Line:    []profile.Line{{Function: fn}},
		}
		prof.Location = append(prof.Location, loc)
		locations[name] = loc
		return loc
	}

	for _, st := range aggregate(report.Spans) {
		// pprof lists locations leaf first.
		locs := make([]*profile.Location, len(st.path))
		for i, name := range st.path {
			locs[len(st.path)-1-i] = location(name)
		}

		self, _ := safe.SecondsToNanos(st.self)
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: locs,
			Value:    []int64{self, st.count},
		})
	}

	if err := prof.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return prof, nil
}

// WritePprof writes report as a gzipped pprof profile.
func WritePprof(w io.Writer, report *profiler.Report, opts Options) error {
	prof, err := BuildProfile(report, opts)
	if err != nil {
		return err
	}
	return prof.Write(w)
}
