package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/pprof/profile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/coral-mesh/pace/internal/profiler"
)

// nestedReport is main(0..4) containing a(0..1), b(1..3) and a(3..4); b holds c(1..2).
func nestedReport() *profiler.Report {
	return &profiler.Report{
		Samples: 16,
		Elapsed: 4,
		Rate:    4,
		Spans: []profiler.Span{
			{Name: "a", Start: 0, End: 1, Depth: 1, Path: []string{"main", "a"}},
			{Name: "c", Start: 1, End: 2, Depth: 2, Path: []string{"main", "b", "c"}},
			{Name: "b", Start: 1, End: 3, Depth: 1, Path: []string{"main", "b"}},
			{Name: "a", Start: 3, End: 4, Depth: 1, Path: []string{"main", "a"}},
			{Name: "main", Start: 0, End: 4, Depth: 0, Path: []string{"main"}},
		},
	}
}

func TestAggregate(t *testing.T) {
	stats := aggregate(nestedReport().Spans)
	require.Len(t, stats, 4)

	got := make(map[string][3]float64)
	for _, st := range stats {
		key := ""
		for i, p := range st.path {
			if i > 0 {
				key += ";"
			}
			key += p
		}
		got[key] = [3]float64{st.total, st.self, float64(st.count)}
	}

	assert.Equal(t, [3]float64{4, 0, 1}, got["main"])
	assert.Equal(t, [3]float64{2, 2, 2}, got["main;a"])
	assert.Equal(t, [3]float64{2, 1, 1}, got["main;b"])
	assert.Equal(t, [3]float64{1, 1, 1}, got["main;b;c"])

	assert.Equal(t, []string{"main"}, stats[0].path, "sorted by path")
}

func TestWriteFolded(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFolded(&buf, nestedReport()))

	// main has no self time and is omitted.
	assert.Equal(t, "main;a 2000000\nmain;b 1000000\nmain;b;c 1000000\n", buf.String())
}

func TestWriteFolded_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFolded(&buf, &profiler.Report{}))
	assert.Empty(t, buf.String())
}

func TestBuildProfile(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	prof, err := BuildProfile(nestedReport(), Options{Start: start, Interval: 25 * time.Millisecond})
	require.NoError(t, err)

	assert.Equal(t, "wall", prof.SampleType[0].Type)
	assert.Equal(t, "count", prof.SampleType[1].Unit)
	assert.Equal(t, int64(25_000_000), prof.Period)
	assert.Equal(t, start.UnixNano(), prof.TimeNanos)
	assert.Equal(t, int64(4_000_000_000), prof.DurationNanos)
	assert.Len(t, prof.Function, 4, "one function per distinct name")
	require.Len(t, prof.Sample, 4)

	var c *profile.Sample
	for _, s := range prof.Sample {
		if len(s.Location) == 3 {
			c = s
		}
	}
	require.NotNil(t, c)
	assert.Equal(t, "c", c.Location[0].Line[0].Function.Name, "leaf first")
	assert.Equal(t, "main", c.Location[2].Line[0].Function.Name)
	assert.Equal(t, []int64{1_000_000_000, 1}, c.Value)
}

func TestWritePprof_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePprof(&buf, nestedReport(), Options{Interval: 25 * time.Millisecond}))

	prof, err := profile.Parse(&buf)
	require.NoError(t, err)

	var total int64
	for _, s := range prof.Sample {
		total += s.Value[0]
	}
	assert.Equal(t, int64(4_000_000_000), total, "self times add up to the root span")
}

func TestBuildTraces(t *testing.T) {
	runID := uuid.NewString()
	start := time.Unix(1_700_000_000, 0)
	td := BuildTraces(nestedReport(), Options{Start: start, RunID: runID})

	require.Equal(t, 5, td.SpanCount())
	rs := td.ResourceSpans().At(0)
	name, ok := rs.Resource().Attributes().Get("service.name")
	require.True(t, ok)
	assert.Equal(t, "pace", name.Str())

	spans := rs.ScopeSpans().At(0).Spans()
	byName := func(i int) ptrace.Span { return spans.At(i) }

	want := pcommon.TraceID(uuid.MustParse(runID))
	for i := range spans.Len() {
		assert.Equal(t, want, spans.At(i).TraceID())
	}

	root := byName(4)
	assert.Equal(t, "main", root.Name())
	assert.True(t, root.ParentSpanID().IsEmpty())
	assert.True(t, start.Equal(root.StartTimestamp().AsTime()))
	assert.True(t, start.Add(4*time.Second).Equal(root.EndTimestamp().AsTime()))

	assert.Equal(t, root.SpanID(), byName(0).ParentSpanID(), "first a under main")
	assert.Equal(t, byName(2).SpanID(), byName(1).ParentSpanID(), "c under b")
	assert.Equal(t, root.SpanID(), byName(2).ParentSpanID(), "b under main")
	assert.Equal(t, root.SpanID(), byName(3).ParentSpanID(), "second a under main")

	depth, ok := byName(1).Attributes().Get("pace.depth")
	require.True(t, ok)
	assert.Equal(t, int64(2), depth.Int())
}

func TestBuildTraces_RandomTraceID(t *testing.T) {
	td := BuildTraces(nestedReport(), Options{RunID: "not-a-uuid"})
	assert.False(t, td.ResourceSpans().At(0).ScopeSpans().At(0).Spans().At(0).TraceID().IsEmpty())
}

func TestWriteOTLP_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOTLP(&buf, nestedReport(), Options{Start: time.Unix(1, 0)}))

	var u ptrace.JSONUnmarshaler
	td, err := u.UnmarshalTraces(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 5, td.SpanCount())
}

func TestParentIndexes(t *testing.T) {
	assert.Equal(t, []int{4, 2, 4, 4, -1}, parentIndexes(nestedReport().Spans))
	assert.Empty(t, parentIndexes(nil))

	// Two consecutive roots.
	spans := []profiler.Span{
		{Name: "x", Depth: 1},
		{Name: "r1", Depth: 0},
		{Name: "r2", Depth: 0},
	}
	assert.Equal(t, []int{1, -1, -1}, parentIndexes(spans))
}
