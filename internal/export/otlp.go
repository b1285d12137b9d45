package export

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/coral-mesh/pace/internal/constants"
	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/pkg/version"
)

const scopeName = "github.com/coral-mesh/pace"

// BuildTraces converts report into a single OTLP trace with one span per
// closed span, parented by nesting.
func BuildTraces(report *profiler.Report, opts Options) ptrace.Traces {
	td := ptrace.NewTraces()

	rs := td.ResourceSpans().AppendEmpty()
	attrs := rs.Resource().Attributes()
	attrs.PutStr("service.name", constants.ServiceName)
	attrs.PutStr("service.version", version.Version)
	attrs.PutStr("pace.user_agent", version.Get().UserAgent())
	if opts.RunID != "" {
		attrs.PutStr("pace.run_id", opts.RunID)
	}

	ss := rs.ScopeSpans().AppendEmpty()
	ss.Scope().SetName(scopeName)
	ss.Scope().SetVersion(version.Version)

	traceID := traceIDFor(opts.RunID)
	start := opts.Start
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	at := func(seconds float64) pcommon.Timestamp {
		return pcommon.NewTimestampFromTime(start.Add(time.Duration(seconds * float64(time.Second))))
	}

	parents := parentIndexes(report.Spans)
	spans := ss.Spans()
	spans.EnsureCapacity(len(report.Spans))
	for i, s := range report.Spans {
		span := spans.AppendEmpty()
		span.SetTraceID(traceID)
		span.SetSpanID(spanID(i))
		if p := parents[i]; p >= 0 {
			span.SetParentSpanID(spanID(p))
		}
		span.SetName(s.Name)
		span.SetKind(ptrace.SpanKindInternal)
		span.SetStartTimestamp(at(s.Start))
		span.SetEndTimestamp(at(s.End))
		span.Attributes().PutStr("code.function", s.Name)
		span.Attributes().PutInt("pace.depth", int64(s.Depth))
	}

	return td
}

// WriteOTLP writes report as OTLP/JSON.
func WriteOTLP(w io.Writer, report *profiler.Report, opts Options) error {
	var m ptrace.JSONMarshaler
	data, err := m.MarshalTraces(BuildTraces(report, opts))
	if err != nil {
		return fmt.Errorf("failed to marshal traces: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// parentIndexes returns, for each span in closing order, the index of its
// enclosing span or -1. Walking backwards visits every parent before its children.
func parentIndexes(spans []profiler.Span) []int {
	parents := make([]int, len(spans))
	var open []int
	for i := len(spans) - 1; i >= 0; i-- {
		for len(open) > 0 && spans[open[len(open)-1]].Depth >= spans[i].Depth {
			open = open[:len(open)-1]
		}
		parents[i] = -1
		if len(open) > 0 {
			parents[i] = open[len(open)-1]
		}
		open = append(open, i)
	}
	return parents
}

func traceIDFor(runID string) pcommon.TraceID {
	id, err := uuid.Parse(runID)
	if err != nil {
		id = uuid.New()
	}
	return pcommon.TraceID(id)
}

func spanID(i int) pcommon.SpanID {
	var id pcommon.SpanID
	binary.BigEndian.PutUint64(id[:], uint64(i)+1)
	return id
}
