// Package sdk profiles a function running in the current process.
//
// Profile starts target on a dedicated goroutine, samples that goroutine's
// stack every interval, and turns the samples into nested spans with
// wall-clock durations. When target returns, the text report is written and
// any configured exports (folded stacks, pprof, OTLP/JSON) are produced.
//
//	import "github.com/coral-mesh/pace/pkg/sdk"
//
//	func main() {
//	    report, err := sdk.Profile(context.Background(), work, sdk.Options{})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, span := range report.Spans {
//	        fmt.Println(span.Name, span.Duration())
//	    }
//	}
//
// Spans close and are reported innermost first. Goroutines started by target
// are not sampled.
package sdk
