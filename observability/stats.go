package observability

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	once   sync.Once
	pstats *processStats
)

// processStats observes the host process of the rbtrees. The rbtree
// stats only count the nodes, the heap shows what the nodes cost.
type processStats struct {
	goroutines metric.Int64ObservableUpDownCounter
	heapAlloc  metric.Int64ObservableGauge
	heapObjs   metric.Int64ObservableGauge
}

func processStatsName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xrbtree/process/")
	if name = strings.TrimSpace(name); len(name) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitProcessStats registers the process stats into the global meter
// provider. Only the first call takes effect.
func InitProcessStats(name string) (err error) {
	once.Do(func() {
		meter := otel.Meter(
			processStatsName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		memStats := func() *runtime.MemStats {
			ms := &runtime.MemStats{}
			runtime.ReadMemStats(ms)
			return ms
		}
		pstats = &processStats{
			goroutines: lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
				"process.goroutines",
				metric.WithDescription(`The number of goroutines.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			)),
			heapAlloc: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"process.heap.alloc",
				metric.WithDescription(`The bytes of allocated heap objects.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(memStats().HeapAlloc))
					return nil
				}),
			)),
			heapObjs: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
				"process.heap.objects",
				metric.WithDescription(`The number of allocated heap objects.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(memStats().HeapObjects))
					return nil
				}),
			)),
		}
		err = otelruntime.Start(otelruntime.WithMinimumReadMemStatsInterval(time.Second))
	})
	return err
}
