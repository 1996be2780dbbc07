package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Lightweight per-frame CPU profiler and gauges for the debug overlay.

var (
	mu          sync.Mutex
	frameTotals = make(map[string]time.Duration)
	gauges      = make(map[string]int64)
)

// Track returns a stop function that records the elapsed time under the given name.
// Usage: defer profiling.Track("subsystem.Operation")()
func Track(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		mu.Lock()
		frameTotals[name] += d
		mu.Unlock()
	}
}

// SetGauge records the latest value of a named quantity, e.g. a queue length.
// Gauges survive ResetFrame.
func SetGauge(name string, v int64) {
	mu.Lock()
	gauges[name] = v
	mu.Unlock()
}

// Gauge returns the last value recorded for name.
func Gauge(name string) (int64, bool) {
	mu.Lock()
	defer mu.Unlock()
	v, ok := gauges[name]
	return v, ok
}

// ResetFrame clears current per-frame totals. Call at the start of each frame.
func ResetFrame() {
	mu.Lock()
	for k := range frameTotals {
		delete(frameTotals, k)
	}
	mu.Unlock()
}

// Snapshot returns a copy of current per-frame totals.
func Snapshot() map[string]time.Duration {
	mu.Lock()
	defer mu.Unlock()
	out := make(map[string]time.Duration, len(frameTotals))
	for k, v := range frameTotals {
		out[k] = v
	}
	return out
}

// TopN formats top N durations from the current frame totals.
// Example: "meshing.GenerateChunk:4.2ms, meshing.Harvest:0.1ms"
func TopN(n int) string {
	ss := Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].dur > list[j].dur })
	if n > len(list) {
		n = len(list)
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ms := float64(list[i].dur.Microseconds()) / 1000.0
		parts = append(parts, list[i].name+":"+formatMs(ms))
	}
	return strings.Join(parts, ", ")
}

func formatMs(ms float64) string {
	// one decimal, truncated; drop ".0"
	tenths := int64(ms*10 + 0.0001)
	if tenths%10 == 0 {
		return strconv.FormatInt(tenths/10, 10) + "ms"
	}
	return strconv.FormatFloat(float64(tenths)/10, 'f', 1, 64) + "ms"
}
