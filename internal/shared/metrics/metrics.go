package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	exportsStartedTotal   atomic.Uint64
	exportsCompletedTotal atomic.Uint64
	exportsEmptyTotal     atomic.Uint64
	exportsFailedTotal    atomic.Uint64
	recordsExportedTotal  atomic.Uint64
	fieldFailuresTotal    atomic.Uint64
	unrecognizedTotal     atomic.Uint64

	exportDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncExportsStarted increments the started counter.
func IncExportsStarted() {
	exportsStartedTotal.Add(1)
}

// IncExportsCompleted increments the completed counter.
func IncExportsCompleted() {
	exportsCompletedTotal.Add(1)
}

// IncExportsEmpty counts runs whose date range matched nothing.
func IncExportsEmpty() {
	exportsEmptyTotal.Add(1)
}

// IncExportsFailed increments the failed counter.
func IncExportsFailed() {
	exportsFailedTotal.Add(1)
}

// AddRecordsExported adds n written rows.
func AddRecordsExported(n int) {
	if n > 0 {
		recordsExportedTotal.Add(uint64(n))
	}
}

// IncFieldFailures counts a cell left blank by a rendering fault.
func IncFieldFailures() {
	fieldFailuresTotal.Add(1)
}

// IncUnrecognizedFields counts a field skipped because the schema lacks it.
func IncUnrecognizedFields() {
	unrecognizedTotal.Add(1)
}

// ObserveExportDurationMs records an export duration in milliseconds.
func ObserveExportDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	exportDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "exports_started_total", "Total exports started", exportsStartedTotal.Load())
	writeCounter(&buf, "exports_completed_total", "Total exports that wrote a workbook", exportsCompletedTotal.Load())
	writeCounter(&buf, "exports_empty_total", "Total exports with nothing to export", exportsEmptyTotal.Load())
	writeCounter(&buf, "exports_failed_total", "Total exports failed", exportsFailedTotal.Load())
	writeCounter(&buf, "records_exported_total", "Total resighting rows written", recordsExportedTotal.Load())
	writeCounter(&buf, "field_failures_total", "Total cells left blank by rendering faults", fieldFailuresTotal.Load())
	writeCounter(&buf, "unrecognized_fields_total", "Total fields skipped as unrecognized", unrecognizedTotal.Load())
	writeHistogram(&buf, "export_duration_ms", "Export duration in milliseconds", exportDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe counts value in its own bucket; writeHistogram accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// SinceMillis returns the milliseconds elapsed since t.
func SinceMillis(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
