package dupgraph

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting pipeline metrics.
// Implement this interface to integrate with monitoring systems; the
// metrics/prom package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordScan is called after each hashtable scan.
	RecordScan(rows, buckets int, duration time.Duration)

	// RecordComponents is called after the connected components analysis.
	RecordComponents(components, elements int, duration time.Duration, err error)

	// RecordDetection is called after each clustered component. size is the
	// component size, communities the number of communities it produced.
	RecordDetection(size, communities int, duration time.Duration, err error)

	// RecordArtifact is called after an artifact is saved or loaded.
	RecordArtifact(op string, bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScan(int, int, time.Duration)                 {}
func (NoopMetricsCollector) RecordComponents(int, int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordDetection(int, int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordArtifact(string, int64, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	ScanCount           atomic.Int64
	ScannedRows         atomic.Int64
	ScannedBuckets      atomic.Int64
	ComponentRuns       atomic.Int64
	Components          atomic.Int64
	DetectionCount      atomic.Int64
	DetectionErrors     atomic.Int64
	DetectionTotalNanos atomic.Int64
	Communities         atomic.Int64
	ArtifactCount       atomic.Int64
	ArtifactErrors      atomic.Int64
	ArtifactBytes       atomic.Int64
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(rows, buckets int, _ time.Duration) {
	b.ScanCount.Add(1)
	b.ScannedRows.Add(int64(rows))
	b.ScannedBuckets.Add(int64(buckets))
}

// RecordComponents implements MetricsCollector.
func (b *BasicMetricsCollector) RecordComponents(components, _ int, _ time.Duration, err error) {
	b.ComponentRuns.Add(1)
	if err == nil {
		b.Components.Add(int64(components))
	}
}

// RecordDetection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDetection(_, communities int, duration time.Duration, err error) {
	b.DetectionCount.Add(1)
	b.DetectionTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.DetectionErrors.Add(1)
		return
	}
	b.Communities.Add(int64(communities))
}

// RecordArtifact implements MetricsCollector.
func (b *BasicMetricsCollector) RecordArtifact(_ string, bytes int64, _ time.Duration, err error) {
	b.ArtifactCount.Add(1)
	if err != nil {
		b.ArtifactErrors.Add(1)
		return
	}
	b.ArtifactBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ScanCount:         b.ScanCount.Load(),
		ScannedRows:       b.ScannedRows.Load(),
		ScannedBuckets:    b.ScannedBuckets.Load(),
		Components:        b.Components.Load(),
		DetectionCount:    b.DetectionCount.Load(),
		DetectionErrors:   b.DetectionErrors.Load(),
		DetectionAvgNanos: b.avgDetectionNanos(),
		Communities:       b.Communities.Load(),
		ArtifactCount:     b.ArtifactCount.Load(),
		ArtifactErrors:    b.ArtifactErrors.Load(),
		ArtifactBytes:     b.ArtifactBytes.Load(),
	}
}

func (b *BasicMetricsCollector) avgDetectionNanos() int64 {
	count := b.DetectionCount.Load()
	if count == 0 {
		return 0
	}
	return b.DetectionTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ScanCount         int64
	ScannedRows       int64
	ScannedBuckets    int64
	Components        int64
	DetectionCount    int64
	DetectionErrors   int64
	DetectionAvgNanos int64
	Communities       int64
	ArtifactCount     int64
	ArtifactErrors    int64
	ArtifactBytes     int64
}
