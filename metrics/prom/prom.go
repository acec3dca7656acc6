// Package prom exports dupgraph pipeline metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	mc, err := prom.New(reg, "dupgraph")
//	if err != nil {
//	    return err
//	}
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//	_, _, err = dupgraph.FindConnectedComponents(ctx, src, dupgraph.WithMetricsCollector(mc))
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/dupgraph"
)

// Collector implements dupgraph.MetricsCollector with Prometheus metrics.
type Collector struct {
	scans             prometheus.Counter
	scanRows          prometheus.Counter
	scanBuckets       prometheus.Counter
	scanDuration      prometheus.Histogram
	components        prometheus.Gauge
	elements          prometheus.Gauge
	componentRuns     *prometheus.CounterVec
	componentDuration prometheus.Histogram
	detections        *prometheus.CounterVec
	detectionDuration prometheus.Histogram
	componentSize     prometheus.Histogram
	communities       prometheus.Counter
	artifacts         *prometheus.CounterVec
	artifactBytes     *prometheus.CounterVec
	artifactDuration  *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "hashtable_scans_total",
			Help: "Number of scanned hashtables.",
		}),
		scanRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "scanned_rows_total",
			Help: "Number of rows read from the row source.",
		}),
		scanBuckets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "buckets_total",
			Help: "Number of buckets assembled.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "hashtable_scan_duration_seconds",
			Help:    "Time spent scanning one hashtable.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "components",
			Help: "Connected components found by the last run.",
		}),
		elements: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "elements",
			Help: "Distinct elements seen by the last run.",
		}),
		componentRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "component_runs_total",
			Help: "Connected components analyses by status.",
		}, []string{"status"}),
		componentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "component_duration_seconds",
			Help:    "Duration of the connected components analysis.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "detections_total",
			Help: "Per-component community detections by status.",
		}, []string{"status"}),
		detectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "detection_duration_seconds",
			Help:    "Time spent detecting communities in one component.",
			Buckets: prometheus.DefBuckets,
		}),
		componentSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "detected_component_size",
			Help:    "Size of components passed to the detector.",
			Buckets: prometheus.ExponentialBuckets(4, 2, 16),
		}),
		communities: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "detected_communities_total",
			Help: "Communities produced by the detector.",
		}),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "artifact_operations_total",
			Help: "Artifact saves and loads by status.",
		}, []string{"op", "status"}),
		artifactBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "artifact_bytes_total",
			Help: "Bytes written or read for artifacts.",
		}, []string{"op"}),
		artifactDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "artifact_duration_seconds",
			Help:    "Artifact save and load latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	for _, m := range []prometheus.Collector{
		c.scans, c.scanRows, c.scanBuckets, c.scanDuration,
		c.components, c.elements, c.componentRuns, c.componentDuration,
		c.detections, c.detectionDuration, c.componentSize, c.communities,
		c.artifacts, c.artifactBytes, c.artifactDuration,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordScan implements dupgraph.MetricsCollector.
func (c *Collector) RecordScan(rows, buckets int, d time.Duration) {
	c.scans.Inc()
	c.scanRows.Add(float64(rows))
	c.scanBuckets.Add(float64(buckets))
	c.scanDuration.Observe(d.Seconds())
}

// RecordComponents implements dupgraph.MetricsCollector.
func (c *Collector) RecordComponents(components, elements int, d time.Duration, err error) {
	c.componentRuns.WithLabelValues(status(err)).Inc()
	c.componentDuration.Observe(d.Seconds())
	if err == nil {
		c.components.Set(float64(components))
		c.elements.Set(float64(elements))
	}
}

// RecordDetection implements dupgraph.MetricsCollector.
func (c *Collector) RecordDetection(size, communities int, d time.Duration, err error) {
	c.detections.WithLabelValues(status(err)).Inc()
	c.detectionDuration.Observe(d.Seconds())
	c.componentSize.Observe(float64(size))
	if err == nil {
		c.communities.Add(float64(communities))
	}
}

// RecordArtifact implements dupgraph.MetricsCollector.
func (c *Collector) RecordArtifact(op string, bytes int64, d time.Duration, err error) {
	c.artifacts.WithLabelValues(op, status(err)).Inc()
	c.artifactDuration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil {
		c.artifactBytes.WithLabelValues(op).Add(float64(bytes))
	}
}

var _ dupgraph.MetricsCollector = (*Collector)(nil)
