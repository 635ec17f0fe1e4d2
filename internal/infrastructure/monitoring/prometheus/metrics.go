package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Lookup
	LookupsTotal   CounterVec
	LookupDuration HistogramVec

	// Reload and alias rebuild
	ReloadsTotal         CounterVec
	ReloadDuration       HistogramVec
	AliasRebuildsTotal   CounterVec
	AliasRebuildDuration HistogramVec
	AliasRows            GaugeVec

	// Graph snapshot
	GraphEntities        GaugeVec
	GraphSnapshotVersion GaugeVec

	// Messaging
	EventsPublishedTotal CounterVec
	EventsConsumedTotal  CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultLookupDurationBuckets = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1}
	DefaultReloadDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
)

// NewAppMetrics registers every metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.LookupsTotal = collector.RegisterCounter("lookups_total", "Chemical lookups by matching tier and outcome", "tier", "found")
	m.LookupDuration = collector.RegisterHistogram("lookup_duration_seconds", "Entity matching duration", DefaultLookupDurationBuckets, "tier")

	m.ReloadsTotal = collector.RegisterCounter("reloads_total", "Graph and alias reloads", "status")
	m.ReloadDuration = collector.RegisterHistogram("reload_duration_seconds", "Reload duration", DefaultReloadDurationBuckets, "status")
	m.AliasRebuildsTotal = collector.RegisterCounter("alias_rebuilds_total", "Alias snapshot rebuilds", "status")
	m.AliasRebuildDuration = collector.RegisterHistogram("alias_rebuild_duration_seconds", "Alias snapshot rebuild duration", DefaultReloadDurationBuckets, "status")
	m.AliasRows = collector.RegisterGauge("alias_rows", "Rows in the live alias snapshot")

	m.GraphEntities = collector.RegisterGauge("graph_entities", "Entities in the live graph snapshot", "type")
	m.GraphSnapshotVersion = collector.RegisterGauge("graph_snapshot_version", "Version of the live graph snapshot")

	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Reload events published", "status")
	m.EventsConsumedTotal = collector.RegisterCounter("events_consumed_total", "Reload events consumed", "status")

	return m
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// ObserveLookup records one entity match.
func (m *AppMetrics) ObserveLookup(tier string, found bool, d time.Duration) {
	m.LookupsTotal.WithLabelValues(tier, strconv.FormatBool(found)).Inc()
	m.LookupDuration.WithLabelValues(tier).Observe(d.Seconds())
}

// ObserveReload records one service reload.
func (m *AppMetrics) ObserveReload(success bool, d time.Duration) {
	s := status(success)
	m.ReloadsTotal.WithLabelValues(s).Inc()
	m.ReloadDuration.WithLabelValues(s).Observe(d.Seconds())
}

// ObserveAliasRebuild records one alias rebuild. The row gauge only moves on
// success, when the rows actually went live.
func (m *AppMetrics) ObserveAliasRebuild(success bool, d time.Duration, rows int) {
	s := status(success)
	m.AliasRebuildsTotal.WithLabelValues(s).Inc()
	m.AliasRebuildDuration.WithLabelValues(s).Observe(d.Seconds())
	if success {
		m.AliasRows.WithLabelValues().Set(float64(rows))
	}
}

// SetGraphSnapshot records the shape of a newly installed graph snapshot.
func (m *AppMetrics) SetGraphSnapshot(version uint64, chemicals, others int) {
	m.GraphSnapshotVersion.WithLabelValues().Set(float64(version))
	m.GraphEntities.WithLabelValues("chemical").Set(float64(chemicals))
	m.GraphEntities.WithLabelValues("other").Set(float64(others))
}

// ObserveEvent records a published or consumed reload event.
func (m *AppMetrics) ObserveEvent(published, success bool) {
	if published {
		m.EventsPublishedTotal.WithLabelValues(status(success)).Inc()
		return
	}
	m.EventsConsumedTotal.WithLabelValues(status(success)).Inc()
}

// RecordHTTPRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *AppMetrics) RecordHTTPRequest(method, route string, statusCode int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RequestStarted increments the in-flight gauge. Pair with RequestFinished.
func (m *AppMetrics) RequestStarted() { m.HTTPActiveRequests.WithLabelValues().Inc() }

// RequestFinished decrements the in-flight gauge.
func (m *AppMetrics) RequestFinished() { m.HTTPActiveRequests.WithLabelValues().Dec() }
