// Package metrics exposes fontsound device state as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// Operation result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// StatsSource reports the current population of a device.
// *fontsound.Device implements it.
type StatsSource interface {
	Name() string
	Stats() fontsound.Stats
}

// FontsoundMetrics collects device population gauges on scrape and counts
// lifecycle events and API operations.
type FontsoundMetrics struct {
	source StatsSource

	liveDesc       *prometheus.Desc
	referencedDesc *prometheus.Desc
	linkedDesc     *prometheus.Desc
	idsDesc        *prometheus.Desc

	eventsTotal     *prometheus.CounterVec
	operationsTotal *prometheus.CounterVec
}

// NewFontsoundMetrics creates the collector for source and registers it
// with registry.
func NewFontsoundMetrics(registry *prometheus.Registry, source StatsSource) (*FontsoundMetrics, error) {
	labels := []string{"device"}
	m := &FontsoundMetrics{
		source: source,
		liveDesc: prometheus.NewDesc("fontsound_live",
			"Number of live fontsounds on the device", labels, nil),
		referencedDesc: prometheus.NewDesc("fontsound_referenced",
			"Number of fontsounds with a non-zero reference count", labels, nil),
		linkedDesc: prometheus.NewDesc("fontsound_linked",
			"Number of fontsounds linked to another fontsound", labels, nil),
		idsDesc: prometheus.NewDesc("fontsound_identifiers_in_use",
			"Number of allocated fontsound identifiers", labels, nil),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fontsound_events_total",
			Help: "Total number of device lifecycle events by kind",
		}, []string{"device", "kind"}),
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fontsound_operations_total",
			Help: "Total number of fontsound operations by operation and result",
		}, []string{"operation", "result"}),
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register fontsound metrics: %w", err)
	}
	return m, nil
}

// OnEvent implements fontsound.Observer.
func (m *FontsoundMetrics) OnEvent(ev fontsound.Event) {
	m.eventsTotal.WithLabelValues(ev.Device, string(ev.Kind)).Inc()
}

// RecordOperation counts one operation outcome. A nil err is a success.
func (m *FontsoundMetrics) RecordOperation(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *FontsoundMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.liveDesc
	ch <- m.referencedDesc
	ch <- m.linkedDesc
	ch <- m.idsDesc
	m.eventsTotal.Describe(ch)
	m.operationsTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *FontsoundMetrics) Collect(ch chan<- prometheus.Metric) {
	st := m.source.Stats()
	name := m.source.Name()
	ch <- prometheus.MustNewConstMetric(m.liveDesc, prometheus.GaugeValue, float64(st.Live), name)
	ch <- prometheus.MustNewConstMetric(m.referencedDesc, prometheus.GaugeValue, float64(st.Referenced), name)
	ch <- prometheus.MustNewConstMetric(m.linkedDesc, prometheus.GaugeValue, float64(st.Linked), name)
	ch <- prometheus.MustNewConstMetric(m.idsDesc, prometheus.GaugeValue, float64(st.IdentifiersInUse), name)
	m.eventsTotal.Collect(ch)
	m.operationsTotal.Collect(ch)
}
