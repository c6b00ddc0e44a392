package metric

import "github.com/prometheus/client_golang/prometheus"

// KeyCounter reports how many entries a store holds.
type KeyCounter interface {
	Len() int
}

// Collector reports store-level gauges that are read on scrape rather
// than updated on every write.
type Collector struct {
	store KeyCounter
	keys  *prometheus.Desc
}

// NewCollector creates a collector for store.
func NewCollector(store KeyCounter) *Collector {
	return &Collector{
		store: store,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Entries held by the store, including expired entries not yet reclaimed.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
}
