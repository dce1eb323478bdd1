package metrics

import "github.com/prometheus/client_golang/prometheus"

// JobStats exposes live processor state to the collector.
type JobStats interface {
	ActiveJobs() int
	Capacity() int
}

// Collector implements prometheus.Collector to read live gauges at scrape time.
type Collector struct {
	stats JobStats

	activeJobs *prometheus.Desc
	capacity   *prometheus.Desc
}

// NewCollector creates a collector; stats may be nil (gauges report 0).
func NewCollector(stats JobStats) *Collector {
	return &Collector{
		stats: stats,
		activeJobs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_jobs"),
			"Jobs currently holding a processing slot.",
			nil, nil,
		),
		capacity: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "job_slots"),
			"Maximum number of concurrent jobs.",
			nil, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeJobs
	ch <- c.capacity
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	var active, capacity float64
	if c.stats != nil {
		active = float64(c.stats.ActiveJobs())
		capacity = float64(c.stats.Capacity())
	}
	ch <- prometheus.MustNewConstMetric(c.activeJobs, prometheus.GaugeValue, active)
	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, capacity)
}
