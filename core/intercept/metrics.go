package intercept

import "github.com/prometheus/client_golang/prometheus"

// HitsCollector exposes per-rule hit counts as prometheus metrics, so a
// harness that scrapes its own registry can observe which intercept rules
// fired during a run.
type HitsCollector struct {
	router *Router
	desc   *prometheus.Desc
}

func NewHitsCollector(router *Router) *HitsCollector {
	return &HitsCollector{
		router: router,
		desc: prometheus.NewDesc(
			"clipmock_intercept_rule_hits",
			"Requests matched per intercept rule.",
			[]string{"pattern", "method"},
			nil,
		),
	}
}

func (c *HitsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *HitsCollector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.router == nil {
		return
	}
	c.router.mu.Lock()
	defer c.router.mu.Unlock()
	for _, r := range c.router.rules {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, float64(r.hits), r.pattern.String(), r.method)
	}
}
