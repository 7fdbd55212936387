package api

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"clipper-mock/core/flow"
	"clipper-mock/core/store"
)

type storeMetricsCollector struct {
	store *store.Store
	flows *flow.Registry

	usersDesc      *prometheus.Desc
	activeBansDesc *prometheus.Desc
	auditDesc      *prometheus.Desc
	syncJobsDesc   *prometheus.Desc
	flowsDesc      *prometheus.Desc
}

func newStoreMetricsCollector(st *store.Store, flows *flow.Registry) prometheus.Collector {
	return &storeMetricsCollector{
		store: st,
		flows: flows,
		usersDesc: prometheus.NewDesc(
			"clipmock_users_count",
			"Number of seeded users.",
			nil,
			nil,
		),
		activeBansDesc: prometheus.NewDesc(
			"clipmock_active_bans_count",
			"Number of active bans across all channels.",
			nil,
			nil,
		),
		auditDesc: prometheus.NewDesc(
			"clipmock_audit_entries_count",
			"Number of recorded audit entries.",
			nil,
			nil,
		),
		syncJobsDesc: prometheus.NewDesc(
			"clipmock_sync_jobs_count",
			"Number of ban sync jobs by status.",
			[]string{"status"},
			nil,
		),
		flowsDesc: prometheus.NewDesc(
			"clipmock_auth_flows_count",
			"Number of tracked authorization flows.",
			nil,
			nil,
		),
	}
}

func (c *storeMetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usersDesc
	ch <- c.activeBansDesc
	ch <- c.auditDesc
	ch <- c.syncJobsDesc
	ch <- c.flowsDesc
}

func (c *storeMetricsCollector) Collect(ch chan<- prometheus.Metric) {
	if c == nil || c.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
	defer cancel()

	if n, err := c.store.Users.Count(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(c.usersDesc, prometheus.GaugeValue, float64(n))
	}
	if n, err := c.store.Bans.CountActive(ctx, ""); err == nil {
		ch <- prometheus.MustNewConstMetric(c.activeBansDesc, prometheus.GaugeValue, float64(n))
	}
	if n, err := c.store.Audit.Count(ctx); err == nil {
		ch <- prometheus.MustNewConstMetric(c.auditDesc, prometheus.GaugeValue, float64(n))
	}
	if jobs, err := c.store.SyncJobs.List(ctx); err == nil {
		counts := map[string]float64{}
		for _, j := range jobs {
			counts[j.Status]++
		}
		for status, n := range counts {
			ch <- prometheus.MustNewConstMetric(c.syncJobsDesc, prometheus.GaugeValue, n, status)
		}
	}
	if c.flows != nil {
		ch <- prometheus.MustNewConstMetric(c.flowsDesc, prometheus.GaugeValue, float64(c.flows.Len()))
	}
}
