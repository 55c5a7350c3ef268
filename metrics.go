// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dbcp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// collector exports PoolStats as Prometheus metrics. Values are read
// from the pool at scrape time.
type collector struct {
	p *Pool

	idle      *prometheus.Desc
	borrowed  *prometheus.Desc
	maxSize   *prometheus.Desc
	minCache  *prometheus.Desc
	status    *prometheus.Desc
	created   *prometheus.Desc
	destroyed *prometheus.Desc
	replaced  *prometheus.Desc
	refills   *prometheus.Desc
	exhausted *prometheus.Desc
}

// NewCollector returns a prometheus.Collector reporting the statistics
// of p under namespace. Every metric carries a constant driver label.
func NewCollector(p *Pool, namespace string) prometheus.Collector {
	labels := prometheus.Labels{"driver": p.cfg.Driver}
	desc := func(name, help string, variable ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, variable, labels)
	}

	return &collector{
		p: p,

		idle:      desc("connections_idle", "Number of idle connections."),
		borrowed:  desc("connections_borrowed", "Number of connections checked out."),
		maxSize:   desc("connections_max", "Maximum number of idle plus borrowed connections."),
		minCache:  desc("connections_min_cache", "Connections opened up front and per refill."),
		status:    desc("status", "Current pool status, 1 for the active one.", "status"),
		created:   desc("connections_created_total", "Total number of connections opened."),
		destroyed: desc("connections_destroyed_total", "Total number of connections closed."),
		replaced:  desc("connections_replaced_total", "Total number of connections replaced after a failed probe."),
		refills:   desc("refills_total", "Total number of refills started by a checkout."),
		exhausted: desc("exhausted_total", "Total number of checkouts refused for lack of capacity."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idle
	ch <- c.borrowed
	ch <- c.maxSize
	ch <- c.minCache
	ch <- c.status
	ch <- c.created
	ch <- c.destroyed
	ch <- c.replaced
	ch <- c.refills
	ch <- c.exhausted
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.p.Stats()

	gauge := func(d *prometheus.Desc, v int, lvs ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, float64(v), lvs...)
	}
	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	gauge(c.idle, s.Idle)
	gauge(c.borrowed, s.Borrowed)
	gauge(c.maxSize, s.MaxPoolSize)
	gauge(c.minCache, s.MinPoolCache)
	for st := range statusNames {
		v := 0
		if Status(st) == s.Status {
			v = 1
		}
		gauge(c.status, v, Status(st).String())
	}

	counter(c.created, s.Created)
	counter(c.destroyed, s.Destroyed)
	counter(c.replaced, s.Replaced)
	counter(c.refills, s.Refills)
	counter(c.exhausted, s.Exhausted)
}
