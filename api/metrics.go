/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tomoncle/commit-today/database"
)

// Metrics owns a private registry so several routers can live in one process.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the HTTP collectors and, when stats is non-nil, gauges
// over the database pool.
func NewMetrics(stats func() *database.DBStats) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commit_today_http_requests_total",
				Help: "Number of HTTP requests served.",
			},
			[]string{"method", "route", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "commit_today_http_response_duration_seconds",
				Help:    "How long requests are taking to be served.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if stats != nil {
		gauge := func(name, help string, value func(*database.DBStats) float64) prometheus.GaugeFunc {
			return prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{Name: name, Help: help},
				func() float64 { return value(stats()) },
			)
		}
		m.registry.MustRegister(
			gauge("commit_today_db_open_connections", "Open database connections.",
				func(s *database.DBStats) float64 { return float64(s.OpenConns) }),
			gauge("commit_today_db_in_use_connections", "Database connections in use.",
				func(s *database.DBStats) float64 { return float64(s.InUse) }),
			gauge("commit_today_db_idle_connections", "Idle database connections.",
				func(s *database.DBStats) float64 { return float64(s.Idle) }),
			gauge("commit_today_db_wait_count", "Connections waited for.",
				func(s *database.DBStats) float64 { return float64(s.WaitCount) }),
		)
	}
	return m
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
