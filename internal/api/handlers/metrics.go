package handlers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var analyticsDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "proup_analytics_duration_seconds",
		Help:    "Time spent computing analytics responses",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"report", "outcome"},
)

func observeAnalytics(report string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	analyticsDuration.WithLabelValues(report, outcome).Observe(time.Since(start).Seconds())
}
