package activity

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultPersisted = "persisted"
	resultFailed    = "failed"
	resultDropped   = "dropped"
	resultSkipped   = "skipped"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shophub_activity_records_total",
		Help: "Activity records by outcome (persisted, failed, dropped, skipped)",
	}, []string{"result"})

	writeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shophub_activity_write_duration_seconds",
		Help:    "Time spent persisting one activity record",
		Buckets: prometheus.DefBuckets,
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shophub_activity_queue_depth",
		Help: "Activity records waiting to be persisted",
	})

	prunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shophub_activity_pruned_total",
		Help: "Activity records removed by retention",
	})
)
