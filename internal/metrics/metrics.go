package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lectio_messages_consumed_total",
		Help: "Total messages consumed, by queue and outcome (acked, deferred, requeued, rejected, dead_lettered)",
	}, []string{"queue", "outcome"})

	MessagesPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lectio_messages_published_total",
		Help: "Total messages published, by queue",
	}, []string{"queue"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lectio_stage_duration_seconds",
		Help:    "Duration of pipeline stage handlers",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}, []string{"queue"})

	SweepPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lectio_sweep_publishes_total",
		Help: "Messages re-published by the awaker sweep, by category",
	}, []string{"category"})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lectio_active_workers",
		Help: "Number of workers currently processing a message",
	})
)
