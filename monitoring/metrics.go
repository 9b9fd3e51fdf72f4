package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poll_duration_seconds",
			Help:    "Duration of backend poll requests",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"source"},
	)

	pollTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polls_total",
			Help: "Total poll attempts per source",
		},
		[]string{"source", "outcome"},
	)

	activeTickets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_tickets",
			Help: "Active tickets seen in the last poll",
		},
	)

	notifications = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_notifications_total",
			Help: "Queue arrival notifications fired",
		},
	)

	snapshotNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graph_snapshot_nodes",
			Help: "Nodes in the latest graph snapshot per kind",
		},
		[]string{"kind"},
	)
)

// TrackPoll records one poll round trip against a source label
// ("tickets", "claim", "graph").
func TrackPoll(source string, started time.Time, err error) {
	pollDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	pollTotal.WithLabelValues(source, outcome).Inc()
}

func TrackActiveTickets(n int) {
	activeTickets.Set(float64(n))
}

func TrackNotification() {
	notifications.Inc()
}

func TrackSnapshot(mentors, tickets int) {
	snapshotNodes.WithLabelValues("mentor").Set(float64(mentors))
	snapshotNodes.WithLabelValues("ticket").Set(float64(tickets))
}

// Serve exposes /metrics on addr. Blocks, intended for a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
