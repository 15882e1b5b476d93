// Package metrics exposes prometheus collectors fed by the backup
// package's Observer callbacks, grounded on the teacher's
// promSecsPerState/promBytesReplicated pair
// (internal/replication/logic/replication_logic.go).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aryonoco/btrbak/internal/backup"
)

// Collectors holds one job's metrics. Each job gets its own Collectors
// registered with a "job" label so a single process running multiple
// jobs reports distinct series.
type Collectors struct {
	job string

	runsTotal        *prometheus.CounterVec
	bytesTransferred prometheus.Counter
	runDuration      prometheus.Histogram
	lastRunSuccess   prometheus.Gauge
}

// New builds the collector set for jobName. Call Register to attach it
// to a prometheus.Registerer.
func New(jobName string) *Collectors {
	return &Collectors{
		job: jobName,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "btrbak_runs_total",
			Help: "Total backup runs, labeled by outcome.",
		}, []string{"job", "outcome"}),
		bytesTransferred: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "btrbak_bytes_transferred_total",
			Help:        "Cumulative bytes observed flowing through the transfer pipeline.",
			ConstLabels: prometheus.Labels{"job": jobName},
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "btrbak_run_duration_seconds",
			Help:        "Wall-clock duration of completed backup runs.",
			ConstLabels: prometheus.Labels{"job": jobName},
			Buckets:     prometheus.ExponentialBuckets(1, 2, 16),
		}),
		lastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "btrbak_last_run_success",
			Help:        "1 if the most recent run for this job succeeded, 0 otherwise.",
			ConstLabels: prometheus.Labels{"job": jobName},
		}),
	}
}

// Register attaches every collector to reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.runsTotal, c.bytesTransferred, c.runDuration, c.lastRunSuccess} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// RecordOutcome updates the run-level gauges/counters after a run
// completes; call this once per Run invocation, not per progress tick.
func (c *Collectors) RecordOutcome(success bool, duration time.Duration) {
	outcome := "failure"
	successVal := 0.0
	if success {
		outcome = "success"
		successVal = 1.0
	}
	c.runsTotal.WithLabelValues(c.job, outcome).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.lastRunSuccess.Set(successVal)
}

// observingWrapper wraps an existing Observer so that every progress
// tick also feeds the bytes-transferred counter, without the
// orchestrator needing to know metrics exist.
type observingWrapper struct {
	backup.Observer
	c             *Collectors
	lastBytesSeen uint64
}

func (c *Collectors) Wrap(inner backup.Observer) backup.Observer {
	if inner == nil {
		inner = backup.NoopObserver{}
	}
	return &observingWrapper{Observer: inner, c: c}
}

func (w *observingWrapper) OnProgress(bytesTransferred, totalEstimated uint64, throughputBps float64, elapsed, eta time.Duration) {
	if bytesTransferred > w.lastBytesSeen {
		w.c.bytesTransferred.Add(float64(bytesTransferred - w.lastBytesSeen))
	}
	w.lastBytesSeen = bytesTransferred
	w.Observer.OnProgress(bytesTransferred, totalEstimated, throughputBps, elapsed, eta)
}
