package obs

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalcRunsTotal counts calculation pipeline runs by outcome.
	CalcRunsTotal *prometheus.CounterVec
	// CalcDuration records calculation run latency in milliseconds.
	CalcDuration prometheus.Histogram
	// SolveTotal counts target discount solver transitions by kind.
	SolveTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalcRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calc_runs_total",
			Help:      "Count of quote calculation runs by result.",
		}, []string{"result"})
		CalcDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calc_duration_ms",
			Help:      "Latency of quote calculation runs in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		SolveTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spr_solve_total",
			Help:      "Count of target discount solver transitions by kind.",
		}, []string{"transition"})

		mustRegisterCollector(reg, CalcRunsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CalcRunsTotal = v
			}
		})
		mustRegisterCollector(reg, CalcDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				CalcDuration = v
			}
		})
		mustRegisterCollector(reg, SolveTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				SolveTotal = v
			}
		})
	})
}

// ObserveCalcRun records one calculation run outcome. Safe to call before
// registration; unregistered collectors are skipped.
func ObserveCalcRun(degraded bool, duration time.Duration) {
	if CalcRunsTotal != nil {
		result := "ok"
		if degraded {
			result = "degraded"
		}
		CalcRunsTotal.WithLabelValues(result).Inc()
	}
	if CalcDuration != nil {
		CalcDuration.Observe(DurationMillis(duration))
	}
}

// ObserveSolve records one solver transition.
func ObserveSolve(transition string) {
	if SolveTotal != nil {
		SolveTotal.WithLabelValues(transition).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
