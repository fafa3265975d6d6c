package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TransfersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transfers_total",
			Help: "Total successful transfers",
		},
	)
	TransfersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transfers_failed_total",
			Help: "Total failed transfers",
		},
		[]string{"reason"},
	)

	ReversalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reversals_total",
			Help: "Total reversal resolutions",
		},
		[]string{"status"}, // approved|rejected
	)

	BalanceConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "balance_conflicts_total",
			Help: "Guarded balance writes that lost a race and were retried",
		},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(TransfersTotal)
		prometheus.MustRegister(TransfersFailed)
		prometheus.MustRegister(ReversalsTotal)
		prometheus.MustRegister(BalanceConflicts)
		prometheus.MustRegister(WorkerQueueDepth)
	})
}
