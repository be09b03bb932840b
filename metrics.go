package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "gridcore"

var (
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "calculations_total",
		Help:      "Cell calculations by outcome.",
	}, []string{"status"})

	calculationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "calculation_duration_seconds",
		Help:      "Wall time of recalculation runs.",
		Buckets:   prometheus.DefBuckets,
	})

	cellEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "cell_events_total",
		Help:      "Cell calculated events published.",
	})

	storedCells = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "stored_cells",
		Help:      "Cells currently in the store.",
	})

	cachedCells = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "cached_cells",
		Help:      "Calculation results currently cached.",
	})

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "ws_clients",
		Help:      "Connected websocket clients.",
	})
)

func observeGridSize() {
	if store != nil {
		storedCells.Set(float64(store.Count()))
	}
	if calculator != nil {
		cachedCells.Set(float64(calculator.CacheSize()))
	}
}
