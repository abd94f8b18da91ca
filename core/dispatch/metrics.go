package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	missionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lsb_missions_processed_total",
		Help: "Missions processed, labelled by terminal outcome.",
	}, []string{"outcome"})

	unitsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lsb_units_committed_total",
		Help: "Units committed to dispatch submissions.",
	})

	unitsOutOfService = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lsb_units_out_of_service_total",
		Help: "Units moved to FMS status 6 after failed submissions.",
	})

	requirementSources = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lsb_requirement_source_total",
		Help: "Requirement resolutions, labelled by strategy.",
	}, []string{"source"})

	shortfallTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lsb_requirement_shortfall_total",
		Help: "Required units that could not be matched to any selectable unit.",
	})

	processDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lsb_mission_process_duration_seconds",
		Help:    "Wall time spent processing one mission.",
		Buckets: prometheus.DefBuckets,
	})
)
