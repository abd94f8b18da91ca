package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/RoMaSystems-source/Leitstellenspiel-bot/core/metrics"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

// PromSink records per-mission outcomes in Prometheus metrics. The process
// metrics of the dispatch engine register themselves; this sink carries the
// outcome-level counters with mission labels.
type PromSink struct {
	outcomes  *prometheus.CounterVec
	committed prometheus.Counter
}

// NewPromSink registers the sink metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lsb_outcomes_total",
		Help: "Mission outcomes by kind and requirement source",
	}, []string{"outcome", "source"})
	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lsb_sink_units_committed_total",
		Help: "Units committed, as seen by the outcome sink",
	})

	if err := reg.Register(outcomes); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			outcomes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(committed); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			committed = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	return &PromSink{outcomes: outcomes, committed: committed}, nil
}

// RecordOutcome increments the outcome counters.
func (s *PromSink) RecordOutcome(_ context.Context, rec coremetrics.Record) {
	s.outcomes.WithLabelValues(rec.Outcome.String(), rec.Source).Inc()
	s.committed.Add(float64(rec.Committed))
}

func (s *PromSink) Close() error { return nil }

// StartPromServer serves the default registry on addr until ctx is done.
func StartPromServer(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics server: %v", err)
		}
	}()
}
