// Package metrics defines the sink abstraction dispatch outcomes are
// published through. Concrete sinks live under infra/metrics.
package metrics

import (
	"context"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// Config selects and parameterizes the outcome sinks.
type Config struct {
	Prometheus PrometheusConfig `json:"prometheus"`
	Influx     InfluxConfig     `json:"influx"`
}

type PrometheusConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}

type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

func (c *Config) SetDefaults() {
	if c.Prometheus.Listen == "" {
		c.Prometheus.Listen = ":9512"
	}
}

// Record is one finished dispatch attempt as seen by observability.
type Record struct {
	MissionID    string
	MissionTitle string
	Outcome      model.OutcomeKind
	Committed    int
	Required     int
	Source       string
}

// OutcomeSink receives one Record per processed mission.
type OutcomeSink interface {
	RecordOutcome(ctx context.Context, rec Record)
	Close() error
}

// NopSink drops everything.
type NopSink struct{}

func (NopSink) RecordOutcome(context.Context, Record) {}
func (NopSink) Close() error                          { return nil }

// MultiSink fans a record out to several sinks.
type MultiSink []OutcomeSink

func (m MultiSink) RecordOutcome(ctx context.Context, rec Record) {
	for _, s := range m {
		s.RecordOutcome(ctx, rec)
	}
}

func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
