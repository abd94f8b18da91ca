package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/RoMaSystems-source/Leitstellenspiel-bot/core/metrics"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

// InfluxSink writes dispatch outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails, so a dead endpoint cannot take the
// dispatch loop down with it.
func NewInfluxSinkWithFallback(cfg coremetrics.InfluxConfig) coremetrics.OutcomeSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOutcome writes one outcome as a point. Write failures are logged,
// not propagated.
func (s *InfluxSink) RecordOutcome(ctx context.Context, rec coremetrics.Record) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("mission_outcome").
		AddTag("mission_id", rec.MissionID).
		AddTag("outcome", rec.Outcome.String()).
		AddTag("source", rec.Source).
		AddTag("component", "dispatch_loop").
		AddField("committed", rec.Committed).
		AddField("required", rec.Required).
		AddField("title", rec.MissionTitle).
		SetTime(time.Now())
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		s.log.Errorf("influx write for mission %s: %v", rec.MissionID, err)
	}
}

// Close shuts the client down.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}
