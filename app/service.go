// Package app wires the session, catalog, dispatch engine and observers into
// the long-running bot service.
package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/config"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/catalog"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/dispatch"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/dispatch/logging"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/events"
	coremetrics "github.com/RoMaSystems-source/Leitstellenspiel-bot/core/metrics"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/resolve"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/unitstatus"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/metrics"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/notify"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/internal/eventbus"
)

var (
	confirmedColor = color.New(color.FgGreen)
	shortageColor  = color.New(color.FgYellow)
	failedColor    = color.New(color.FgRed)
)

// Service runs the scan-and-dispatch loop.
type Service struct {
	cfg       *config.Config
	session   *game.Session
	catalog   *catalog.Cache
	processor *dispatch.Processor
	store     logging.LogStore
	sink      coremetrics.OutcomeSink
	notifier  *notify.Notifier
	ledger    *unitstatus.MemoryStore

	Missions  *eventbus.Bus[events.MissionEvent]
	Outcomes  *eventbus.Bus[events.OutcomeEvent]
	Shortages *eventbus.Bus[events.ShortageEvent]

	log logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	newLog := func(component string) logger.Logger {
		return logger.NewZerologLogger(component, cfg.Logging.Level)
	}
	log := newLog("service")

	session, err := game.NewSession(cfg.Game, newLog("session"))
	if err != nil {
		return nil, fmt.Errorf("game session: %w", err)
	}

	cache := catalog.New(cfg.Cache.Path, time.Duration(cfg.Cache.MaxAgeHours)*time.Hour, newLog("catalog"))
	if err := cache.Load(); err != nil {
		log.Warnf("catalog cache load: %v", err)
	}

	resolver := resolve.New(cache, session, newLog("resolver"))
	selector := dispatch.NewSelector(cfg.Bot.MaxLoadMoreClicks, newLog("selector"))
	processor := dispatch.NewProcessor(resolver, selector, session, cfg.Bot.AutoSetStatus6OnFail, newLog("processor"))

	store, err := cfg.Logging.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("log store: %w", err)
	}

	var sinks coremetrics.MultiSink
	if cfg.Metrics.Prometheus.Enabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.Influx.Enabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics.Influx))
	}
	var sink coremetrics.OutcomeSink = coremetrics.NopSink{}
	if len(sinks) > 0 {
		sink = sinks
	}

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		return nil, fmt.Errorf("mqtt notifier: %w", err)
	}

	ledger := unitstatus.NewMemoryStore()
	if cfg.Bot.UnitLedgerPath != "" {
		if loaded, err := unitstatus.Load(cfg.Bot.UnitLedgerPath); err != nil {
			log.Warnf("unit ledger load: %v", err)
		} else {
			ledger = loaded
		}
	}

	return &Service{
		cfg:       cfg,
		session:   session,
		catalog:   cache,
		processor: processor,
		store:     store,
		sink:      sink,
		notifier:  notifier,
		ledger:    ledger,
		Missions:  eventbus.New[events.MissionEvent](),
		Outcomes:  eventbus.New[events.OutcomeEvent](),
		Shortages: eventbus.New[events.ShortageEvent](),
		log:       log,
	}, nil
}

// Run signs in and blocks scanning for missions until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.Prometheus.Enabled {
		metrics.StartPromServer(ctx, s.cfg.Metrics.Prometheus.Listen, logger.NewZerologLogger("prom-server", s.cfg.Logging.Level))
	}
	if s.notifier != nil {
		sub := s.Outcomes.Subscribe(8)
		go func() {
			for ev := range sub.C {
				s.notifier.PublishOutcome(ctx, ev)
			}
		}()
	}

	if err := s.session.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if credits, err := s.session.Credits(ctx); err != nil {
		s.log.Warnf("credits probe: %v", err)
	} else {
		s.log.Infof("signed in with %d credits", credits)
	}

	interval := time.Duration(s.cfg.Bot.CheckIntervalSeconds) * time.Second
	for {
		s.runCycle(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// runCycle refreshes the catalog if needed and processes one batch of open
// missions. Per-mission failures are isolated so one broken page cannot end
// the cycle.
func (s *Service) runCycle(ctx context.Context) {
	if s.catalog.Stale() {
		if err := s.catalog.Refresh(ctx, s.session); err != nil {
			s.log.Warnf("catalog refresh: %v", err)
		} else {
			s.log.Infof("catalog refreshed, %d mission types", s.catalog.Len())
		}
	}

	missions, err := s.session.ListOpenMissions(ctx)
	if err != nil {
		s.log.Errorf("list missions: %v", err)
		return
	}
	eligible := selectEligible(missions, s.cfg.Bot.MaxMissionsPerCycle)
	if len(eligible) == 0 {
		s.log.Debugf("no eligible missions")
		return
	}
	s.log.Infof("processing %d of %d open missions", len(eligible), len(missions))

	delay := time.Duration(s.cfg.Bot.DelayBetweenActionsMS) * time.Millisecond
	for i, mission := range eligible {
		if ctx.Err() != nil {
			return
		}
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		s.Missions.Publish(events.MissionEvent{Mission: mission, At: time.Now()})
		s.processOne(ctx, mission)
	}

	if s.cfg.Bot.UnitLedgerPath != "" {
		if err := s.ledger.Save(s.cfg.Bot.UnitLedgerPath); err != nil {
			s.log.Warnf("unit ledger save: %v", err)
		}
	}
}

func (s *Service) processOne(ctx context.Context, mission model.MissionRecord) {
	page, err := s.session.OpenMission(ctx, mission.ID)
	if err != nil {
		s.log.Errorf("open mission %s: %v", mission.ID, err)
		return
	}
	outcome, err := s.processor.ProcessMission(ctx, mission, page)
	if err != nil {
		s.log.Errorf("process mission %s: %v", mission.ID, err)
		return
	}
	s.record(ctx, mission, outcome)
}

func (s *Service) record(ctx context.Context, mission model.MissionRecord, outcome model.Outcome) {
	now := time.Now()
	if err := s.store.Append(ctx, logging.NewLogRecord(mission, outcome, now)); err != nil {
		s.log.Errorf("append log record: %v", err)
	}
	s.sink.RecordOutcome(ctx, coremetrics.Record{
		MissionID:    mission.ID,
		MissionTitle: mission.Title,
		Outcome:      outcome.Kind,
		Committed:    len(outcome.Committed),
		Required:     requiredTotal(outcome.Requirements),
		Source:       outcome.Source,
	})
	for _, id := range outcome.Committed {
		s.ledger.RecordDispatch(id, mission.ID, outcome.Kind.String(), now)
	}
	for _, id := range outcome.OutOfService {
		s.ledger.RecordWithdrawal(id, mission.ID, now)
	}

	s.Outcomes.Publish(events.OutcomeEvent{Mission: mission, Outcome: outcome, At: now})
	if len(outcome.OutOfService) > 0 {
		s.Shortages.Publish(events.ShortageEvent{MissionID: mission.ID, Units: outcome.OutOfService, At: now})
	}
	s.log.Debugw("outcome recorded", map[string]any{
		"mission_id":     mission.ID,
		"outcome":        outcome.Kind.String(),
		"source":         outcome.Source,
		"committed":      len(outcome.Committed),
		"out_of_service": len(outcome.OutOfService),
	})
	s.report(mission, outcome)
}

// report prints one colored line per processed mission for the operator.
func (s *Service) report(mission model.MissionRecord, outcome model.Outcome) {
	switch outcome.Kind {
	case model.OutcomeConfirmed:
		confirmedColor.Printf("✓ %s (%s): dispatched %d units\n", mission.Title, mission.ID, len(outcome.Committed))
	case model.OutcomePersonnelShortage:
		shortageColor.Printf("! %s (%s): personnel shortage, %d units withdrawn\n", mission.Title, mission.ID, len(outcome.OutOfService))
	case model.OutcomeFailed:
		failedColor.Printf("✗ %s (%s): %s\n", mission.Title, mission.ID, outcome.Message)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Missions.Close()
	s.Outcomes.Close()
	s.Shortages.Close()
	s.notifier.Close()
	if err := s.sink.Close(); err != nil {
		s.log.Errorf("sink close: %v", err)
	}
	return s.store.Close()
}

// selectEligible filters missions worth acting on and orders urgent ones
// first. The sort is stable, so the feed order is kept within each class.
func selectEligible(missions []model.MissionRecord, limit int) []model.MissionRecord {
	var eligible []model.MissionRecord
	for _, m := range missions {
		if m.Urgent() || m.HasMissing() {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Urgent() && !eligible[j].Urgent()
	})
	if limit > 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

func requiredTotal(p model.Profile) int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}
