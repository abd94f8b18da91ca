package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/resolve"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
)

// RequirementResolver derives the profile of units a mission still needs.
type RequirementResolver interface {
	Resolve(ctx context.Context, mission model.MissionRecord, page resolve.PageView) (model.Profile, resolve.Source)
}

// Processor runs one mission from requirement resolution through dispatch
// submission and failure recovery.
type Processor struct {
	resolver RequirementResolver
	selector *Selector
	status   game.StatusSetter

	// autoStatusSix moves units of a rejected submission to FMS status 6
	// so the next cycle does not pick the same uncrewed units again.
	autoStatusSix bool

	log logger.Logger
}

func NewProcessor(resolver RequirementResolver, selector *Selector, status game.StatusSetter, autoStatusSix bool, log logger.Logger) *Processor {
	return &Processor{
		resolver:      resolver,
		selector:      selector,
		status:        status,
		autoStatusSix: autoStatusSix,
		log:           log,
	}
}

// ProcessMission resolves, selects, submits and classifies one mission. The
// returned outcome is also counted in the process metrics. An error means
// the mission could not be driven to a terminal state and should be retried.
func (p *Processor) ProcessMission(ctx context.Context, mission model.MissionRecord, page game.Page) (model.Outcome, error) {
	start := time.Now()
	defer func() { processDuration.Observe(time.Since(start).Seconds()) }()

	view := resolve.PageView{
		Body:          page.Body(),
		MissionTypeID: page.MissionTypeID(),
		EnRoute:       page.EnRouteCount(),
		OnScene:       page.OnSceneCount(),
	}
	required, source := p.resolver.Resolve(ctx, mission, view)
	requirementSources.WithLabelValues(string(source)).Inc()
	p.log.Debugw("requirements resolved", map[string]any{
		"mission_id": mission.ID,
		"source":     string(source),
		"required":   required.String(),
	})

	if required.Empty() {
		// Satisfied only when no units are left to pick either. Units still
		// on offer with nothing resolved means the sources came up short.
		if n := dispatchableCount(page.ScanUnits()); n > 0 {
			outcome := model.Outcome{
				Kind:    model.OutcomeFailed,
				Message: "no requirements resolved",
				Source:  string(source),
			}
			missionsProcessed.WithLabelValues(outcome.Kind.String()).Inc()
			p.log.Warnf("mission %s: nothing resolved but %d units selectable, leaving for next cycle", mission.ID, n)
			return outcome, nil
		}
		outcome := model.Outcome{
			Kind:         model.OutcomeAlreadySatisfied,
			Source:       string(source),
			Requirements: required,
		}
		missionsProcessed.WithLabelValues(outcome.Kind.String()).Inc()
		p.log.Debugf("mission %s needs nothing", mission.ID)
		return outcome, nil
	}
	p.log.Infof("mission %s (%s): requires %s via %s", mission.ID, mission.Title, required, source)

	sel, err := p.selector.Select(ctx, page, required)
	if err != nil {
		return model.Outcome{}, fmt.Errorf("select units for mission %s: %w", mission.ID, err)
	}
	for _, n := range sel.Shortfall {
		shortfallTotal.Add(float64(n))
	}

	if sel.Total() == 0 {
		outcome := model.Outcome{
			Kind:         model.OutcomeFailed,
			Message:      "no dispatchable units matched",
			Source:       string(source),
			Requirements: required,
			Shortfall:    sel.Shortfall,
		}
		missionsProcessed.WithLabelValues(outcome.Kind.String()).Inc()
		p.log.Warnf("mission %s: no dispatchable units for %s", mission.ID, required)
		return outcome, nil
	}

	if err := page.Submit(ctx); err != nil {
		return model.Outcome{}, fmt.Errorf("submit mission %s: %w", mission.ID, err)
	}
	unitsCommitted.Add(float64(sel.Total()))

	indicator := page.ReadOutcome()
	outcome := model.Outcome{
		Kind:         classifyOutcome(indicator),
		Message:      indicator.Text,
		Source:       string(source),
		Requirements: required,
		Committed:    sel.CommittedIDs,
		Shortfall:    sel.Shortfall,
	}

	switch outcome.Kind {
	case model.OutcomePersonnelShortage:
		outcome.OutOfService = p.withdrawUnits(ctx, page, sel.CommittedIDs)
		p.log.Warnf("mission %s: personnel shortage, %d units withdrawn", mission.ID, len(outcome.OutOfService))
	case model.OutcomeConfirmed:
		// Units the game left selected were not actually dispatched,
		// usually because their crew did not muster.
		if stuck, err := page.SelectedUnitIDs(ctx); err == nil && len(stuck) > 0 {
			p.log.Warnf("mission %s: confirmed but %d units stayed behind", mission.ID, len(stuck))
			outcome.OutOfService = p.setOutOfService(ctx, stuck)
		}
	}

	missionsProcessed.WithLabelValues(outcome.Kind.String()).Inc()
	return outcome, nil
}

func dispatchableCount(units []model.SelectableUnit) int {
	n := 0
	for _, u := range units {
		if u.Dispatchable() {
			n++
		}
	}
	return n
}

// withdrawUnits moves the units of a failed submission to status 6. It
// prefers the live still-selected list over the committed one and keeps
// going when individual status calls fail.
func (p *Processor) withdrawUnits(ctx context.Context, page game.Page, committed []string) []string {
	if !p.autoStatusSix || p.status == nil {
		return nil
	}
	ids, err := page.SelectedUnitIDs(ctx)
	if err != nil || len(ids) == 0 {
		if err != nil {
			p.log.Warnf("re-reading selected units: %v", err)
		}
		ids = committed
	}
	return p.setOutOfService(ctx, ids)
}

// setOutOfService posts the status change per unit and keeps going when
// individual calls fail.
func (p *Processor) setOutOfService(ctx context.Context, ids []string) []string {
	if !p.autoStatusSix || p.status == nil {
		return nil
	}
	var done []string
	for _, id := range ids {
		if err := p.status.SetUnitStatus(ctx, id, model.StatusOutOfService); err != nil {
			p.log.Errorf("unit %s: set status %d: %v", id, model.StatusOutOfService, err)
			continue
		}
		done = append(done, id)
	}
	unitsOutOfService.Add(float64(len(done)))
	return done
}
