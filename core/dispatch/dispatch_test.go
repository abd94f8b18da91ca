package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/resolve"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

// fakePage implements game.Page in memory. Hidden units become visible one
// batch per LoadMoreUnits call, matching the paginated unit list.
type fakePage struct {
	body      string
	typeID    string
	enRoute   int
	onScene   int
	units     []model.SelectableUnit
	hidden    [][]model.SelectableUnit
	committed []string
	submitted bool
	submitErr error
	indicator game.OutcomeIndicator
	// stillSelected is what SelectedUnitIDs reports after Submit.
	stillSelected []string
	selectedErr   error
}

func unit(id string, tags ...string) model.SelectableUnit {
	u := model.SelectableUnit{ID: id, Name: "unit " + id, Tags: map[string]bool{}, State: model.UnitAvailable}
	for _, t := range tags {
		u.Tags[t] = true
	}
	return u
}

func (f *fakePage) Body() string          { return f.body }
func (f *fakePage) MissionTypeID() string { return f.typeID }
func (f *fakePage) EnRouteCount() int     { return f.enRoute }
func (f *fakePage) OnSceneCount() int     { return f.onScene }

func (f *fakePage) LoadMoreUnits(context.Context) (bool, error) {
	if len(f.hidden) == 0 {
		return false, nil
	}
	f.units = append(f.units, f.hidden[0]...)
	f.hidden = f.hidden[1:]
	return true, nil
}

func (f *fakePage) ScanUnits() []model.SelectableUnit {
	out := make([]model.SelectableUnit, len(f.units))
	copy(out, f.units)
	for i := range out {
		for _, id := range f.committed {
			if out[i].ID == id {
				out[i].Selected = true
			}
		}
	}
	return out
}

func (f *fakePage) CommitUnit(_ context.Context, unitID string) error {
	for _, id := range f.committed {
		if id == unitID {
			return fmt.Errorf("unit %s already committed", unitID)
		}
	}
	f.committed = append(f.committed, unitID)
	return nil
}

func (f *fakePage) Submit(context.Context) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = true
	return nil
}

func (f *fakePage) ReadOutcome() game.OutcomeIndicator { return f.indicator }

func (f *fakePage) SelectedUnitIDs(context.Context) ([]string, error) {
	return f.stillSelected, f.selectedErr
}

type stubResolver struct {
	profile model.Profile
	source  resolve.Source
}

func (s stubResolver) Resolve(context.Context, model.MissionRecord, resolve.PageView) (model.Profile, resolve.Source) {
	return s.profile.Clone(), s.source
}

type recordingStatus struct {
	calls map[string]int
	fail  map[string]bool
}

func newRecordingStatus() *recordingStatus {
	return &recordingStatus{calls: map[string]int{}, fail: map[string]bool{}}
}

func (r *recordingStatus) SetUnitStatus(_ context.Context, unitID string, status int) error {
	if r.fail[unitID] {
		return errors.New("status rejected")
	}
	r.calls[unitID] = status
	return nil
}

func selector() *Selector { return NewSelector(50, logger.NopLogger{}) }

func TestSelectFirstMatchInPageOrder(t *testing.T) {
	page := &fakePage{units: []model.SelectableUnit{
		unit("1", "ambulance"),
		unit("2", "lf_only"),
		unit("3", "lf_only"),
	}}
	sel, err := selector().Select(context.Background(), page, model.Profile{model.CatLF: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 1 || sel.CommittedIDs[0] != "2" {
		t.Fatalf("committed %v, want first matching unit 2", sel.CommittedIDs)
	}
	if len(sel.Shortfall) != 0 {
		t.Fatalf("unexpected shortfall %v", sel.Shortfall)
	}
}

func TestSelectNeverCommitsSameUnitTwice(t *testing.T) {
	// One unit carries tags for both required categories.
	page := &fakePage{units: []model.SelectableUnit{
		unit("1", "lf_only", "dlk"),
	}}
	sel, err := selector().Select(context.Background(), page, model.Profile{model.CatLF: 1, model.CatDLK: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 1 {
		t.Fatalf("committed %v, want a single commit", sel.CommittedIDs)
	}
	if len(sel.Shortfall) != 1 {
		t.Fatalf("shortfall %v, want one unfilled category", sel.Shortfall)
	}
}

func TestSelectSkipsSelectedAndOutOfService(t *testing.T) {
	busy := unit("1", "lf_only")
	busy.Selected = true
	down := unit("2", "lf_only")
	down.State = model.UnitOutOfService
	rolling := unit("4", "lf_only")
	rolling.State = model.UnitEnRoute
	page := &fakePage{units: []model.SelectableUnit{busy, down, rolling, unit("3", "lf_only")}}

	sel, err := selector().Select(context.Background(), page, model.Profile{model.CatLF: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 1 || sel.CommittedIDs[0] != "3" {
		t.Fatalf("committed %v, want only unit 3", sel.CommittedIDs)
	}
}

func TestSelectFallbackOnlyForShortfall(t *testing.T) {
	page := &fakePage{units: []model.SelectableUnit{
		unit("1", "patient_transport"),
		unit("2", "ambulance"),
		unit("3", "ambulance"),
	}}
	sel, err := selector().Select(context.Background(), page, model.Profile{model.CatKTW: 2})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 2 {
		t.Fatalf("committed %v, want 2", sel.CommittedIDs)
	}
	// Direct match first, then one substitute; never more than required.
	if sel.CommittedIDs[0] != "1" || sel.CommittedIDs[1] != "2" {
		t.Fatalf("committed %v, want [1 2]", sel.CommittedIDs)
	}
	if sel.Committed[model.CatKTW] != 2 {
		t.Fatalf("committed profile %v, want 2 accounted as KTW", sel.Committed)
	}
}

func TestSelectLoadsMoreUnits(t *testing.T) {
	page := &fakePage{
		units:  []model.SelectableUnit{unit("1", "ambulance")},
		hidden: [][]model.SelectableUnit{{unit("2", "lf_only")}},
	}
	sel, err := selector().Select(context.Background(), page, model.Profile{model.CatLF: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 1 || sel.CommittedIDs[0] != "2" {
		t.Fatalf("committed %v, want paginated unit 2", sel.CommittedIDs)
	}
}

func TestSelectLoadMoreBounded(t *testing.T) {
	// Endless pagination that never reveals a matching unit.
	var batches [][]model.SelectableUnit
	for i := 0; i < 100; i++ {
		batches = append(batches, []model.SelectableUnit{unit(fmt.Sprintf("f%d", i), "fustw")})
	}
	page := &fakePage{hidden: batches}
	s := NewSelector(3, logger.NopLogger{})
	sel, err := s.Select(context.Background(), page, model.Profile{model.CatLF: 1})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Total() != 0 {
		t.Fatalf("committed %v, want none", sel.CommittedIDs)
	}
	if len(page.units) > 3 {
		t.Fatalf("pagination ran %d batches past the bound", len(page.units))
	}
	if sel.Shortfall[model.CatLF] != 1 {
		t.Fatalf("shortfall %v", sel.Shortfall)
	}
}

func processor(r RequirementResolver, status game.StatusSetter, auto bool) *Processor {
	return NewProcessor(r, selector(), status, auto, logger.NopLogger{})
}

func TestProcessMissionConfirmed(t *testing.T) {
	page := &fakePage{units: []model.SelectableUnit{unit("1", "lf_only"), unit("2", "lf_only")}}
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 2}, source: resolve.SourceMissingText}, nil, false)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomeConfirmed {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	if !page.submitted {
		t.Fatal("page was never submitted")
	}
	if len(outcome.Committed) != 2 {
		t.Fatalf("committed %v", outcome.Committed)
	}
	if outcome.Source != string(resolve.SourceMissingText) {
		t.Fatalf("source = %q", outcome.Source)
	}
}

func TestProcessMissionAlreadySatisfied(t *testing.T) {
	enRoute := unit("1", "lf_only")
	enRoute.State = model.UnitEnRoute
	page := &fakePage{units: []model.SelectableUnit{enRoute}}
	p := processor(stubResolver{profile: model.NewProfile(), source: resolve.SourceNone}, nil, false)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomeAlreadySatisfied {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	if page.submitted {
		t.Fatal("nothing was required but the form was submitted")
	}
}

func TestProcessMissionUnresolvedWithUnitsLeftIsFailed(t *testing.T) {
	page := &fakePage{units: []model.SelectableUnit{unit("1", "lf_only")}}
	p := processor(stubResolver{profile: model.NewProfile(), source: resolve.SourceNone}, nil, false)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomeFailed {
		t.Fatalf("kind = %v, want failed while units are still selectable", outcome.Kind)
	}
	if page.submitted {
		t.Fatal("nothing was resolved but the form was submitted")
	}
}

func TestProcessMissionNoUnitsIsFailed(t *testing.T) {
	page := &fakePage{units: []model.SelectableUnit{unit("1", "fustw")}}
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 1}, source: resolve.SourceCatalog}, nil, false)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomeFailed {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	if page.submitted {
		t.Fatal("empty selection must not be submitted")
	}
	if outcome.Shortfall[model.CatLF] != 1 {
		t.Fatalf("shortfall %v", outcome.Shortfall)
	}
}

func TestProcessMissionPersonnelShortageWithdrawsUnits(t *testing.T) {
	page := &fakePage{
		units:         []model.SelectableUnit{unit("1", "lf_only"), unit("2", "lf_only")},
		indicator:     game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "Es steht nicht genügend Personal bereit"},
		stillSelected: []string{"1", "2"},
	}
	status := newRecordingStatus()
	status.fail["1"] = true
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 2}, source: resolve.SourceMissingText}, status, true)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomePersonnelShortage {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	// One status call failed, the other still went through.
	if len(outcome.OutOfService) != 1 || outcome.OutOfService[0] != "2" {
		t.Fatalf("out of service %v", outcome.OutOfService)
	}
	if status.calls["2"] != model.StatusOutOfService {
		t.Fatalf("unit 2 status = %d", status.calls["2"])
	}
}

func TestProcessMissionShortageFallsBackToCommittedIDs(t *testing.T) {
	page := &fakePage{
		units:       []model.SelectableUnit{unit("1", "lf_only")},
		indicator:   game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "fehlendes Personal"},
		selectedErr: errors.New("page gone"),
	}
	status := newRecordingStatus()
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 1}, source: resolve.SourceMissingText}, status, true)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if len(outcome.OutOfService) != 1 || outcome.OutOfService[0] != "1" {
		t.Fatalf("out of service %v, want the committed unit", outcome.OutOfService)
	}
}

func TestProcessMissionShortageRespectsKillSwitch(t *testing.T) {
	page := &fakePage{
		units:         []model.SelectableUnit{unit("1", "lf_only")},
		indicator:     game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "ohne Personal"},
		stillSelected: []string{"1"},
	}
	status := newRecordingStatus()
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 1}, source: resolve.SourceMissingText}, status, false)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if len(outcome.OutOfService) != 0 || len(status.calls) != 0 {
		t.Fatalf("status changes happened despite disabled flag: %v", status.calls)
	}
}

func TestProcessMissionConfirmedReconcilesStuckUnits(t *testing.T) {
	page := &fakePage{
		units:         []model.SelectableUnit{unit("1", "lf_only"), unit("2", "lf_only")},
		stillSelected: []string{"2"},
	}
	status := newRecordingStatus()
	p := processor(stubResolver{profile: model.Profile{model.CatLF: 2}, source: resolve.SourceMissingText}, status, true)

	outcome, err := p.ProcessMission(context.Background(), model.MissionRecord{ID: "5"}, page)
	if err != nil {
		t.Fatalf("ProcessMission: %v", err)
	}
	if outcome.Kind != model.OutcomeConfirmed {
		t.Fatalf("kind = %v", outcome.Kind)
	}
	if len(outcome.OutOfService) != 1 || outcome.OutOfService[0] != "2" {
		t.Fatalf("out of service %v, want the stuck unit", outcome.OutOfService)
	}
}

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		ind  game.OutcomeIndicator
		want model.OutcomeKind
	}{
		{game.OutcomeIndicator{Kind: game.IndicatorNone}, model.OutcomeConfirmed},
		{game.OutcomeIndicator{Kind: game.IndicatorSuccess, Text: "Alarmiert"}, model.OutcomeConfirmed},
		{game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "Nicht genug Personal"}, model.OutcomePersonnelShortage},
		{game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "Keine passende Ausbildung vorhanden"}, model.OutcomePersonnelShortage},
		{game.OutcomeIndicator{Kind: game.IndicatorFailure, Text: "Einsatz bereits beendet"}, model.OutcomeFailed},
	}
	for _, tc := range cases {
		if got := classifyOutcome(tc.ind); got != tc.want {
			t.Fatalf("classifyOutcome(%q) = %v, want %v", tc.ind.Text, got, tc.want)
		}
	}
}
