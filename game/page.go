package game

import (
	"context"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// IndicatorKind classifies the alert box rendered after a dispatch
// submission.
type IndicatorKind int

const (
	IndicatorNone IndicatorKind = iota
	IndicatorSuccess
	IndicatorFailure
)

// OutcomeIndicator is the submission feedback read from the page. Most
// successful submissions render no indicator at all.
type OutcomeIndicator struct {
	Kind IndicatorKind
	Text string
}

// Page is one rendered mission page. Unit handles returned by ScanUnits are
// only valid until the next mutating call; callers must re-scan after every
// commit. That is a hard invariant of the page, not an implementation detail.
type Page interface {
	// Body returns the visible page text.
	Body() string
	// MissionTypeID extracts the catalog type id from the help link, or "".
	MissionTypeID() string
	// EnRouteCount and OnSceneCount report units already handling the
	// mission.
	EnRouteCount() int
	OnSceneCount() int
	// LoadMoreUnits performs one pagination step of the unit list. It
	// returns false once no further units can be loaded.
	LoadMoreUnits(ctx context.Context) (bool, error)
	// ScanUnits returns a fresh snapshot of the selectable unit list.
	ScanUnits() []model.SelectableUnit
	// CommitUnit marks the unit for dispatch.
	CommitUnit(ctx context.Context, unitID string) error
	// Submit sends the dispatch form.
	Submit(ctx context.Context) error
	// ReadOutcome inspects the post-submission page state.
	ReadOutcome() OutcomeIndicator
	// SelectedUnitIDs re-inspects the live page for units still marked
	// selected, i.e. not actually dispatched.
	SelectedUnitIDs(ctx context.Context) ([]string, error)
}
