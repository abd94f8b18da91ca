package dispatch

import (
	"context"
	"fmt"
	"sort"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/match"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
)

// Selection is the result of matching a requirement profile against the
// selectable unit list of one mission page.
type Selection struct {
	// Committed counts satisfied requirements per requested category.
	// A fallback unit counts toward the category it substituted for.
	Committed model.Profile
	// CommittedIDs lists the committed units in commit order.
	CommittedIDs []string
	// Shortfall counts requirements no unit could satisfy.
	Shortfall map[model.Category]int
}

func (s Selection) Total() int { return len(s.CommittedIDs) }

// Selector picks units off a mission page for a requirement profile. Unit
// handles go stale after every commit, so the page is re-scanned between
// commits and a unit is only ever committed once.
type Selector struct {
	maxLoadMore int
	log         logger.Logger
}

func NewSelector(maxLoadMore int, log logger.Logger) *Selector {
	if maxLoadMore <= 0 {
		maxLoadMore = 50
	}
	return &Selector{maxLoadMore: maxLoadMore, log: log}
}

// Select commits units for the required profile. Categories are walked in
// deterministic order and units in page order, first match wins. A category
// with too few direct matches is topped up from its fallback category before
// it is recorded as shortfall.
func (s *Selector) Select(ctx context.Context, page game.Page, required model.Profile) (Selection, error) {
	sel := Selection{
		Committed: model.NewProfile(),
		Shortfall: map[model.Category]int{},
	}
	loadMores := 0

	cats := make([]model.Category, 0, len(required))
	for c := range required {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, cat := range cats {
		need := required[cat]
		got, err := s.commitMatching(ctx, page, cat, cat, need, &sel, &loadMores)
		if err != nil {
			return sel, err
		}
		if got < need {
			if fb, ok := match.FallbackFor(cat); ok {
				extra, err := s.commitMatching(ctx, page, fb, cat, need-got, &sel, &loadMores)
				if err != nil {
					return sel, err
				}
				if extra > 0 {
					s.log.Infof("substituted %d %s for %s", extra, fb, cat)
				}
				got += extra
			}
		}
		if got < need {
			sel.Shortfall[cat] = need - got
		}
	}
	return sel, nil
}

// commitMatching commits up to want units matching scanCat, accounting them
// under recordCat. It paginates the unit list when the visible units are
// exhausted.
func (s *Selector) commitMatching(ctx context.Context, page game.Page, scanCat, recordCat model.Category, want int, sel *Selection, loadMores *int) (int, error) {
	committed := 0
	for committed < want {
		unit, found := firstMatch(page.ScanUnits(), scanCat)
		if !found {
			if *loadMores >= s.maxLoadMore {
				break
			}
			more, err := page.LoadMoreUnits(ctx)
			if err != nil {
				return committed, fmt.Errorf("load more units: %w", err)
			}
			if !more {
				break
			}
			*loadMores++
			continue
		}
		if err := page.CommitUnit(ctx, unit.ID); err != nil {
			return committed, fmt.Errorf("commit unit %s: %w", unit.ID, err)
		}
		committed++
		sel.Committed.Add(recordCat, 1)
		sel.CommittedIDs = append(sel.CommittedIDs, unit.ID)
		s.log.Debugf("committed unit %s (%s) as %s", unit.ID, unit.Name, recordCat)
	}
	return committed, nil
}

func firstMatch(units []model.SelectableUnit, cat model.Category) (model.SelectableUnit, bool) {
	for _, u := range units {
		if u.Dispatchable() && match.UnitMatches(u, cat) {
			return u, true
		}
	}
	return model.SelectableUnit{}, false
}
