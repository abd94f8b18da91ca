package resolve

import (
	"context"
	"strings"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/parser"
)

// Source names the strategy that produced a requirement profile.
type Source string

const (
	SourceMissingText Source = "missing_text"
	SourcePageText    Source = "page_text"
	SourceCatalog     Source = "catalog"
	SourceHelpPage    Source = "help_page"
	SourceTitle       Source = "title"
	SourceNone        Source = "none"
)

// Catalog is the mission-type lookup the resolver consults.
type Catalog interface {
	Entry(missionTypeID string) (model.CatalogEntry, bool)
	Requirements(missionTypeID string) model.Profile
}

// HelpFetcher loads the public help page text for a mission type.
type HelpFetcher interface {
	FetchHelpText(ctx context.Context, missionTypeID string) (string, error)
}

// PageView carries the page-derived facts the resolver needs, decoupled from
// how the page is rendered.
type PageView struct {
	Body          string
	MissionTypeID string
	EnRoute       int
	OnScene       int
}

// phrases that introduce the missing-vehicles line on the mission page.
var pageTextMarkers = []string{
	"wir benötigen",
	"benötigte fahrzeuge",
	"zusätzlich benötigte fahrzeuge",
}

// section boundary markers on the help page. Parsing of the minimum
// requirements table stops at the first of these.
var helpStopMarkers = []string{
	"weitere",
	"einsatzvarianten",
	"wahrscheinlichkeit",
	"voraussetzung",
}

var (
	medicalKeywords = []string{"notarzt", "reanimation", "herzinfarkt", "verletzt", "bewusstlos", "krankentransport"}
	policeKeywords  = []string{"raub", "einbruch", "diebstahl", "schlägerei", "randalierer", "ruhestörung", "demonstration"}
	fireKeywords    = []string{"brand", "feuer", "rauch", "explosion"}
)

// Resolver derives the vehicle profile a mission needs. It walks a fixed
// chain of strategies from the most to the least specific source and stops
// at the first one that yields a profile.
type Resolver struct {
	catalog Catalog
	help    HelpFetcher
	log     logger.Logger
}

func New(catalog Catalog, help HelpFetcher, log logger.Logger) *Resolver {
	return &Resolver{catalog: catalog, help: help, log: log}
}

// Resolve computes the requirement profile for one mission. The returned
// profile already includes the patient transport floor. An empty profile
// with SourceNone means the mission needs nothing the caller can act on.
func (r *Resolver) Resolve(ctx context.Context, mission model.MissionRecord, page PageView) (model.Profile, Source) {
	profile, source := r.resolve(ctx, mission, page)
	// Confirmed patients always need enough transport capacity, whatever
	// the textual sources said.
	if n := mission.PatientCount(); n > 0 {
		if profile == nil {
			profile = model.NewProfile()
		}
		profile.Raise(model.CatRTW, n)
		if source == SourceNone {
			source = SourceTitle
		}
	}
	if profile == nil {
		profile = model.NewProfile()
	}
	return profile, source
}

func (r *Resolver) resolve(ctx context.Context, mission model.MissionRecord, page PageView) (model.Profile, Source) {
	if mission.HasMissing() {
		if p := parser.Parse(mission.MissingText); !p.Empty() {
			return p, SourceMissingText
		}
	}

	if p := parsePageText(page.Body); !p.Empty() {
		return p, SourcePageText
	}

	typeID := page.MissionTypeID
	if typeID == "" {
		typeID = mission.MissionTypeID
	}

	if typeID != "" && r.catalog != nil {
		if _, ok := r.catalog.Entry(typeID); ok {
			// A known catalog entry is authoritative even when it
			// resolves to nothing.
			return r.catalog.Requirements(typeID), SourceCatalog
		}
	}

	if typeID != "" && r.help != nil {
		text, err := r.help.FetchHelpText(ctx, typeID)
		if err != nil {
			r.log.Warnf("help page for mission type %s: %v", typeID, err)
		} else if p := parseHelpText(text); !p.Empty() {
			return p, SourceHelpPage
		}
	}

	// Guessing from the title is only safe while nothing has been sent
	// yet. Once units are en route or on scene the remaining need is
	// unknown and sending a generic response would over-dispatch.
	if page.EnRoute+page.OnScene == 0 {
		return classifyTitle(mission.Title), SourceTitle
	}

	return model.NewProfile(), SourceNone
}

// parsePageText scans the page body for the missing-vehicles line and parses
// the first one that yields a profile.
func parsePageText(body string) model.Profile {
	for _, line := range strings.Split(body, "\n") {
		lower := strings.ToLower(line)
		for _, marker := range pageTextMarkers {
			if !strings.Contains(lower, marker) {
				continue
			}
			if p := parser.Parse(line); !p.Empty() {
				return p
			}
		}
	}
	return model.NewProfile()
}

// parseHelpText extracts the minimum requirements section of a help page.
// Counts are listed one vehicle type per line and may repeat across mission
// expansion stages, so the highest count per type wins.
func parseHelpText(text string) model.Profile {
	profile := model.NewProfile()
	inSection := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if !inSection {
			if strings.Contains(lower, "mindestanforderung") {
				inSection = true
			}
			continue
		}
		if stopsHelpSection(lower) {
			break
		}
		for cat, n := range parser.Parse(trimmed) {
			profile.Raise(cat, n)
		}
	}
	return profile
}

func stopsHelpSection(lower string) bool {
	for _, marker := range helpStopMarkers {
		if strings.HasPrefix(lower, marker) {
			return true
		}
	}
	return false
}

// classifyTitle maps a mission title to a minimal default response.
func classifyTitle(title string) model.Profile {
	lower := strings.ToLower(title)
	profile := model.NewProfile()
	switch {
	case containsAny(lower, medicalKeywords):
		profile.Set(model.CatRTW, 1)
		profile.Set(model.CatNEF, 1)
	case containsAny(lower, policeKeywords):
		profile.Set(model.CatFuStW, 1)
	case containsAny(lower, fireKeywords):
		profile.Set(model.CatLF, 1)
	default:
		profile.Set(model.CatLF, 1)
	}
	return profile
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
