// Package game defines the boundary to the Leitstellenspiel website: the
// HTTP session endpoints and the rendered mission page. The dispatch core
// only ever talks to these interfaces.
package game

import (
	"context"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// API covers the plain HTTP endpoints of the game.
type API interface {
	// ListOpenMissions returns the current open missions, alliance
	// missions included when enabled.
	ListOpenMissions(ctx context.Context) ([]model.MissionRecord, error)
	// FetchCatalog downloads the bulk mission-type reference feed.
	FetchCatalog(ctx context.Context) ([]model.CatalogEntry, error)
	// FetchHelpText returns the visible text of a mission-type help page.
	FetchHelpText(ctx context.Context, missionTypeID string) (string, error)
	// SetUnitStatus posts an FMS status change for one unit.
	SetUnitStatus(ctx context.Context, unitID string, status int) error
	// Credits reports the current credits balance.
	Credits(ctx context.Context) (int, error)
}

// StatusSetter is the subset of API needed for out-of-service marking.
type StatusSetter interface {
	SetUnitStatus(ctx context.Context, unitID string, status int) error
}

// HelpFetcher is the subset of API needed by the requirement resolver.
type HelpFetcher interface {
	FetchHelpText(ctx context.Context, missionTypeID string) (string, error)
}

// Automation opens rendered mission pages. Implementations wrap whatever
// renders the site (the built-in HTML form client, or a browser driver).
type Automation interface {
	OpenMission(ctx context.Context, missionID string) (Page, error)
}
