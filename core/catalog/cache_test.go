package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/logger"
)

type staticFetcher struct {
	entries []model.CatalogEntry
}

func (f staticFetcher) FetchCatalog(context.Context) ([]model.CatalogEntry, error) {
	return f.entries, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mission_cache.json")
	return New(path, DefaultMaxAge, logger.NopLogger{})
}

func TestRequirementsFixed(t *testing.T) {
	c := newTestCache(t)
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "7", Name: "Verkehrsunfall", Requirements: map[string]int{"ambulances": 2}},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := c.Requirements("7")
	if got[model.CatRTW] != 2 || len(got) != 1 {
		t.Fatalf("expected {RTW: 2}, got %v", got)
	}
}

func TestRequirementsFirstWinsOnDuplicateTarget(t *testing.T) {
	c := newTestCache(t)
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "3", Name: "Großbrand", Requirements: map[string]int{
			"battalion_chief_vehicles": 1,
			"mobile_command_vehicles":  4,
		}},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	got := c.Requirements("3")
	if got[model.CatELW] != 1 {
		t.Fatalf("expected first-wins ELW count 1, got %v", got)
	}
}

func TestRequirementsChances(t *testing.T) {
	c := newTestCache(t)
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "1", Name: "Notfall", Chances: map[string]float64{"nef": 60}},
		{ID: "2", Name: "Unwohlsein", Chances: map[string]float64{"nef": 20}},
		{ID: "4", Name: "Verlegung", Chances: map[string]float64{"patient_transport": 100}},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := c.Requirements("1"); got[model.CatNEF] != 1 || got[model.CatRTW] != 1 || len(got) != 2 {
		t.Fatalf("nef >= 50: expected NEF+RTW, got %v", got)
	}
	if got := c.Requirements("2"); got[model.CatRTW] != 1 || len(got) != 1 {
		t.Fatalf("0 < nef < 50: expected RTW only, got %v", got)
	}
	if got := c.Requirements("4"); got[model.CatKTW] != 1 || len(got) != 1 {
		t.Fatalf("transport chance: expected KTW, got %v", got)
	}
}

func TestRequirementsNameFallback(t *testing.T) {
	c := newTestCache(t)
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "9", Name: "Krankentransport"},
		{ID: "10", Name: "Mülleimerbrand"},
		{ID: "11", Name: "Katze auf Baum"},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := c.Requirements("9"); got[model.CatKTW] != 1 {
		t.Fatalf("expected KTW from name, got %v", got)
	}
	if got := c.Requirements("10"); got[model.CatLF] != 1 {
		t.Fatalf("expected LF from name, got %v", got)
	}
	if got := c.Requirements("11"); !got.Empty() {
		t.Fatalf("expected empty terminal result, got %v", got)
	}
}

func TestRefreshPersistsAndLoadRestores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission_cache.json")
	c := New(path, DefaultMaxAge, logger.NopLogger{})
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "7", Name: "Verkehrsunfall", Requirements: map[string]int{"ambulances": 1}},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	reloaded := New(path, DefaultMaxAge, logger.NopLogger{})
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Len() != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", reloaded.Len())
	}
	if got := reloaded.Requirements("7"); got[model.CatRTW] != 1 {
		t.Fatalf("expected RTW requirement after reload, got %v", got)
	}
}

func TestExpiredCacheTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mission_cache.json")
	c := New(path, DefaultMaxAge, logger.NopLogger{})
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "7", Name: "Verkehrsunfall", Requirements: map[string]int{"ambulances": 1}},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// Shift the clock past the invalidation window.
	c.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if _, ok := c.Entry("7"); ok {
		t.Fatalf("expired entry must be treated as absent")
	}
	if !c.Requirements("7").Empty() {
		t.Fatalf("expired cache must resolve to empty profile")
	}
	if !c.Stale() {
		t.Fatalf("expired cache must report stale")
	}

	// A reload with the shifted clock must also discard the entries.
	reloaded := New(path, DefaultMaxAge, logger.NopLogger{})
	reloaded.now = c.now
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Fatalf("expected empty cache after expired load, got %d entries", reloaded.Len())
	}
}

func TestComputeStats(t *testing.T) {
	c := newTestCache(t)
	fetcher := staticFetcher{entries: []model.CatalogEntry{
		{ID: "1", Name: "Brand", Requirements: map[string]int{"firetrucks": 2}, AverageCredits: 500},
		{ID: "2", Name: "Notfall", Chances: map[string]float64{"nef": 80}, AverageCredits: 200},
		{ID: "3", Name: "Katze auf Baum", AverageCredits: 50},
	}}
	if err := c.Refresh(context.Background(), fetcher); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	s := c.ComputeStats()
	if s.MissionTypes != 3 || s.WithFixedReqs != 1 || s.WithChances != 1 || s.Unresolvable != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
	if s.MeanCredits < 249 || s.MeanCredits > 251 {
		t.Fatalf("unexpected mean credits: %f", s.MeanCredits)
	}
}
