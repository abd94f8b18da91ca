// Package catalog maintains the locally persisted mission-type reference
// data fetched from the game's bulk einsaetze feed and resolves catalog
// entries into requirement profiles.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/logger"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// DefaultMaxAge is the window after which a persisted cache is treated as
// absent until refreshed.
const DefaultMaxAge = 24 * time.Hour

// Fetcher retrieves the bulk catalog feed.
type Fetcher interface {
	FetchCatalog(ctx context.Context) ([]model.CatalogEntry, error)
}

// translation maps the feed's requirement names onto canonical categories.
// Order matters: the first rule producing a given target category wins, and
// later duplicates (e.g. a second ELW source) are ignored rather than summed.
var translation = []struct {
	feedName string
	cat      model.Category
}{
	{"firetrucks", model.CatLF},
	{"battalion_chief_vehicles", model.CatELW},
	{"heavy_rescue_vehicles", model.CatRW},
	{"mobile_air", model.CatGWA},
	{"water_tankers", model.CatTLF},
	{"turntable_ladder_vehicles", model.CatDLK},
	{"ambulances", model.CatRTW},
	{"fly_cars", model.CatNEF},
	{"mobile_command_vehicles", model.CatELW},
	{"police_cars", model.CatFuStW},
	{"rescue_helicopters", model.CatRTH},
	{"patient_transport", model.CatKTW},
	{"fwk", model.CatFwK},
	{"oneof_police_patrol_or_motorcycle", model.CatFuStW},
	{"police_motorcycles", model.CatFuStW},
	{"k9", model.CatK9},
	{"swat_armoured_vehicles", model.CatGefKw},
}

// diskLayout is the persisted cache file format.
type diskLayout struct {
	Timestamp float64                       `json:"timestamp"`
	Missions  map[string]model.CatalogEntry `json:"missions"`
}

// Cache holds the mission-type catalog, persisted to disk and refreshed from
// the bulk feed. Safe for concurrent use; the only writer is the cache's own
// refresh.
type Cache struct {
	mu        sync.RWMutex
	path      string
	maxAge    time.Duration
	entries   map[string]model.CatalogEntry
	fetchedAt time.Time
	log       logger.Logger
	now       func() time.Time
}

// New creates a cache backed by the given file path.
func New(path string, maxAge time.Duration, log logger.Logger) *Cache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{
		path:    path,
		maxAge:  maxAge,
		entries: map[string]model.CatalogEntry{},
		log:     log,
		now:     time.Now,
	}
}

// Load reads the persisted cache from disk. A missing file or an entry set
// older than the max age leaves the cache empty; neither is an error.
func (c *Cache) Load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read catalog cache: %w", err)
	}
	var layout diskLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("decode catalog cache: %w", err)
	}
	fetched := time.Unix(int64(layout.Timestamp), 0)
	age := c.now().Sub(fetched)
	c.mu.Lock()
	defer c.mu.Unlock()
	if age > c.maxAge {
		c.log.Infof("catalog cache is %.1fh old, treating as empty", age.Hours())
		c.entries = map[string]model.CatalogEntry{}
		c.fetchedAt = time.Time{}
		return nil
	}
	c.entries = layout.Missions
	if c.entries == nil {
		c.entries = map[string]model.CatalogEntry{}
	}
	c.fetchedAt = fetched
	c.log.Infof("catalog cache loaded: %d mission types, %.1fh old", len(c.entries), age.Hours())
	return nil
}

// Stale reports whether the cache needs a refresh.
func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) == 0 || c.now().Sub(c.fetchedAt) > c.maxAge
}

// Len returns the number of cached mission types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Refresh replaces the whole cache from the bulk feed and persists it.
func (c *Cache) Refresh(ctx context.Context, fetcher Fetcher) error {
	entries, err := fetcher.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	byID := make(map[string]model.CatalogEntry, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		byID[e.ID] = e
	}
	now := c.now()
	c.mu.Lock()
	c.entries = byID
	c.fetchedAt = now
	c.mu.Unlock()
	if err := c.persist(byID, now); err != nil {
		return err
	}
	c.log.Infof("catalog cache refreshed: %d mission types", len(byID))
	return nil
}

func (c *Cache) persist(entries map[string]model.CatalogEntry, fetched time.Time) error {
	layout := diskLayout{Timestamp: float64(fetched.Unix()), Missions: entries}
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}

// Entry returns the raw catalog entry for a mission type id.
func (c *Cache) Entry(missionTypeID string) (model.CatalogEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.now().Sub(c.fetchedAt) > c.maxAge {
		return model.CatalogEntry{}, false
	}
	e, ok := c.entries[missionTypeID]
	return e, ok
}

// Entries returns a snapshot of all cached entries.
func (c *Cache) Entries() []model.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// Requirements resolves a mission type id into a requirement profile. The
// stages fall through on empty results: fixed requirement counts, then the
// probability map, then keywords in the catalog name. An empty profile at the
// end is a valid terminal result.
func (c *Cache) Requirements(missionTypeID string) model.Profile {
	profile := model.NewProfile()
	entry, ok := c.Entry(missionTypeID)
	if !ok {
		return profile
	}

	for _, tr := range translation {
		count, present := entry.Requirements[tr.feedName]
		if !present || count <= 0 {
			continue
		}
		if _, taken := profile[tr.cat]; taken {
			continue
		}
		profile.Set(tr.cat, count)
	}
	if !profile.Empty() {
		return profile
	}

	if len(entry.Chances) > 0 {
		nef := entry.Chances["nef"]
		transport := entry.Chances["patient_transport"]
		switch {
		case nef >= 50:
			profile.Set(model.CatNEF, 1)
			profile.Set(model.CatRTW, 1)
		case nef > 0:
			profile.Set(model.CatRTW, 1)
		case transport > 0:
			profile.Set(model.CatKTW, 1)
		}
		if !profile.Empty() {
			return profile
		}
	}

	name := strings.ToLower(entry.Name)
	switch {
	case strings.Contains(name, "krankentransport"):
		profile.Set(model.CatKTW, 1)
	case strings.Contains(name, "brand") || strings.Contains(name, "feuer"):
		profile.Set(model.CatLF, 1)
	}
	return profile
}
