package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/metrics"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/game"
	"github.com/RoMaSystems-source/Leitstellenspiel-bot/infra/notify"
)

type Config struct {
	Game    game.Config    `json:"game"`
	Bot     BotConfig      `json:"bot"`
	Cache   CacheConfig    `json:"cache"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	Notify  notify.Config  `json:"notify"`
}

// BotConfig tunes the dispatch loop.
type BotConfig struct {
	// CheckIntervalSeconds is the pause between scan cycles.
	CheckIntervalSeconds int `json:"check_interval_seconds"`
	// MaxMissionsPerCycle bounds how many missions one cycle processes.
	MaxMissionsPerCycle int `json:"max_missions_per_cycle"`
	// DelayBetweenActionsMS paces requests against the game.
	DelayBetweenActionsMS int `json:"delay_between_actions_ms"`
	// MaxLoadMoreClicks bounds unit list pagination per mission.
	MaxLoadMoreClicks int `json:"max_load_more_clicks"`
	// AutoSetStatus6OnFail withdraws uncrewed units after rejections.
	AutoSetStatus6OnFail bool `json:"auto_set_status6_on_fail"`
	// UnitLedgerPath, when set, persists the unit ledger each cycle.
	UnitLedgerPath string `json:"unit_ledger_path"`
}

func (c *BotConfig) SetDefaults() {
	if c.CheckIntervalSeconds <= 0 {
		c.CheckIntervalSeconds = 60
	}
	if c.MaxMissionsPerCycle <= 0 {
		c.MaxMissionsPerCycle = 20
	}
	if c.DelayBetweenActionsMS < 0 {
		c.DelayBetweenActionsMS = 0
	}
	if c.MaxLoadMoreClicks <= 0 {
		c.MaxLoadMoreClicks = 50
	}
}

// CacheConfig tunes the mission-type catalog cache.
type CacheConfig struct {
	Path        string `json:"path"`
	MaxAgeHours int    `json:"max_age_hours"`
}

func (c *CacheConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "einsaetze_cache.json"
	}
	if c.MaxAgeHours <= 0 {
		c.MaxAgeHours = 24
	}
}

// Load reads a JSON or YAML config file and applies LSB_ environment
// overrides (LSB_GAME__EMAIL maps to game.email).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("LSB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "lsb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Game.SetDefaults()
	cfg.Bot.SetDefaults()
	cfg.Cache.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Notify.SetDefaults()
	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
