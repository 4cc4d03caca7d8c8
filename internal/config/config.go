package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the screener uses. Thresholds that shape the
// analysis (pivot order, zone bands, rule limits) are explicit values
// injected into each component, so tests can vary them without
// process-wide side effects.
type Config struct {
	Server struct {
		Port int `yaml:"port" default:"8080" validate:"min=1,max=65535"`
	} `yaml:"server"`

	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`

	Feed struct {
		BaseURL  string        `yaml:"base_url"`
		Interval string        `yaml:"interval" default:"1d"`
		Bars     int           `yaml:"bars" default:"500" validate:"min=50"`
		MinBars  int           `yaml:"min_bars" default:"50" validate:"min=1"`
		Timeout  time.Duration `yaml:"timeout" default:"30s"`
		Throttle time.Duration `yaml:"throttle" default:"750ms"`
		Retries  int           `yaml:"retries" default:"2" validate:"min=1"`
	} `yaml:"feed"`

	Scan struct {
		Workers       int    `yaml:"workers" default:"4" validate:"min=1,max=32"`
		ChartBars     int    `yaml:"chart_bars" default:"2000" validate:"min=1"`
		FreshnessDays int    `yaml:"freshness_days" default:"7" validate:"min=1"`
		Cron          string `yaml:"cron"` // empty disables scheduled scans
	} `yaml:"scan"`

	Zones struct {
		PivotOrder   int     `yaml:"pivot_order" default:"5" validate:"min=1"`
		MinBars      int     `yaml:"min_bars" default:"50" validate:"min=1"`
		BandPct      float64 `yaml:"band_pct" default:"0.005" validate:"gt=0"`
		ProximityPct float64 `yaml:"proximity_pct" default:"0.20" validate:"gt=0"`
		MinTouches   int     `yaml:"min_touches" default:"2" validate:"min=2"`
		MaxZones     int     `yaml:"max_zones" default:"10" validate:"min=1"`
	} `yaml:"zones"`

	Structure struct {
		Window int `yaml:"window" default:"20" validate:"min=2"`
	} `yaml:"structure"`

	Rules struct {
		EMAFast      int     `yaml:"ema_fast" default:"50" validate:"min=1"`
		EMASlow      int     `yaml:"ema_slow" default:"200" validate:"min=1"`
		RSIPeriod    int     `yaml:"rsi_period" default:"14" validate:"min=1"`
		VolSMAPeriod int     `yaml:"vol_sma_period" default:"20" validate:"min=1"`
		RSIMin       float64 `yaml:"rsi_min" default:"50" validate:"gte=0"`
		RSIMax       float64 `yaml:"rsi_max" default:"75" validate:"gt=0,lte=100"`
		VolumeMult   float64 `yaml:"volume_mult" default:"1.5" validate:"gt=0"`
	} `yaml:"rules"`

	Notify struct {
		Cooldown time.Duration `yaml:"cooldown" default:"30m"`
	} `yaml:"notify"`

	Watchlist struct {
		Path string `yaml:"path" default:"stocks.txt"`
	} `yaml:"watchlist"`

	Database struct {
		URL string `yaml:"url"` // empty keeps token storage in memory
	} `yaml:"database"`
}

// Load reads .env (if present), then the YAML file, applies defaults,
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("WATCHLIST_PATH"); v != "" {
		cfg.Watchlist.Path = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Feed.BaseURL = v
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Scan.Workers = n
		}
	}
}
