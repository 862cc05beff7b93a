// Package config builds the one explicit configuration struct the rest of
// the program receives. Nothing outside this package reads process
// environment directly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Site is the fixed observing location.
type Site struct {
	Name     string  `koanf:"name"`
	Lat      float64 `koanf:"lat"`       // geodetic latitude, degrees
	Lon      float64 `koanf:"lon"`       // geodetic longitude, degrees
	HeightKm float64 `koanf:"height_km"` // geodetic height, km
	Timezone string  `koanf:"timezone"`  // IANA zone name
}

// Config holds all run settings: the YAML site file layered under
// environment overrides.
type Config struct {
	Site       Site  `koanf:"site"`
	Satellites []int `koanf:"satellites"` // NORAD catalog numbers

	MinAltitude float64 `koanf:"min_altitude"` // degrees, inclusive
	MinDuration int     `koanf:"min_duration"` // seconds, exclusive
	TimeWindow  string  `koanf:"time_window"`  // morning|evening|all
	NotifyType  string  `koanf:"notify_type"`  // bysat|bydate

	SendNotice          bool
	ForceWeatherRefresh bool

	SlackToken      string
	SlackChannel    string
	MeteoblueAPIKey string

	HTTPTimeout time.Duration
	FetchDelay  time.Duration // politeness pause between per-satellite fetches

	CacheDir  string
	OutputDir string

	LogLevel  string
	LogFormat string
}

// Load reads the site file named by SATPASS_CONFIG (YAML), then applies
// environment overrides and validates. A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MinAltitude: 30,
		MinDuration: 60,
		TimeWindow:  "all",
		NotifyType:  "bydate",
		HTTPTimeout: 30 * time.Second,
		FetchDelay:  250 * time.Millisecond,
		CacheDir:    "tmp/heavens-above",
		OutputDir:   "output/heavens-above",
		LogLevel:    "info",
		LogFormat:   "text",
	}

	path := os.Getenv("SATPASS_CONFIG")
	if path == "" {
		return nil, errors.New("SATPASS_CONFIG is required: path to the site YAML file")
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load site config %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MIN_ALTITUDE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MIN_ALTITUDE %q", v)
		}
		cfg.MinAltitude = f
	}
	if v := os.Getenv("MIN_DURATION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MIN_DURATION %q", v)
		}
		cfg.MinDuration = n
	}
	if v := os.Getenv("TIME_WINDOW"); v != "" {
		cfg.TimeWindow = v
	}
	if v := os.Getenv("NOTIFY_TYPE"); v != "" {
		cfg.NotifyType = v
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid HTTP_TIMEOUT %q", v)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	cfg.SendNotice = os.Getenv("SEND_NOTICE") == "TRUE"
	cfg.ForceWeatherRefresh = os.Getenv("FORCE_WEATHER_REFRESH") == "TRUE"
	cfg.SlackToken = os.Getenv("SLACK_TOKEN")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")
	cfg.MeteoblueAPIKey = os.Getenv("METEOBLUE_API_KEY")
	return nil
}

func validate(cfg *Config) error {
	if len(cfg.Satellites) == 0 {
		return errors.New("site config lists no satellites")
	}
	if cfg.Site.Timezone == "" {
		return errors.New("site config is missing a timezone")
	}
	if _, err := time.LoadLocation(cfg.Site.Timezone); err != nil {
		return fmt.Errorf("invalid site timezone %q: %w", cfg.Site.Timezone, err)
	}
	if cfg.MeteoblueAPIKey == "" {
		return errors.New("METEOBLUE_API_KEY is not set")
	}
	if cfg.SendNotice {
		if cfg.SlackToken == "" {
			return errors.New("SEND_NOTICE is TRUE but SLACK_TOKEN is not set")
		}
		if cfg.SlackChannel == "" {
			return errors.New("SEND_NOTICE is TRUE but SLACK_CHANNEL is not set")
		}
	}
	switch cfg.NotifyType {
	case "bysat", "bydate":
	default:
		return fmt.Errorf("invalid NOTIFY_TYPE %q (want bysat or bydate)", cfg.NotifyType)
	}
	return nil
}

// Location resolves the site's IANA timezone. Callers resolve it once
// after Load; validate guarantees it parses.
func (s Site) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
