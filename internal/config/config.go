package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Pipeline modes
const (
	ModeArchive = "archive"
	ModeFlat    = "flat"
	ModeBoth    = "both"
)

// Config holds all application configuration
type Config struct {
	// Pipeline selection
	Mode string `env:"OVPNAPI_MODE"`

	// Directory layout
	InputDir   string `env:"OVPNAPI_INPUTDIR"`
	ExtractDir string `env:"OVPNAPI_EXTRACTDIR"`
	APIDir     string `env:"OVPNAPI_APIDIR"`

	// Conversion settings
	VendorMarker   string `env:"OVPNAPI_VENDORMARKER"`
	DefaultCountry string `env:"OVPNAPI_DEFAULTCOUNTRY"`

	// Logging
	LogLevel  string `env:"OVPNAPI_LOGLEVEL"`
	LogFormat string `env:"OVPNAPI_LOGFORMAT"`

	// Metrics textfile, empty disables export
	MetricsFile string `env:"OVPNAPI_METRICSFILE"`

	// Watch mode
	Watch      bool          `env:"OVPNAPI_WATCH"`
	WatchDelay time.Duration `env:"OVPNAPI_WATCHDELAY"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeArchive,
		InputDir:       "input",
		ExtractDir:     "extract",
		APIDir:         "api",
		VendorMarker:   "vpngate",
		DefaultCountry: "XX",
		LogLevel:       "info",
		LogFormat:      "text",
		MetricsFile:    "",
		Watch:          false,
		WatchDelay:     2 * time.Second,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		return err
	}

	section := cfg.Section("")
	c.Mode = section.Key("mode").MustString(c.Mode)
	c.InputDir = section.Key("inputdir").MustString(c.InputDir)
	c.ExtractDir = section.Key("extractdir").MustString(c.ExtractDir)
	c.APIDir = section.Key("apidir").MustString(c.APIDir)
	c.VendorMarker = section.Key("vendormarker").MustString(c.VendorMarker)
	c.DefaultCountry = section.Key("defaultcountry").MustString(c.DefaultCountry)
	c.LogLevel = section.Key("loglevel").MustString(c.LogLevel)
	c.LogFormat = section.Key("logformat").MustString(c.LogFormat)
	c.MetricsFile = section.Key("metricsfile").MustString(c.MetricsFile)
	c.Watch = section.Key("watch").MustBool(c.Watch)
	c.WatchDelay = section.Key("watchdelay").MustDuration(c.WatchDelay)

	return nil
}

// LoadFromEnv loads configuration from environment variables,
// reading a .env file first when one is present
func (c *Config) LoadFromEnv(envFiles ...string) error {
	// A missing .env file is fine
	_ = godotenv.Load(envFiles...)

	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks values that cannot fall back to a default silently
func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	switch c.Mode {
	case ModeArchive, ModeFlat, ModeBoth:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	if c.InputDir == "" || c.APIDir == "" || c.ExtractDir == "" {
		return fmt.Errorf("input, extract and api directories must be set")
	}
	if c.WatchDelay <= 0 {
		return fmt.Errorf("watch delay must be positive, got %s", c.WatchDelay)
	}
	return nil
}

// New creates a new configuration instance.
// A missing or unreadable config file is reported through warn and the
// defaults stay in place.
func New(configFile string, warn func(error)) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file first
	if err := cfg.LoadFromFile(configFile); err != nil && warn != nil {
		warn(fmt.Errorf("skipping config file %s: %w", configFile, err))
	}

	// Override with environment variables
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
