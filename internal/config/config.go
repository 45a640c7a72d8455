package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/abelbrown/tourist/internal/flickr"
	"github.com/abelbrown/tourist/internal/geo"
)

// ErrMissingAPIKey is returned by Validate when no Flickr key is configured.
var ErrMissingAPIKey = errors.New("config: flickr api key not set (set FLICKR_API_KEY, add it to .env, or edit config.json)")

// Config is the persistent application configuration
type Config struct {
	Flickr    FlickrConfig    `json:"flickr"`
	Storage   StorageConfig   `json:"storage"`
	Hydration HydrationConfig `json:"hydration"`
	UI        UIConfig        `json:"ui"`
}

// FlickrConfig holds search client settings
type FlickrConfig struct {
	APIKey            string  `json:"api_key,omitempty"`
	Endpoint          string  `json:"endpoint"`
	Radius            int     `json:"radius"`      // km
	PerPage           int     `json:"per_page"`    // photos per search
	MaxResults        int     `json:"max_results"` // Flickr's cap on geo results
	RequestsPerSecond float64 `json:"requests_per_second"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
}

// StorageConfig holds the database location
type StorageConfig struct {
	DBPath string `json:"db_path"` // empty means ~/.tourist/tourist.db
}

// HydrationConfig bounds image downloads
type HydrationConfig struct {
	MaxConcurrentFetches int   `json:"max_concurrent_fetches"`
	MaxImageBytes        int64 `json:"max_image_bytes"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	LatitudeDelta  float64 `json:"latitude_delta"`  // initial region span
	LongitudeDelta float64 `json:"longitude_delta"` // initial region span
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Flickr: FlickrConfig{
			Endpoint:          flickr.DefaultEndpoint,
			Radius:            flickr.DefaultRadius,
			PerPage:           flickr.DefaultPerPage,
			MaxResults:        flickr.DefaultMaxResults,
			RequestsPerSecond: 1,
			TimeoutSeconds:    30,
		},
		Hydration: HydrationConfig{
			MaxConcurrentFetches: 4,
			MaxImageBytes:        flickr.DefaultMaxImageBytes,
		},
		UI: UIConfig{
			LatitudeDelta:  0.2,
			LongitudeDelta: 0.2,
		},
	}
}

// Dir returns ~/.tourist, where config, database and logs live.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tourist")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads config from path. A missing file yields defaults; either
// way, environment variables fill in what the file leaves empty.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in settings from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if key := os.Getenv("FLICKR_API_KEY"); key != "" {
		c.Flickr.APIKey = key
	}
	if path := os.Getenv("TOURIST_DB_PATH"); path != "" {
		c.Storage.DBPath = path
	}
}

// LoadDotEnv reads KEY=value pairs from a .env file into the environment,
// then re-applies AutoPopulateFromEnv. Variables already set win.
// A missing file is not an error.
func (c *Config) LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	c.AutoPopulateFromEnv()
	return nil
}

// Validate reports settings the app cannot run without.
func (c *Config) Validate() error {
	if c.Flickr.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Flickr.PerPage < 0 || c.Flickr.MaxResults < 0 {
		return errors.New("config: per_page and max_results must not be negative")
	}
	if c.Hydration.MaxConcurrentFetches < 0 {
		return errors.New("config: max_concurrent_fetches must not be negative")
	}
	return nil
}

// DBPath returns the database file, defaulting under Dir.
func (c *Config) DBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return filepath.Join(Dir(), "tourist.db")
}

// FlickrOptions converts the flickr section for flickr.NewClient.
func (c *Config) FlickrOptions() flickr.Options {
	return flickr.Options{
		Endpoint:          c.Flickr.Endpoint,
		Radius:            c.Flickr.Radius,
		PerPage:           c.Flickr.PerPage,
		MaxResults:        c.Flickr.MaxResults,
		Timeout:           time.Duration(c.Flickr.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Flickr.RequestsPerSecond,
		MaxImageBytes:     c.Hydration.MaxImageBytes,
	}
}

// InitialRegion is the region shown when none was saved, centered on c.
func (c *Config) InitialRegion(center geo.Coordinates) geo.Region {
	return geo.Region{
		Center:         center,
		LatitudeDelta:  c.UI.LatitudeDelta,
		LongitudeDelta: c.UI.LongitudeDelta,
	}
}
