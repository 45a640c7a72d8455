package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Flickr.PerPage != 50 || cfg.Flickr.Radius != 1 || cfg.Flickr.MaxResults != 4000 {
		t.Errorf("unexpected flickr defaults %+v", cfg.Flickr)
	}
	if cfg.Flickr.APIKey != "" {
		t.Error("default config must not carry an api key")
	}
	if !errors.Is(cfg.Validate(), ErrMissingAPIKey) {
		t.Error("expected ErrMissingAPIKey for default config")
	}
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "env-key")
	t.Setenv("TOURIST_DB_PATH", "/tmp/t.db")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Flickr.APIKey != "env-key" {
		t.Errorf("api key = %q", cfg.Flickr.APIKey)
	}
	if cfg.DBPath() != "/tmp/t.db" {
		t.Errorf("db path = %q", cfg.DBPath())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Flickr.APIKey = "file-key"
	cfg.Hydration.MaxConcurrentFetches = 8
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Flickr.APIKey != "file-key" || got.Hydration.MaxConcurrentFetches != 8 {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"flickr":{"api_key":"k","per_page":25}}`), 0600)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Flickr.PerPage != 25 || cfg.Flickr.Radius != 1 {
		t.Errorf("flickr = %+v", cfg.Flickr)
	}
	if cfg.UI.LatitudeDelta != 0.2 {
		t.Errorf("ui defaults lost: %+v", cfg.UI)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{not json`), 0600)

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("FLICKR_API_KEY", "")
	os.Unsetenv("FLICKR_API_KEY")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	os.WriteFile(envPath, []byte("FLICKR_API_KEY=dotenv-key\n"), 0600)

	cfg := DefaultConfig()
	if err := cfg.LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if cfg.Flickr.APIKey != "dotenv-key" {
		t.Errorf("api key = %q", cfg.Flickr.APIKey)
	}

	if err := cfg.LoadDotEnv(filepath.Join(dir, "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestFlickrOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.FlickrOptions()
	if opts.Timeout != 30*time.Second || opts.PerPage != 50 || opts.RequestsPerSecond != 1 {
		t.Errorf("options = %+v", opts)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Flickr.APIKey = "k"
	cfg.Hydration.MaxConcurrentFetches = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative fetch limit")
	}
}

func TestSaveWritesToConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLICKR_API_KEY", "")
	t.Setenv("TOURIST_DB_PATH", "")

	cfg := DefaultConfig()
	cfg.Hydration.MaxConcurrentFetches = 9
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Hydration.MaxConcurrentFetches != 9 {
		t.Errorf("MaxConcurrentFetches = %d, want 9", loaded.Hydration.MaxConcurrentFetches)
	}
}
