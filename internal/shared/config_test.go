package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Database.Path != "labelcopy.db" {
		t.Errorf("database path = %q, want %q", config.Database.Path, "labelcopy.db")
	}
	if config.Database.MaxOpenConns != 5 {
		t.Errorf("max open conns = %d, want 5", config.Database.MaxOpenConns)
	}
	if config.Refresh.NumWorkers != 4 {
		t.Errorf("refresh workers = %d, want 4", config.Refresh.NumWorkers)
	}
	if config.Refresh.RateLimit != 5.0 {
		t.Errorf("refresh rate limit = %f, want 5.0", config.Refresh.RateLimit)
	}
	if config.Refresh.TimeoutSeconds != 15 {
		t.Errorf("refresh timeout = %d, want 15", config.Refresh.TimeoutSeconds)
	}
	if config.Imports.BaseURL == "" {
		t.Error("imports base URL should have a default")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "test-id"
client_secret = "test-secret"

[imports]
base_url = "http://imports.internal:9000"
api_key = "key123"

[database]
path = "/tmp/test.db"
max_open_conns = 10
max_idle_conns = 3

[refresh]
num_workers = 8
rate_limit = 2.5
timeout_seconds = 30
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test-id" {
			t.Errorf("client ID = %q, want %q", config.Credentials.Spotify.ClientID, "test-id")
		}
		if config.Imports.BaseURL != "http://imports.internal:9000" {
			t.Errorf("imports base URL = %q, want configured value", config.Imports.BaseURL)
		}
		if config.Refresh.NumWorkers != 8 {
			t.Errorf("refresh workers = %d, want 8", config.Refresh.NumWorkers)
		}
		if config.Refresh.RateLimit != 2.5 {
			t.Errorf("rate limit = %f, want 2.5", config.Refresh.RateLimit)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("LoadConfig() error = nil for missing file")
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("LoadConfig() error = nil for malformed file")
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() error = %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("created config does not load: %v", err)
	}
	if config.Database.Path != "labelcopy.db" {
		t.Errorf("created config database path = %q, want default", config.Database.Path)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() error = nil for existing file, want error")
	}
}
