package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
)

// Config is the root configuration for tat, stored in ~/.tat/config.json.
// The file may contain // and /* */ comments and trailing commas.
type Config struct {
	Attendance AttendanceConfig `json:"attendance"`
	Assistant  AssistantConfig  `json:"assistant"`
	Outlook    OutlookConfig    `json:"outlook"`
	Log        LogConfig        `json:"log"`
	// SeedFile is an optional YAML file replacing the built-in demo data.
	SeedFile string `json:"seed_file"`
}

// AttendanceConfig holds the attendance policy.
type AttendanceConfig struct {
	// Timezone is the IANA timezone days are counted in. Empty = local time.
	Timezone string `json:"timezone"`
	// GraceMinutes after shift start before a check-in is late.
	GraceMinutes int `json:"grace_minutes"`
	// StrictSegments rejects check-out segments longer than the session.
	StrictSegments *bool `json:"strict_segments"`
	// Geofences registers work locations with an accepted radius.
	Geofences []GeofenceConfig `json:"geofences"`
}

// GeofenceConfig is one registered work location.
type GeofenceConfig struct {
	Location     string  `json:"location"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_meters"`
}

// AssistantConfig selects the chat delegate.
type AssistantConfig struct {
	// Provider is "mock" (offline) or "gemini".
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `json:"api_key_env"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar import settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
}

// LogConfig controls diagnostics written to stderr.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error.
	Level string `json:"level"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant.
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID. It supports
	// device code flow without a client secret.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultGraceMinutes matches the usual 15 minute late threshold.
	DefaultGraceMinutes = 15
	DefaultProvider     = "mock"
	DefaultAPIKeyEnv    = "GEMINI_API_KEY"
	DefaultLogLevel     = "warn"
)

// Default returns a Config pre-filled with defaults.
func Default() Config {
	strict := true
	return Config{
		Attendance: AttendanceConfig{GraceMinutes: DefaultGraceMinutes, StrictSegments: &strict},
		Assistant:  AssistantConfig{Provider: DefaultProvider, APIKeyEnv: DefaultAPIKeyEnv},
		Outlook:    OutlookConfig{TenantID: DefaultTenantID, ClientID: DefaultClientID},
		Log:        LogConfig{Level: DefaultLogLevel},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `// tat configuration - ~/.tat/config.json
//
// All settings are optional; the defaults below work out of the box.
{
  "attendance": {
    // IANA timezone attendance days are counted in. Empty = local time.
    "timezone": "",

    // Minutes after shift start before a check-in files a Late Check-In request.
    "grace_minutes": 15,

    // Reject check-out segments whose total exceeds the session length.
    "strict_segments": true,

    // Registered work locations. A check-in farther away than radius_meters
    // is refused unless overridden, which files a Location Exception request.
    "geofences": [
      /* { "location": "Office", "lat": 40.7128, "lng": -74.0060, "radius_meters": 100 } */
    ]
  },

  "assistant": {
    // "mock" answers offline; "gemini" calls the Gemini API.
    "provider": "mock",
    "model": "",
    "endpoint": "",
    // Environment variable holding the Gemini API key.
    "api_key_env": "GEMINI_API_KEY"
  },

  // Microsoft Graph / Outlook calendar import.
  "outlook": {
    "tenant_id": "common",
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",
    "timezone": ""
  },

  "log": {
    // debug, info, warn or error
    "level": "warn"
  },

  // YAML file with users, attendance, requests and audit logs to start from.
  "seed_file": ""
}
`

// DefaultPath returns ~/.tat/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tat", "config.json"), nil
}

// Load reads ~/.tat/config.json, creating it with annotated defaults on
// first run.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path, true)
}

// LoadFrom reads the config at path. A missing file yields the defaults and,
// with create set, is written from the annotated template.
func LoadFrom(path string, create bool) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if create {
			if writeErr := writeDefault(path); writeErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			}
		}
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}
	if cfg.SeedFile != "" && !filepath.IsAbs(cfg.SeedFile) {
		cfg.SeedFile = filepath.Join(filepath.Dir(path), cfg.SeedFile)
	}
	return cfg, nil
}

// Parse decodes a commented JSON config and fills zero fields with defaults.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.Attendance.GraceMinutes <= 0 {
		cfg.Attendance.GraceMinutes = def.Attendance.GraceMinutes
	}
	if cfg.Attendance.StrictSegments == nil {
		cfg.Attendance.StrictSegments = def.Attendance.StrictSegments
	}
	if cfg.Assistant.Provider == "" {
		cfg.Assistant.Provider = def.Assistant.Provider
	}
	if cfg.Assistant.APIKeyEnv == "" {
		cfg.Assistant.APIKeyEnv = def.Assistant.APIKeyEnv
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	for i, g := range cfg.Attendance.Geofences {
		if _, err := model.ParseLocationType(g.Location); err != nil {
			return Config{}, fmt.Errorf("geofence %d: %w", i+1, err)
		}
	}
	return cfg, nil
}

// Location returns the attendance timezone. Empty means time.Local.
func (c AttendanceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid attendance timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Strict reports whether segment totals are enforced.
func (c AttendanceConfig) Strict() bool {
	return c.StrictSegments == nil || *c.StrictSegments
}

// writeDefault creates the config directory and writes the annotated
// template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
