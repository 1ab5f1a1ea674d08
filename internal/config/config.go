package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	RecordingsDir      string      `json:"recordings_dir"`
	LogLevel           string      `json:"log_level"`
	Audio              AudioConfig `json:"audio"`
	MinRecordingMillis int         `json:"min_recording_millis"`
	TickMillis         int         `json:"tick_millis"`
}

type AudioConfig struct {
	DeviceID   string `json:"device_id"`
	SampleRate int    `json:"sample_rate"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		RecordingsDir: defaultRecordingsDir(),
		LogLevel:      "info",
		Audio: AudioConfig{
			DeviceID:   "",
			SampleRate: 44100,
		},
		MinRecordingMillis: 1000,
		TickMillis:         100,
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 44100
	}
	if cfg.MinRecordingMillis <= 0 {
		cfg.MinRecordingMillis = 1000
	}
	if cfg.TickMillis <= 0 {
		cfg.TickMillis = 100
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "speakpad", "config.json")
}

// defaultRecordingsDir returns the platform-specific recordings directory.
// The directory itself is created lazily by the store on first save.
func defaultRecordingsDir() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("LOCALAPPDATA")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.local/share"
		}
	}

	return filepath.Join(base, "speakpad", "recordings")
}
