// Package config handles loading and saving pv configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pv/config.yaml
//   - State:   ~/.local/state/pv/ (navigation history)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DataDirEnvVar overrides the manifest data directory.
const DataDirEnvVar = "PV_DATA_DIR"

// PlayerConfig configures the external clip player.
type PlayerConfig struct {
	// Command is the player argv prefix; the clip path is appended.
	Command []string `yaml:"command,omitempty,flow"`
}

// PlaybackConfig holds walkthrough behavior settings.
type PlaybackConfig struct {
	// DwellSeconds is the autoplay fallback interval when no clip-ended
	// signal is available.
	DwellSeconds int `yaml:"dwell_seconds,omitempty"`
	// Autoplay starts the walkthrough advancing as soon as a proof opens.
	Autoplay bool `yaml:"autoplay,omitempty"`
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	// ShowInsights renders step insight notes under the transcript.
	ShowInsights bool `yaml:"show_insights,omitempty"`
	// WordWrap is the transcript wrap width; 0 follows the pane width.
	WordWrap int `yaml:"word_wrap,omitempty"`
}

// Config is the top-level configuration for pv.
type Config struct {
	// DataDir is the directory holding proofs/ and definitions/ manifests.
	DataDir  string         `yaml:"data_dir,omitempty"`
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: "public",
		Player: PlayerConfig{
			Command: []string{"mpv", "--really-quiet", "--keep-open=no"},
		},
		Playback: PlaybackConfig{
			DwellSeconds: 2,
		},
		UI: UIConfig{
			ShowInsights: true,
		},
	}
}

// Dwell returns the configured autoplay fallback interval.
func (c Config) Dwell() time.Duration {
	if c.Playback.DwellSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Playback.DwellSeconds) * time.Second
}

// ResolveDataDir returns the manifest directory, honoring PV_DATA_DIR over
// the config file.
func (c Config) ResolveDataDir() string {
	if dir := os.Getenv(DataDirEnvVar); dir != "" {
		return dir
	}
	if c.DataDir != "" {
		return c.DataDir
	}
	return "public"
}

// ConfigDir returns the XDG config directory for pv.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pv")
}

// StateDir returns the XDG state directory for pv.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "pv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "pv")
}

// ConfigPath returns the path of the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// HistoryPath returns the path of the navigation history database.
func HistoryPath() string {
	dir := StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history.db")
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("cannot parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes a config file to an explicit path.
func SaveTo(path string, cfg Config) error {
	if path == "" {
		return fmt.Errorf("no config path available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return os.Rename(tmp, path)
}
