package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OutputConfig selects where triggers go: a named MIDI port, or the
// built-in audio device when no port is available (or ForceAudio is set).
type OutputConfig struct {
	MIDIPort   string `json:"midiPort,omitempty"`
	Kit        string `json:"kit,omitempty"`
	Channel    uint8  `json:"channel,omitempty"`
	ForceAudio bool   `json:"forceAudio,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo float64 `json:"lastTempo,omitempty"`
	LastSwing int     `json:"lastSwing,omitempty"`
	Preset    string  `json:"preset,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Output OutputConfig `json:"output,omitempty"`
	UI     UIConfig     `json:"ui,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Kit:     "gm",
			Channel: 10, // GM percussion channel (1-based)
		},
		UI: UIConfig{
			LastTempo: 120,
			Preset:    "four-on-the-floor",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "step-machine"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
