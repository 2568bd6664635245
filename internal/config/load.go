package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the viewer cannot start with.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	switch c.Graphics.Backend {
	case BackendSDL, BackendGLFW:
	default:
		return fmt.Errorf("unknown window backend %q", c.Graphics.Backend)
	}
	for i := 0; i < 3; i++ {
		if c.Scene.RoomMin[i] > c.Scene.RoomMax[i] {
			return fmt.Errorf("room_min %v exceeds room_max %v", c.Scene.RoomMin, c.Scene.RoomMax)
		}
	}
	for i, m := range c.Scene.Models {
		if m.Name == "" || m.Path == "" || m.Diffuse == "" || m.Material == "" {
			return fmt.Errorf("model %d: name, path, diffuse and material are required", i)
		}
		if m.Scale < 0 {
			return fmt.Errorf("model %s: negative scale %v", m.Name, m.Scale)
		}
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "OpenGraphics")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "OpenGraphics")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "opengraphics")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "opengraphics")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
