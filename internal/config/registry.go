package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "videohub"
	configFile = "config.yaml"

	// ConfigDirEnvVar overrides the configuration directory
	ConfigDirEnvVar = "VIDEOHUB_CONFIG_DIR"
)

// fileMutex serializes registry writes within the process
var fileMutex sync.Mutex

// GetConfigDir returns the OS-appropriate configuration directory for the application.
//   - VIDEOHUB_CONFIG_DIR when set
//   - Linux: $XDG_CONFIG_HOME/videohub or $HOME/.config/videohub
//   - macOS: $HOME/.config/videohub
//   - Windows: %LOCALAPPDATA%\videohub
func GetConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnvVar); dir != "" {
		return dir, nil
	}

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData != "" {
			return filepath.Join(localAppData, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// GetConfigPath returns the full path to the configuration file.
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistryFrom reads a registry file. A missing file yields a new
// default registry.
func LoadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if registry.Version != 1 {
		return nil, fmt.Errorf("unsupported config version: %d (expected 1)", registry.Version)
	}

	if registry.Hubs == nil {
		registry.Hubs = make(map[string]*Hub)
	}
	if registry.Preferences == nil {
		registry.Preferences = &Preferences{}
	}

	return &registry, nil
}

// SaveTo writes the registry to path atomically (temp file, then rename).
func (r *Registry) SaveTo(path string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Videohub Configuration File
# Known hubs and preferences for videohub-cfg.
# Presets are stored separately as JSON files in preset_dir.
#
# Location: ` + path + `

`)
	data = append(header, data...)

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

// CreateDefaultConfig writes a config seeded with the two reference hubs:
// a 12x12 and a 40x40 router.
func CreateDefaultConfig(path string) (*Registry, error) {
	registry := NewRegistry()

	registry.SetHub("smart-12x12", "192.168.1.248", DefaultPort).Nickname = "Smart Videohub 12x12"
	registry.SetHub("universal-40x40", "172.20.5.247", DefaultPort).Nickname = "Videohub 40x40"
	registry.Preferences.DefaultHub = "universal-40x40"
	registry.Preferences.PresetDir = "presets"

	if err := registry.SaveTo(path); err != nil {
		return nil, err
	}
	return registry, nil
}
