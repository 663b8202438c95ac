// Package config provides client settings management.
//
// Settings are read from an optional YAML file in the user's config directory
// and may be overridden from the environment or command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/retrixe/octynectl/internal/console"
)

const (
	// SocketFileName is the name of the Octyne control socket inside the temp dir.
	SocketFileName = "octyne.sock.42069"

	// SocketEnvVar overrides the socket path from the settings file.
	SocketEnvVar = "OCTYNE_SOCKET"
)

// Settings represents the octynectl config.yaml file.
type Settings struct {
	// SocketPath is the path to the Octyne Unix socket.
	SocketPath string `yaml:"socket_path,omitempty"`

	// KeepaliveInterval is a Go duration string, e.g. "5s".
	KeepaliveInterval string `yaml:"keepalive_interval,omitempty"`

	// NoInteractive disables the full-screen console by default.
	NoInteractive bool `yaml:"no_interactive,omitempty"`
}

// DefaultSocketPath returns the socket path Octyne listens on by default.
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), SocketFileName)
}

// SettingsPath returns the location of the settings file.
//
// Returns:
//   - string: The path to config.yaml (may not exist)
//   - error: If the user config directory cannot be determined
func SettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "octynectl", "config.yaml"), nil
}

// LoadSettings reads settings from path. A missing file yields zero settings.
//
// Parameters:
//   - path: The settings file path
//
// Returns:
//   - *Settings: The parsed settings
//   - error: If the file exists but cannot be read or parsed
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if s.KeepaliveInterval != "" {
		if _, err := s.Keepalive(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// Load reads the settings file from its default location.
func Load() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return &Settings{}, nil
	}
	return LoadSettings(path)
}

// ResolveSocketPath picks the socket path by precedence: flag, environment,
// settings file, then the Octyne default.
//
// Parameters:
//   - flagValue: The --socket flag value (empty when unset)
//
// Returns:
//   - string: The socket path to dial
func (s *Settings) ResolveSocketPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(SocketEnvVar); env != "" {
		return env
	}
	if s != nil && s.SocketPath != "" {
		return s.SocketPath
	}
	return DefaultSocketPath()
}

// Keepalive returns the configured keepalive interval, or the default.
func (s *Settings) Keepalive() (time.Duration, error) {
	if s == nil || s.KeepaliveInterval == "" {
		return console.DefaultKeepaliveInterval, nil
	}
	d, err := time.ParseDuration(s.KeepaliveInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid keepalive_interval %q: %w", s.KeepaliveInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid keepalive_interval %q: must be positive", s.KeepaliveInterval)
	}
	return d, nil
}
