// Package paths resolves where clientdesk keeps its config file, its local
// database and its log.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform base directories.
const AppName = "clientdesk"

// Environment variables that override the platform defaults.
const (
	EnvConfigDir = "CLIENTDESK_CONFIG_DIR"
	EnvDataDir   = "CLIENTDESK_DATA_DIR"
)

// File names inside the resolved directories.
const (
	ConfigFileName   = "config.yaml"
	DatabaseFileName = "clientdesk.db"
	LogFileName      = "clientdesk.log"
)

// platformDir holds the OS lookups so tests can replace them.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $<xdgVar>/clientdesk, falling back to ~/<fallback...>/clientdesk.
// Non-Linux systems use os.UserConfigDir for both config and data.
func xdgDir(xdgVar string, fallback ...string) (string, error) {
	if runtime.GOOS != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/clientdesk (fallback ~/.config/clientdesk)
// macOS:   ~/Library/Application Support/clientdesk
// Windows: %APPDATA%/clientdesk
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
// Linux:   $XDG_DATA_HOME/clientdesk (fallback ~/.local/share/clientdesk)
// macOS and Windows share the config directory.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", ".local", "share")
}

// ResolveConfigDir applies the precedence flag > CLIENTDESK_CONFIG_DIR > default.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir applies the precedence
// flag > CLIENTDESK_DATA_DIR > data_dir from config.yaml > default.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	return DefaultDataDir()
}

// ConfigFile returns the config.yaml path inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// LogFile returns the log file path inside dir.
func LogFile(dir string) string {
	return filepath.Join(dir, LogFileName)
}
