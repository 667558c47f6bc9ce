package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "HOPMAP_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "hopmap.yaml"
	// ConfigDirName is the directory under the user and system config roots
	ConfigDirName = "hopmap"
)

// SearchPaths lists the config locations in lookup order: $HOPMAP_CONFIG,
// ./hopmap.yaml, then config.yaml under $XDG_CONFIG_HOME/hopmap,
// ~/.config/hopmap and /etc/hopmap. Unset variables are skipped.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(EnvConfigPath); p != "" {
		paths = append(paths, p)
	}
	if abs, err := filepath.Abs(ConfigFileName); err == nil {
		paths = append(paths, abs)
	} else {
		paths = append(paths, ConfigFileName)
	}
	paths = append(paths, userConfigPaths()...)
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing entry of SearchPaths, or "" when
// there is none
func FindConfigPath() string {
	for _, p := range SearchPaths() {
		if fileExists(p) {
			return p
		}
	}
	return ""
}

// DefaultConfigPath is where a new config is written: the first per-user
// location, or the working directory when no home is known
func DefaultConfigPath() string {
	if user := userConfigPaths(); len(user) > 0 {
		return user[0]
	}
	return ConfigFileName
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func userConfigPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return paths
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
