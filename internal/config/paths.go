// Package config resolves named cloud configurations from clouds.yaml,
// secure.yaml and OS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

const (
	// CloudsFile is the file name searched for in every config directory.
	CloudsFile = "clouds.yaml"
	// SecureFile holds secrets that are merged over CloudsFile.
	SecureFile = "secure.yaml"
	// ConfigDir is the directory name under XDG_CONFIG_HOME and /etc.
	ConfigDir = "openstack"
	// DotEnvFile is loaded from the working directory before the environment is read.
	DotEnvFile = ".env"
)

// DefaultConfigFiles returns the clouds.yaml search path in priority order.
// OS_CLIENT_CONFIG_FILE, when set, is searched first.
func DefaultConfigFiles() []string {
	var files []string
	if f := os.Getenv("OS_CLIENT_CONFIG_FILE"); f != "" {
		files = append(files, ExpandPath(f))
	}
	if cwd, err := os.Getwd(); err == nil {
		files = append(files, filepath.Join(cwd, CloudsFile))
	}
	if dir := userConfigDir(); dir != "" {
		files = append(files, filepath.Join(dir, ConfigDir, CloudsFile))
	}
	files = append(files, filepath.Join("/etc", ConfigDir, CloudsFile))
	return files
}

// SecureFileFor returns the secure.yaml that accompanies a clouds file.
// OS_CLIENT_SECURE_FILE overrides the sibling lookup.
func SecureFileFor(cloudsPath string) string {
	if f := os.Getenv("OS_CLIENT_SECURE_FILE"); f != "" {
		return ExpandPath(f)
	}
	return filepath.Join(filepath.Dir(cloudsPath), SecureFile)
}

// userConfigDir respects XDG_CONFIG_HOME, defaulting to ~/.config.
func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// firstExisting returns the first regular file in paths, or "" if none exist.
func firstExisting(paths []string) string {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// LoadDotEnv loads OS_* variables from a .env file in dir.
// Variables already present in the process environment win.
// A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, DotEnvFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
