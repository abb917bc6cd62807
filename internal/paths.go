package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "recap"

// DataPaths holds the resolved on-disk locations for recap data.
type DataPaths struct {
	BaseDir       string // application data directory
	RecordingsDir string // screenshots and assembled videos
	DatabasePath  string // sqlite database file
}

// DefaultDataPaths resolves the platform-specific application data directory.
func DefaultDataPaths() (DataPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var base string
	switch runtime.GOOS {
	case "darwin":
		base = filepath.Join(home, "Library", "Application Support", appName)
	case "linux":
		base = filepath.Join(home, ".local", "share", appName)
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			base = filepath.Join(localAppData, appName)
		} else {
			base = filepath.Join(home, "AppData", "Local", appName)
		}
	default:
		return DataPaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return pathsUnder(base), nil
}

// ResolveDataPaths returns the default paths, or paths rooted at override
// when it is non-empty.
func ResolveDataPaths(override string) (DataPaths, error) {
	if override == "" {
		return DefaultDataPaths()
	}
	abs, err := filepath.Abs(override)
	if err != nil {
		return DataPaths{}, fmt.Errorf("invalid storage path %q: %w", override, err)
	}
	return pathsUnder(abs), nil
}

func pathsUnder(base string) DataPaths {
	return DataPaths{
		BaseDir:       base,
		RecordingsDir: filepath.Join(base, "recordings"),
		DatabasePath:  filepath.Join(base, appName+".db"),
	}
}

// DatabaseExists reports whether the database file is already present.
func (p DataPaths) DatabaseExists() bool {
	_, err := os.Stat(p.DatabasePath)
	return err == nil
}

// EnsureDir creates a directory if it does not exist yet.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
