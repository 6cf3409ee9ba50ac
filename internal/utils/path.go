package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDirCandidates lists the per-user config directories for app in
// order of preference for the current platform.
func ConfigDirCandidates(app string) []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, app))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return dirs
	}
	switch runtime.GOOS {
	case "darwin":
		dirs = append(dirs,
			filepath.Join(home, ".config", app),
			filepath.Join(home, "Library", "Application Support", app))
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			dirs = append(dirs, filepath.Join(appData, app))
		}
		dirs = append(dirs, filepath.Join(home, "AppData", "Roaming", app))
	default:
		dirs = append(dirs, filepath.Join(home, ".config", app))
	}
	return dirs
}

// ResolveConfigDir returns the first writable candidate for app, falling back
// to the executable's directory.
func ResolveConfigDir(app string) (string, error) {
	for _, dir := range ConfigDirCandidates(app) {
		if CheckDirStatus(dir).Writable {
			return dir, nil
		}
	}
	return GetExecutableDir()
}
