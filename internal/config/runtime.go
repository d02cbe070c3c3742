package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimePath = ".tuskrelay"

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("RELAY_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimePath
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
