// Package dbpath resolves the local SQLite database location shared by
// the CLI commands.
package dbpath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Resolve returns the SQLite path to use: the override when given,
// otherwise ~/.pathfinder/pathfinder.db, creating the directory when
// needed.
func Resolve(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	dir := filepath.Join(home, ".pathfinder")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create %s: %w", dir, err)
	}

	return filepath.Join(dir, "pathfinder.db"), nil
}
