// Package dotdir manages the .bridge/ and ~/.bridge directories that hold the
// bridge configuration and, by default, its SQLite session store.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the bridge directory.
	dirName = ".bridge"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .bridge/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.bridge/ dir
//  3. Home ~/.bridge/ dir
//
// An empty path is returned when no override is given and neither directory
// exists.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		return m.create(overrideDir)
	}

	if dir, ok := m.localDir(); ok {
		return filepath.Abs(dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	dir := filepath.Join(home, dirName)
	if isDir(dir) {
		return filepath.Abs(dir)
	}

	return "", nil
}

// Init resolves the directory like Target but creates ~/.bridge/ when nothing
// exists yet.
func (m *Manager) Init(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return m.create(filepath.Join(home, dirName))
}

func (m *Manager) create(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating bridge directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDir reports the .bridge/ directory in the current working directory,
// if there is one.
func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	dir := filepath.Join(cwd, dirName)
	return dir, isDir(dir)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
