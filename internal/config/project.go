package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rshade/retrofit/internal/logging"
)

// Project directory discovery.
const (
	// EnvProjectDir overrides project discovery.
	EnvProjectDir = "RETROFIT_PROJECT_DIR"

	// projectDirName is the per-project settings directory.
	projectDirName = ".retrofit"
)

// projectMarkers are the files that mark a retrofit project root.
var projectMarkers = []string{"retrofit.yaml", "retrofit.yml"} //nolint:gochecknoglobals // Constant list

// ErrNoProject is returned by FindProjectRoot when no marker file is found.
var ErrNoProject = errors.New("no retrofit project found")

// resolvedProjectDir holds the resolved project directory path for use
// by other config functions during the lifetime of a CLI invocation.
var (
	resolvedProjectDir   string       //nolint:gochecknoglobals // Set once at startup, read by config loaders
	resolvedProjectDirMu sync.RWMutex //nolint:gochecknoglobals // Protects resolvedProjectDir
)

// SetResolvedProjectDir stores the resolved project directory for use by other config functions.
func SetResolvedProjectDir(dir string) {
	resolvedProjectDirMu.Lock()
	defer resolvedProjectDirMu.Unlock()
	resolvedProjectDir = dir
}

// GetResolvedProjectDir returns the stored resolved project directory.
func GetResolvedProjectDir() string {
	resolvedProjectDirMu.RLock()
	defer resolvedProjectDirMu.RUnlock()
	return resolvedProjectDir
}

// FindProjectRoot walks up from dir to the first directory holding a project
// marker file.
func FindProjectRoot(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	current := absDir
	for {
		for _, name := range projectMarkers {
			if _, statErr := os.Stat(filepath.Join(current, name)); statErr == nil {
				return current, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", ErrNoProject
		}
		current = parent
	}
}

// ResolveProjectDir determines the project-local .retrofit directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. RETROFIT_PROJECT_DIR env var
//  3. FindProjectRoot(startDir) walk-up
//
// Returns the path to $PROJECT/.retrofit/ or empty string if no project found.
// Does NOT create the directory.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	root, err := FindProjectRoot(startDir)
	if err != nil {
		if !errors.Is(err, ErrNoProject) {
			logging.FromContext(ctx).Warn().
				Str("component", "config").
				Err(err).
				Str("start_dir", startDir).
				Msg("unexpected error during project discovery")
		}
		return ""
	}

	return toAbsProjectDir(ctx, root)
}

// NewWithProjectDir creates a Config by loading global config then
// shallow-merging project-local config on top. If projectDir is empty,
// behaves identically to New(). Environment overrides are reapplied after the
// merge so they keep precedence over the overlay.
func NewWithProjectDir(ctx context.Context, projectDir string) *Config {
	cfg := New()

	if projectDir == "" {
		return cfg
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return cfg
	}

	cfgCopy := New()
	if err := ShallowMergeYAML(cfgCopy, overlayPath); err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global defaults")
		return cfg
	}

	cfgCopy.ApplyEnvOverrides()
	return cfgCopy
}

// toAbsProjectDir converts dir to an absolute path and appends ".retrofit"
// unless it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logging.FromContext(ctx).Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
