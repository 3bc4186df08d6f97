package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/retrofit/internal/config"
)

// writeMarker creates a minimal retrofit.yaml in the given directory.
func writeMarker(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retrofit.yaml"), []byte("name: test\n"), 0644))
}

func TestResolveProjectDir_FlagOverride(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")
	flagDir := t.TempDir()

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".retrofit"), got)
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveProjectDir_FlagOverridesEnv(t *testing.T) {
	flagDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, t.TempDir())

	got := config.ResolveProjectDir(context.Background(), flagDir, "/does/not/matter")

	assert.Equal(t, filepath.Join(flagDir, ".retrofit"), got)
}

func TestResolveProjectDir_EnvVarOverride(t *testing.T) {
	envDir := t.TempDir()
	t.Setenv(config.EnvProjectDir, envDir)

	got := config.ResolveProjectDir(context.Background(), "", "/does/not/matter")

	assert.Equal(t, filepath.Join(envDir, ".retrofit"), got)
}

func TestResolveProjectDir_WalkUp(t *testing.T) {
	root := t.TempDir()
	writeMarker(t, root)
	subDir := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	t.Setenv(config.EnvProjectDir, "")

	got := config.ResolveProjectDir(context.Background(), "", subDir)

	assert.Equal(t, filepath.Join(root, ".retrofit"), got)
}

func TestResolveProjectDir_NearestMarkerWins(t *testing.T) {
	root := t.TempDir()
	dirA := filepath.Join(root, "a")
	dirB := filepath.Join(dirA, "b")
	dirC := filepath.Join(dirB, "c")
	require.NoError(t, os.MkdirAll(dirC, 0755))
	writeMarker(t, dirA)
	writeMarker(t, dirB)
	t.Setenv(config.EnvProjectDir, "")

	got := config.ResolveProjectDir(context.Background(), "", dirC)

	assert.Equal(t, filepath.Join(dirB, ".retrofit"), got)
}

func TestResolveProjectDir_NoProject(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")

	assert.Empty(t, config.ResolveProjectDir(context.Background(), "", t.TempDir()))
	assert.Empty(t, config.ResolveProjectDir(context.Background(), "", "/"))
}

func TestResolveProjectDir_SuffixNotDoubled(t *testing.T) {
	t.Setenv(config.EnvProjectDir, "")

	got := config.ResolveProjectDir(context.Background(), "/my/project/.retrofit", "")

	assert.Equal(t, "/my/project/.retrofit", got)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "retrofit.yml"), nil, 0644))

	got, err := config.FindProjectRoot(root)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = config.FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, config.ErrNoProject)
}

func TestSetResolvedProjectDir_RoundTrip(t *testing.T) {
	orig := config.GetResolvedProjectDir()
	t.Cleanup(func() { config.SetResolvedProjectDir(orig) })

	config.SetResolvedProjectDir("/some/project/.retrofit")
	assert.Equal(t, "/some/project/.retrofit", config.GetResolvedProjectDir())

	config.SetResolvedProjectDir("")
	assert.Empty(t, config.GetResolvedProjectDir())
}

func TestNewWithProjectDir(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvLogLevel, "")
	ctx := context.Background()

	t.Run("no project dir", func(t *testing.T) {
		cfg := config.NewWithProjectDir(ctx, "")
		assert.Equal(t, config.FormatAuto, cfg.Output.DefaultFormat)
	})

	t.Run("missing overlay", func(t *testing.T) {
		cfg := config.NewWithProjectDir(ctx, t.TempDir())
		assert.Equal(t, config.FormatAuto, cfg.Output.DefaultFormat)
	})

	t.Run("overlay applied", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
output:
  default_format: json
  precision: 1
`), 0600))

		cfg := config.NewWithProjectDir(ctx, dir)
		assert.Equal(t, config.FormatJSON, cfg.Output.DefaultFormat)
		assert.Equal(t, 1, cfg.Output.Precision)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("env beats overlay", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output:\n  default_format: json\n"), 0600))
		t.Setenv(config.EnvOutput, "table")

		cfg := config.NewWithProjectDir(ctx, dir)
		assert.Equal(t, config.FormatTable, cfg.Output.DefaultFormat)
	})

	t.Run("corrupt overlay falls back", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("output: [bad"), 0600))

		cfg := config.NewWithProjectDir(ctx, dir)
		assert.Equal(t, config.FormatAuto, cfg.Output.DefaultFormat)
	})
}
