package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/retrofit/internal/config"
)

// newDefaultTarget returns a Config with known non-zero values so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			HorizonYears:  15,
			DiscountRate:  0.06,
			DefaultTariff: 0.85,
		},
		Storage: config.StorageConfig{
			Directory:  "/home/user/.retrofit/projects",
			ProjectKey: "retrofit-project-state",
		},
		Logging: config.LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Output: config.OutputConfig{
			DefaultFormat: "table",
			Precision:     2,
		},
	}
}

// writeOverlay writes YAML content to a temp file and returns its path.
func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
output:
  default_format: json
  precision: 4
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "json", target.Output.DefaultFormat)
	assert.Equal(t, 4, target.Output.Precision)

	assert.Equal(t, "info", target.Logging.Level)
	assert.Equal(t, 15, target.Engine.HorizonYears)
}

func TestShallowMergeYAML_MultipleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
engine:
  horizon_years: 20
  discount_rate: 0.08
  default_tariff: 0.72
storage:
  directory: /srv/retrofit
  project_key: plant-a
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, 20, target.Engine.HorizonYears)
	assert.InDelta(t, 0.08, target.Engine.DiscountRate, 1e-9)
	assert.InDelta(t, 0.72, target.Engine.DefaultTariff, 1e-9)
	assert.Equal(t, "/srv/retrofit", target.Storage.Directory)
	assert.Equal(t, "plant-a", target.Storage.ProjectKey)
	assert.Equal(t, "table", target.Output.DefaultFormat)
}

func TestShallowMergeYAML_EmptyOverlayFile(t *testing.T) {
	target := newDefaultTarget()
	want := newDefaultTarget()

	require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, "")))
	assert.Equal(t, want, target)
}

func TestShallowMergeYAML_CommentOnlyFile(t *testing.T) {
	target := newDefaultTarget()
	want := newDefaultTarget()

	require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, "# nothing here\n")))
	assert.Equal(t, want, target)
}

func TestShallowMergeYAML_CorruptedYAMLReturnsError(t *testing.T) {
	err := config.ShallowMergeYAML(newDefaultTarget(), writeOverlay(t, "output: [unclosed"))
	assert.Error(t, err)
}

func TestShallowMergeYAML_MissingFileReturnsError(t *testing.T) {
	err := config.ShallowMergeYAML(newDefaultTarget(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShallowMergeYAML_NilTarget(t *testing.T) {
	assert.Error(t, config.ShallowMergeYAML(nil, writeOverlay(t, "output: {}")))
}

func TestShallowMergeYAML_ZeroValueFieldsReplaceDefaults(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
engine:
  default_tariff: 0.9
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	// The whole section is replaced, so unset fields become zero.
	assert.InDelta(t, 0.9, target.Engine.DefaultTariff, 1e-9)
	assert.Zero(t, target.Engine.HorizonYears)
	assert.Zero(t, target.Engine.DiscountRate)
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
plugins:
  aws: {}
logging:
  level: debug
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))
	assert.Equal(t, "debug", target.Logging.Level)
	assert.Empty(t, target.Logging.Format)
}

func TestShallowMergeYAML_TypeMismatchReturnsError(t *testing.T) {
	overlay := writeOverlay(t, `
engine:
  horizon_years: twenty
`)
	assert.Error(t, config.ShallowMergeYAML(newDefaultTarget(), overlay))
}
