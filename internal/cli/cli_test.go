package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/retrofit/internal/calc"
	"github.com/rshade/retrofit/internal/cli"
	"github.com/rshade/retrofit/internal/config"
	"github.com/rshade/retrofit/internal/engine"
	"github.com/rshade/retrofit/internal/persist"
	"github.com/rshade/retrofit/internal/project"
	"github.com/rshade/retrofit/internal/simulate"
)

// setupCLITest isolates config, store and project discovery for one test.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvOutput, "")
	t.Setenv(config.EnvStoreDir, "")
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

// run executes the root command and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func showReport(t *testing.T) engine.Report {
	t.Helper()
	out, err := run(t, "project", "show", "-o", "json")
	require.NoError(t, err)
	var rep engine.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	return rep
}

func TestRootCmd_Help(t *testing.T) {
	setupCLITest(t)
	out, err := run(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"calc", "project", "module", "curve", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestModuleToggle(t *testing.T) {
	setupCLITest(t)

	rep := showReport(t)
	assert.Empty(t, rep.Summary.ActiveModules)

	out, err := run(t, "module", "toggle", "solar")
	require.NoError(t, err)
	assert.Contains(t, out, "activated")

	rep = showReport(t)
	assert.Equal(t, []project.ModuleKey{project.KeySolar}, rep.Summary.ActiveModules)
	assert.Positive(t, rep.Summary.TotalInvestment)

	_, err = run(t, "module", "toggle", "retrofit-solar", "--off")
	require.NoError(t, err)
	assert.Empty(t, showReport(t).Summary.ActiveModules)

	_, err = run(t, "module", "toggle", "solar", "--on", "--off")
	assert.Error(t, err)
}

func TestModuleShow_UnknownModule(t *testing.T) {
	setupCLITest(t)
	_, err := run(t, "module", "show", "wind")
	require.ErrorIs(t, err, engine.ErrUnknownModule)
}

func TestModuleList(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "module", "list", "-o", "table")
	require.NoError(t, err)
	for _, k := range project.AllKeys() {
		assert.Contains(t, out, string(k))
	}

	out, err = run(t, "module", "list", "-o", "json")
	require.NoError(t, err)
	var views []struct {
		Module project.Module `json:"module"`
		Tier   int            `json:"tier"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, len(project.AllKeys()))
	for _, v := range views {
		switch v.Module.ID {
		case project.KeyCarbon:
			assert.Equal(t, 2, v.Tier)
		case project.KeyVPP, project.KeyMicrogrid:
			assert.Equal(t, 1, v.Tier)
		default:
			assert.Equal(t, 0, v.Tier, v.Module.ID)
		}
	}
}

func TestModuleSet(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "module", "set", "storage", "--merge", "--params", `{"powerKW": 500}`)
	require.NoError(t, err)

	out, err := run(t, "module", "show", "storage", "-o", "json")
	require.NoError(t, err)
	var view struct {
		Module project.Module `json:"module"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	p, err := calc.Decode[calc.StorageParams](view.Module.Params)
	require.NoError(t, err)
	assert.InDelta(t, 500, p.PowerKW, 1e-9)
	assert.InDelta(t, calc.DefaultStorageParams().CapacityKWh, p.CapacityKWh, 1e-9)

	_, err = run(t, "module", "set", "storage", "--params", `{"powerKW": "lots"}`)
	require.ErrorIs(t, err, calc.ErrInvalidParams)

	_, err = run(t, "module", "set", "storage")
	assert.Error(t, err)
}

func TestProjectExportResetImport(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()

	_, err := run(t, "module", "toggle", "hvac", "--on")
	require.NoError(t, err)

	out, err := run(t, "project", "export", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Project exported to")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	exported := filepath.Join(dir, entries[0].Name())
	assert.Contains(t, entries[0].Name(), "_config_")

	_, err = run(t, "project", "reset")
	require.NoError(t, err)
	assert.Empty(t, showReport(t).Summary.ActiveModules)

	out, err = run(t, "project", "import", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")
	assert.Equal(t, []project.ModuleKey{project.KeyHVAC}, showReport(t).Summary.ActiveModules)
}

func TestProjectImport_RejectsInvalidDocument(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "module", "toggle", "lighting", "--on")
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"projectBaseInfo": {"name": "x"}}`), 0o600))

	_, err = run(t, "project", "import", bad)
	require.ErrorIs(t, err, persist.ErrImportRejected)
	assert.Equal(t, []project.ModuleKey{project.KeyLighting}, showReport(t).Summary.ActiveModules)
}

func TestProjectExport_Stdout(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "project", "export", "--out", "-")
	require.NoError(t, err)
	res := persist.Validate([]byte(out))
	assert.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
}

func writeDocument(t *testing.T, dir, name string, s *project.State) string {
	t.Helper()
	data, err := persist.Export(s, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestCalc(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()

	s := persist.DefaultState()
	s.BaseInfo.Name = "Plant A"
	m := s.Modules[project.KeySolar]
	m.IsActive = true
	s.Modules[project.KeySolar] = m
	good := writeDocument(t, dir, "a.json", s)

	out, err := run(t, "calc", good, "-o", "json")
	require.NoError(t, err)

	var outcomes []struct {
		File   string         `json:"file"`
		Report *engine.Report `json:"report"`
		Error  string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, good, outcomes[0].File)
	require.NotNil(t, outcomes[0].Report)
	assert.Equal(t, []project.ModuleKey{project.KeySolar}, outcomes[0].Report.Summary.ActiveModules)
	assert.Empty(t, outcomes[0].Error)

	// calc never touches the working project.
	assert.Empty(t, showReport(t).Summary.ActiveModules)
}

func TestCalc_PartialFailure(t *testing.T) {
	setupCLITest(t)
	dir := t.TempDir()

	good := writeDocument(t, dir, "good.json", persist.DefaultState())
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1, 2, 3]`), 0o600))
	missing := filepath.Join(dir, "missing.json")

	out, err := run(t, "calc", good, bad, missing, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3")

	var outcomes []struct {
		File  string `json:"file"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 3)
	assert.Equal(t, []string{good, bad, missing},
		[]string{outcomes[0].File, outcomes[1].File, outcomes[2].File})
	assert.Empty(t, outcomes[0].Error)
	assert.NotEmpty(t, outcomes[1].Error)
	assert.Contains(t, outcomes[2].Error, "reading")
}

func TestCalc_Table(t *testing.T) {
	setupCLITest(t)
	good := writeDocument(t, t.TempDir(), "a.json", persist.DefaultState())

	out, err := run(t, "calc", good, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "== "+good+" ==")
}

func TestCalc_RequiresArgs(t *testing.T) {
	setupCLITest(t)
	_, err := run(t, "calc")
	assert.Error(t, err)
}

func TestCurveCommands(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "curve", "load", "-o", "json")
	require.NoError(t, err)
	var hours []simulate.HourPoint
	require.NoError(t, json.Unmarshal([]byte(out), &hours))
	assert.Len(t, hours, 24)

	out, err = run(t, "curve", "monthly", "-o", "json")
	require.NoError(t, err)
	var months []simulate.MonthPoint
	require.NoError(t, json.Unmarshal([]byte(out), &months))
	assert.Len(t, months, 12)

	out, err = run(t, "curve", "load", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "23:00")
}

func TestConfigInit_Global(t *testing.T) {
	home := setupCLITest(t)

	out, err := run(t, "config", "init", "--global")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote configuration to "+filepath.Join(home, "config.yaml"))
	assert.FileExists(t, filepath.Join(home, "config.yaml"))

	_, err = run(t, "config", "init", "--global")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, "config", "init", "--global", "--force")
	require.NoError(t, err)
}

func TestConfigInit_Project(t *testing.T) {
	setupCLITest(t)
	projectRoot := t.TempDir()

	out, err := run(t, "config", "init", "--project-dir", projectRoot, "--tariff", "0.72")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved an empty working project")

	dotDir := filepath.Join(projectRoot, ".retrofit")
	saved := filepath.Join(dotDir, "projects", persist.DefaultKey+".json")
	assert.FileExists(t, filepath.Join(dotDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(dotDir, ".gitignore"))
	assert.FileExists(t, saved)

	rep := func() engine.Report {
		out, err := run(t, "project", "show", "-o", "json", "--project-dir", projectRoot)
		require.NoError(t, err)
		var r engine.Report
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		return r
	}
	raw, err := os.ReadFile(saved)
	require.NoError(t, err)
	var doc persist.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.NotNil(t, doc.PriceConfig)
	assert.InDelta(t, 0.72, doc.PriceConfig.FixedPrice, 1e-9)
	assert.Empty(t, rep().Summary.ActiveModules)

	_, err = run(t, "module", "toggle", "water", "--on", "--project-dir", projectRoot)
	require.NoError(t, err)

	// A forced re-init rewrites the config but keeps the saved project.
	out, err = run(t, "config", "init", "--project-dir", projectRoot, "--force")
	require.NoError(t, err)
	assert.NotContains(t, out, "Saved an empty working project")
	assert.Equal(t, []project.ModuleKey{project.KeyWater}, rep().Summary.ActiveModules)
}

func TestConfigInit_RejectsInvalidValues(t *testing.T) {
	home := setupCLITest(t)

	_, err := run(t, "config", "init", "--global", "--discount", "1.5")
	require.ErrorIs(t, err, config.ErrInvalidDiscount)
	assert.NoFileExists(t, filepath.Join(home, "config.yaml"))

	_, err = run(t, "config", "init", "--global", "--tariff", "0")
	require.ErrorIs(t, err, config.ErrInvalidTariff)
}

func TestConfigInit_Print(t *testing.T) {
	home := setupCLITest(t)

	out, err := run(t, "config", "init", "--global", "--print", "--horizon", "15")
	require.NoError(t, err)
	assert.Contains(t, out, "horizon_years: 15")
	assert.NoFileExists(t, filepath.Join(home, "config.yaml"))
}

func TestOutputPrecision(t *testing.T) {
	home := setupCLITest(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("output:\n  precision: 4\n"), 0o600))

	out, err := run(t, "module", "show", "solar", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "175.0000 wan")

	out, err = run(t, "project", "show", "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "0.0000")
}

func TestConfigValidateAndShow(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Store dir:")

	out, err = run(t, "config", "show", "-o", "json")
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Contains(t, cfg, "engine")
	assert.Contains(t, cfg, "storage")
}

func TestStoreDirFlag(t *testing.T) {
	setupCLITest(t)
	storeDir := t.TempDir()

	_, err := run(t, "module", "toggle", "ev", "--on", "--store-dir", storeDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(storeDir, persist.DefaultKey+".json"))
}
