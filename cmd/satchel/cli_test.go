package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/internal/logger"
	"github.com/mesh-intelligence/satchel/pkg/sqlite"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// testEnv holds isolated config and data directories for one test.
type testEnv struct {
	configDir string
	dataDir   string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	color.NoColor = true
	t.Setenv("SATCHEL_CATALOG", "")
	t.Setenv("SATCHEL_LOG_LEVEL", "error")
	return testEnv{configDir: t.TempDir(), dataDir: t.TempDir()}
}

// resetFlags restores every flag under cmd to its default so that
// consecutive Execute calls do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI in-process and returns its standard output.
func (e testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = settings{}
	log = logger.Nop()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := e.run(t, stdin, args...)
	require.NoError(t, err, out)
	return out
}

// getRecord fetches an item through the CLI and returns its stored record.
func (e testEnv) getRecord(t *testing.T, id string) map[string]any {
	t.Helper()
	out := e.mustRun(t, "", "get", id, "--json")
	var view struct {
		Record  map[string]any `json:"record"`
		Summary string         `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	return view.Record
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "", "version")
	assert.Equal(t, "satchel "+version+"\n", out)
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "", "init")
	assert.Contains(t, out, "satchel initialized")
	assert.Contains(t, out, env.dataDir)
	assert.FileExists(t, env.configDir+"/config.yaml")
	assert.FileExists(t, env.dataDir+"/items.jsonl")
}

func TestPutGet_Canonical(t *testing.T) {
	env := newTestEnv(t)
	id := strings.TrimSpace(env.mustRun(t, "type: STONE\namount: 1\ndamage: 0\n", "put"))
	require.NotEmpty(t, id)

	rec := env.getRecord(t, id)
	assert.Equal(t, map[string]any{"type": "STONE"}, rec)
}

func TestPut_LegacyEnchantmentsBecomeMeta(t *testing.T) {
	env := newTestEnv(t)
	in := `{"type": "DIAMOND_SWORD", "enchantments": {"DAMAGE_ALL": 12, "NOPE": 1}}`
	id := strings.TrimSpace(env.mustRun(t, in, "put"))

	rec := env.getRecord(t, id)
	assert.NotContains(t, rec, "enchantments")
	meta, ok := rec["meta"].(map[string]any)
	require.True(t, ok, "meta should be a mapping: %v", rec)
	assert.Equal(t, map[string]any{"SHARPNESS": float64(12)}, meta["enchants"])
}

func TestPut_UnknownTypeIsUserError(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "type: NOT_A_THING\n", "put")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.True(t, errors.Is(err, types.ErrUnknownMaterial))
}

func TestPut_MissingTypeIsUserError(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "amount: 3\n", "put")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.True(t, errors.Is(err, types.ErrMissingType))
}

func TestEdit(t *testing.T) {
	env := newTestEnv(t)
	id := strings.TrimSpace(env.mustRun(t, "type: DIAMOND_SWORD\n", "put"))

	env.mustRun(t, "", "edit", id,
		"--name", "Edge",
		"--lore", "first, with a comma", "--lore", "second",
		"--flag", "hide_enchants",
		"--unbreakable",
		"--amount", "2")

	rec := env.getRecord(t, id)
	assert.Equal(t, float64(2), rec["amount"])
	meta := rec["meta"].(map[string]any)
	assert.Equal(t, "UNSPECIFIC", meta["meta-type"])
	assert.Equal(t, "Edge", meta["display-name"])
	assert.Equal(t, []any{"first, with a comma", "second"}, meta["lore"])
	assert.Equal(t, []any{"HIDE_ENCHANTS"}, meta["ItemFlags"])
	assert.Equal(t, true, meta["Unbreakable"])

	env.mustRun(t, "", "edit", id,
		"--clear-name", "--clear-lore", "--unflag", "HIDE_ENCHANTS", "--unbreakable=false", "--amount", "1")
	rec = env.getRecord(t, id)
	assert.Equal(t, map[string]any{"type": "DIAMOND_SWORD"}, rec)
}

func TestEdit_UnknownFlag(t *testing.T) {
	env := newTestEnv(t)
	id := strings.TrimSpace(env.mustRun(t, "type: STONE\n", "put"))
	_, err := env.run(t, "", "edit", id, "--flag", "HIDE_NOTHING")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.True(t, errors.Is(err, types.ErrUnknownItemFlag))
}

func TestEnchant(t *testing.T) {
	env := newTestEnv(t)
	id := strings.TrimSpace(env.mustRun(t, "type: DIAMOND_SWORD\n", "put"))

	out := env.mustRun(t, "", "enchant", id, "sharpness", "5")
	assert.Contains(t, out, "added SHARPNESS 5")

	_, err := env.run(t, "", "enchant", id, "sharpness", "6")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidLevel))
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = env.run(t, "", "enchant", id, "efficiency", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrNotApplicable))

	env.mustRun(t, "", "enchant", id, "DIG_SPEED", "9", "--unsafe")
	meta := env.getRecord(t, id)["meta"].(map[string]any)
	assert.Equal(t, map[string]any{"SHARPNESS": float64(5), "EFFICIENCY": float64(9)}, meta["enchants"])

	out = env.mustRun(t, "", "enchant", id, "sharpness", "--remove")
	assert.Contains(t, out, "removed SHARPNESS 5")
	out = env.mustRun(t, "", "enchant", id, "sharpness", "--remove")
	assert.Contains(t, out, "has no SHARPNESS")
}

func TestEnchant_UnknownName(t *testing.T) {
	env := newTestEnv(t)
	id := strings.TrimSpace(env.mustRun(t, "type: DIAMOND_SWORD\n", "put"))
	_, err := env.run(t, "", "enchant", id, "vorpal", "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnknownEnchantment))
}

func TestCompare(t *testing.T) {
	env := newTestEnv(t)
	a := strings.TrimSpace(env.mustRun(t, "{type: STONE, amount: 3}", "put"))
	b := strings.TrimSpace(env.mustRun(t, "{type: STONE, amount: 5}", "put"))

	out := env.mustRun(t, "", "compare", a, b, "--json")
	var c comparison
	require.NoError(t, json.Unmarshal([]byte(out), &c))
	assert.False(t, c.Equal)
	assert.True(t, c.Similar)
	assert.Equal(t, c.HashA, c.HashB)

	out = env.mustRun(t, "", "compare", a, a)
	assert.Contains(t, out, "equal:   yes")
}

func TestListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	stone := strings.TrimSpace(env.mustRun(t, "type: STONE\n", "put"))
	env.mustRun(t, "type: DIRT\n", "put")

	out := env.mustRun(t, "", "list", "--type", "STONE", "--json")
	var views []entryView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.Equal(t, stone, views[0].ItemID)
	assert.Equal(t, "ItemStack{STONE x 1}", views[0].Summary)

	out = env.mustRun(t, "", "list")
	assert.Contains(t, out, "DIRT")
	assert.Contains(t, out, "STONE")

	env.mustRun(t, "", "delete", stone)
	_, err := env.run(t, "", "get", stone)
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.True(t, errors.Is(err, types.ErrNotFound))
}

func TestMigrate(t *testing.T) {
	env := newTestEnv(t)

	// Seed the stash directly with a record from an older generation.
	stash := sqlite.NewBackend()
	require.NoError(t, stash.Attach(types.Config{Backend: types.BackendSQLite, DataDir: env.dataDir}))
	legacy := types.NewRecord()
	legacy.Set("type", "DIAMOND_SWORD")
	legacy.Set("amount", 1)
	enchants := types.NewRecord()
	enchants.Set("DAMAGE_ALL", 3)
	legacy.Set("enchantments", enchants)
	id, err := stash.Put("", legacy)
	require.NoError(t, err)
	require.NoError(t, stash.Detach())

	out := env.mustRun(t, "", "migrate", "--dry-run")
	assert.Contains(t, out, "would rewrite 1 of 1 items")
	assert.Contains(t, env.getRecord(t, id), "enchantments")

	out = env.mustRun(t, "", "migrate")
	assert.Contains(t, out, "rewrote 1 of 1 items")
	rec := env.getRecord(t, id)
	assert.NotContains(t, rec, "enchantments")
	assert.NotContains(t, rec, "amount")

	out = env.mustRun(t, "", "migrate")
	assert.Contains(t, out, "rewrote 0 of 1 items")
}

func TestPut_OnCloseSyncPersistsOnDetach(t *testing.T) {
	env := newTestEnv(t)
	cfgYAML := "backend: sqlite\nsync_strategy: on_close\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.configDir, "config.yaml"), []byte(cfgYAML), 0o644))

	id := strings.TrimSpace(env.mustRun(t, "type: STONE\n", "put"))

	data, err := os.ReadFile(filepath.Join(env.dataDir, "items.jsonl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], id)
}

// detachFailingStore is a stash whose final flush fails.
type detachFailingStore struct {
	types.Store
}

func (detachFailingStore) Detach() error {
	return errors.New("flush pending writes: disk full")
}

func TestDetach_ReportsFlushFailure(t *testing.T) {
	run := func(result error) (err error) {
		defer detach(detachFailingStore{}, &err)
		return result
	}

	err := run(nil)
	require.Error(t, err, "a lost write must not exit 0")
	assert.Equal(t, exitSysError, exitCode(err))
	assert.Contains(t, err.Error(), "disk full")

	err = run(userError(types.ErrNotFound))
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(errors.New("bad args")))
	assert.Equal(t, exitUserError, exitCode(userError(errors.New("x"))))
	assert.Equal(t, exitSysError, exitCode(sysError(errors.New("x"))))
	assert.Equal(t, exitUserError, exitCode(storeError(types.ErrNotFound)))
	assert.Equal(t, exitSysError, exitCode(storeError(errors.New("disk full"))))
}

func TestParseRecord(t *testing.T) {
	_, err := parseRecord([]byte("  \n"))
	assert.Error(t, err)

	_, err = parseRecord([]byte("[1, 2]"))
	assert.True(t, errors.Is(err, types.ErrMalformedData))

	rec, err := parseRecord([]byte(`{"type": "STONE", "damage": 2}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"type", "damage"}, rec.Keys())
}
