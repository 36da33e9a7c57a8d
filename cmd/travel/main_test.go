package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/travel/internal/config"
	"github.com/cory-johannsen/travel/internal/game/travel"
	"github.com/cory-johannsen/travel/internal/plugin"
)

// sevens rolls a 7 on every die.
type sevens struct{}

func (sevens) Intn(n int) int { return 6 % n }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Settings.Path = filepath.Join(t.TempDir(), "settings.yaml")
	return cfg
}

func runCLI(t *testing.T, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, zaptest.NewLogger(t), sevens{}, args, &out)
	return out.String(), err
}

func TestRun_RollOnFootThenMounted(t *testing.T) {
	cfg := testConfig(t)

	out, err := runCLI(t, cfg, "roll")
	require.NoError(t, err)
	assert.Equal(t, "Distance: 3 miles\nEncounter: No encounter\n", out)

	out, err = runCLI(t, cfg, "mounted", "on")
	require.NoError(t, err)
	assert.Equal(t, "Mounted Travel: true\n", out)

	// the flag survives across invocations through the file store
	out, err = runCLI(t, cfg, "roll")
	require.NoError(t, err)
	assert.Equal(t, "Distance: 6 miles\nEncounter: No encounter\n", out)

	out, err = runCLI(t, cfg, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Mounted Travel")
}

func TestRun_UsageErrors(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{nil, {"fly"}, {"mounted"}} {
		_, err := runCLI(t, cfg, args...)
		assert.ErrorIs(t, err, errUsage, "args %v", args)
	}
	_, err := runCLI(t, cfg, "mounted", "sideways")
	assert.ErrorContains(t, err, "expected on or off")
}

func TestRun_StrictTableRejectsTwoD20(t *testing.T) {
	cfg := testConfig(t)
	cfg.Travel.Fallback = false
	_, err := runCLI(t, cfg, "roll")
	assert.ErrorIs(t, err, plugin.ErrUncoveredRange)

	// a mechanic confined to [2, 18] needs no fallback
	cfg.Travel.Dice = "d17+1"
	out, err := runCLI(t, cfg, "roll")
	require.NoError(t, err)
	assert.Equal(t, "Distance: 2 miles\nEncounter: Minor combat encounter\n", out)
}

func TestLoadTable(t *testing.T) {
	table, err := loadTable(config.TravelConfig{Fallback: true})
	require.NoError(t, err)
	assert.Equal(t, travel.HardenedTable(), table)

	table, err = loadTable(config.TravelConfig{})
	require.NoError(t, err)
	assert.Nil(t, table.Fallback)

	table, err = loadTable(config.TravelConfig{TablePath: filepath.Join("..", "..", "content", "travel", "default.yaml")})
	require.NoError(t, err)
	assert.NotNil(t, table.Fallback)

	_, err = loadTable(config.TravelConfig{TablePath: "/nonexistent.yaml"})
	assert.Error(t, err)
}

func TestOpenStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Settings.Backend = config.BackendMemory
	store, release, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	defer release()
	_, err = store.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, plugin.ErrNotFound)

	cfg.Settings.Backend = "redis"
	_, _, err = openStore(context.Background(), cfg)
	assert.Error(t, err)
}

func TestParseOnOff(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "TRUE": true, "yes": true, "off": false, "No": false} {
		got, err := parseOnOff(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
