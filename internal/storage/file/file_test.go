package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/travel/internal/plugin"
	"github.com/cory-johannsen/travel/internal/storage/file"
)

func TestStore_LoadMissingFile(t *testing.T) {
	s := file.NewStore(filepath.Join(t.TempDir(), "settings.yaml"))
	_, err := s.Load(context.Background(), "travel-system")
	assert.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s := file.NewStore(path)

	require.NoError(t, s.Save(ctx, "travel-system", []byte("isMounted: true\n")))
	require.NoError(t, s.Save(ctx, "other", []byte("volume: 3\n")))

	got, err := s.Load(ctx, "travel-system")
	require.NoError(t, err)
	settings, err := plugin.DecodeSettings(got)
	require.NoError(t, err)
	assert.True(t, settings.IsMounted)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "travel-system:")
	assert.Contains(t, string(raw), "isMounted: true")
	assert.Contains(t, string(raw), "volume: 3")

	_, err = s.Load(ctx, "missing")
	assert.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, file.NewStore(path).Save(ctx, "k", []byte("isMounted: true\n")))

	got, err := file.NewStore(path).Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "isMounted: true\n", string(got))
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := file.NewStore(path)
	assert.Error(t, s.Save(ctx, "k", []byte("a: [unclosed")))

	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o644))
	_, err := s.Load(ctx, "k")
	assert.Error(t, err)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s := file.NewStore(path)
	assert.ErrorIs(t, s.Save(ctx, "k", []byte("isMounted: true\n")), context.Canceled)
	assert.NoFileExists(t, path)
	_, err := s.Load(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

// Property: the last saved mounted flag is the one loaded back.
func TestStore_LastWriteWins_Property(t *testing.T) {
	dir := t.TempDir()
	rapid.Check(t, func(rt *rapid.T) {
		path := filepath.Join(dir, rapid.StringMatching(`[a-z]{8}`).Draw(rt, "name")+".yaml")
		s := file.NewStore(path)
		flags := rapid.SliceOfN(rapid.Bool(), 1, 5).Draw(rt, "flags")
		for _, f := range flags {
			data, err := plugin.EncodeSettings(plugin.Settings{IsMounted: f})
			require.NoError(rt, err)
			require.NoError(rt, s.Save(context.Background(), "k", data))
		}
		got, err := s.Load(context.Background(), "k")
		require.NoError(rt, err)
		settings, err := plugin.DecodeSettings(got)
		require.NoError(rt, err)
		assert.Equal(rt, flags[len(flags)-1], settings.IsMounted)
	})
}
