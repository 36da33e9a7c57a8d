package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/travel/internal/plugin"
	"github.com/cory-johannsen/travel/internal/storage/memory"
)

func TestStore_LoadMissing(t *testing.T) {
	_, err := memory.NewStore().Load(context.Background(), "nope")
	assert.ErrorIs(t, err, plugin.ErrNotFound)
}

func TestStore_SaveCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	value := []byte("isMounted: true\n")
	require.NoError(t, s.Save(ctx, "k", value))
	value[0] = 'X'

	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "isMounted: true\n", string(got))

	got[0] = 'Y'
	again, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "isMounted: true\n", string(again))
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := memory.NewStore()
	assert.ErrorIs(t, s.Save(ctx, "k", []byte("isMounted: true\n")), context.Canceled)

	_, err := s.Load(context.Background(), "k")
	assert.ErrorIs(t, err, plugin.ErrNotFound)
	_, err = s.Load(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
