package telnet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/travel/internal/game/dice"
	"github.com/cory-johannsen/travel/internal/game/travel"
	"github.com/cory-johannsen/travel/internal/plugin"
	"github.com/cory-johannsen/travel/internal/storage/memory"
	"github.com/cory-johannsen/travel/internal/testutil"
)

// constSource always rolls the same face.
type constSource int

func (c constSource) Intn(n int) int { return (int(c) - 1) % n }

func startHost(t *testing.T, face int) (*testutil.TelnetClient, *memory.Store) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.NewStore()
	roller := dice.NewRoller(dice.MustParse("2d20"), constSource(face), logger)
	p, err := plugin.New("travel-system", store, travel.HardenedTable(), roller, logger)
	require.NoError(t, err)

	reg := plugin.NewRegistry()
	require.NoError(t, p.Load(context.Background(), reg))

	acc := NewAcceptor(testTelnetConfig(), NewHost(reg, logger), logger)
	startAcceptor(t, acc)
	t.Cleanup(acc.Stop)

	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("> ", 2*time.Second)
	return client, store
}

func TestHost_RollOnFoot(t *testing.T) {
	// 5 + 5 = 10
	client, _ := startHost(t, 5)
	out := StripANSI(client.Command("roll", "> "))
	assert.Contains(t, out, "Distance: 2 miles\r\nEncounter: Minor combat encounter")
}

func TestHost_ToggleMountedThenRoll(t *testing.T) {
	// 8 + 8 = 16
	client, store := startHost(t, 8)

	out := StripANSI(client.Command("mounted on", "> "))
	assert.Contains(t, out, "Mounted Travel: on")

	saved, err := store.Load(context.Background(), "travel-system")
	require.NoError(t, err)
	assert.Equal(t, "isMounted: true\n", string(saved))

	out = StripANSI(client.Command("Travel System", "> "))
	assert.Contains(t, out, "Distance: 6 miles\r\nEncounter: No encounter")

	out = StripANSI(client.Command("mounted", "> "))
	assert.Contains(t, out, "Mounted Travel: off")

	out = StripANSI(client.Command("roll", "> "))
	assert.Contains(t, out, "Distance: 3 miles")
}

func TestHost_SettingsAndHelp(t *testing.T) {
	client, _ := startHost(t, 1)

	out := StripANSI(client.Command("settings", "> "))
	assert.Contains(t, out, plugin.TabHeading)
	assert.Contains(t, out, "[ ] Mounted Travel - Enable if the characters are mounted.")

	out = StripANSI(client.Command("set mounted travel yes", "> "))
	assert.Contains(t, out, "Mounted Travel: on")

	out = StripANSI(client.Command("settings", "> "))
	assert.Contains(t, out, "[x] Mounted Travel")

	out = StripANSI(client.Command("help", "> "))
	assert.Contains(t, out, "roll")
	assert.Contains(t, out, "Travel System")
}

func TestHost_Errors(t *testing.T) {
	client, _ := startHost(t, 1)

	assert.Contains(t, StripANSI(client.Command("teleport", "> ")), `unknown command "teleport"`)
	assert.Contains(t, StripANSI(client.Command("set mounted maybe", "> ")), "value must be on or off")
	assert.Contains(t, StripANSI(client.Command("set flying on", "> ")), `unknown setting "flying"`)
	assert.Contains(t, StripANSI(client.Command("set", "> ")), "usage: set")
	assert.Contains(t, client.Command("quit", "Safe travels."), "Safe travels.")
}

func TestRenderSettings(t *testing.T) {
	mounted := true
	out := StripANSI(RenderSettings([]plugin.SettingTab{{
		Heading: "Heading",
		Toggles: []plugin.Toggle{{Name: "Mounted Travel", Desc: "desc", Value: func() bool { return mounted }}},
	}}))
	assert.Equal(t, "Heading\n  [x] Mounted Travel - desc", out)
}
