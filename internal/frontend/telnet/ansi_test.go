package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestColorize(t *testing.T) {
	assert.Equal(t, "\033[31mMajor combat encounter\033[0m", Colorize(Red, "Major combat encounter"))
}

func TestStripANSI(t *testing.T) {
	in := Colorize(Bold, "Distance:") + " 2 miles " + Colorize(Cyan, "ok")
	assert.Equal(t, "Distance: 2 miles ok", StripANSI(in))
	assert.Equal(t, "plain", StripANSI("plain"))
	assert.Equal(t, "broken \033[3", StripANSI("broken \033[3"))
}

// Property: stripping a colorized string yields the original text.
func TestStripANSI_Colorize_Property(t *testing.T) {
	colors := []string{Bold, Dim, Red, Green, Yellow, Cyan}
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[a-zA-Z0-9 :.]{0,40}`).Draw(rt, "text")
		color := rapid.SampledFrom(colors).Draw(rt, "color")
		assert.Equal(rt, text, StripANSI(Colorize(color, text)))
	})
}
