package travel

import (
	"errors"
	"fmt"
)

// Encounter labels used by the default table.
const (
	EncounterMajor = "Major combat encounter"
	EncounterMinor = "Minor combat encounter"
	EncounterNone  = "No encounter"
)

// FallbackBandName names the band answering rolls beyond the ranged bands.
const FallbackBandName = "beyond"

// DefaultTable returns the standard travel table. It is strict: rolls
// outside [2, 18] resolve to ErrNoBand.
func DefaultTable() Table {
	return Table{
		Distances: Distances{
			OnFoot:  []int{1, 2, 3, 4, 5, 6, 7, 8},
			Mounted: []int{2, 4, 6, 8, 10, 12, 14, 16},
		},
		Bands: []Band{
			{Name: "major", Low: 2, High: 5, Index: 0, Encounter: EncounterMajor},
			{Name: "minor", Low: 6, High: 12, Index: 1, Encounter: EncounterMinor},
			{Name: "quiet", Low: 13, High: 18, Index: 2, Encounter: EncounterNone},
		},
	}
}

// HardenedTable returns DefaultTable with a fallback band so every roll
// resolves. Unmatched rolls travel the quiet band's distance with no
// encounter.
func HardenedTable() Table {
	t := DefaultTable()
	t.Fallback = &Band{Name: FallbackBandName, Index: 2, Encounter: EncounterNone}
	return t
}

// Resolve resolves roll against DefaultTable. ok is false when no band
// matches.
func Resolve(roll int, mounted bool) (Outcome, bool) {
	o, err := DefaultTable().Resolve(roll, mounted)
	if errors.Is(err, ErrNoBand) {
		return Outcome{}, false
	}
	return o, err == nil
}

// Notice formats o as the two-line message shown to the player.
func Notice(o Outcome) string {
	return fmt.Sprintf("Distance: %d miles\nEncounter: %s", o.Distance, o.Encounter)
}
