// Package travel resolves a travel roll into a distance and an encounter.
package travel

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// DistanceSlots is the number of entries in each distance sequence.
const DistanceSlots = 8

// ErrNoBand is returned when a roll matches no band and the table has no
// fallback.
var ErrNoBand = errors.New("no band matches roll")

// ErrInvalidTable wraps every table validation failure.
var ErrInvalidTable = errors.New("invalid travel table")

// Band maps an inclusive roll range to a distance slot and encounter label.
type Band struct {
	Name      string `yaml:"name"`
	Low       int    `yaml:"low"`
	High      int    `yaml:"high"`
	Index     int    `yaml:"index"`
	Encounter string `yaml:"encounter"`
}

// Contains reports whether roll is within [Low, High].
func (b Band) Contains(roll int) bool {
	return roll >= b.Low && roll <= b.High
}

// Distances holds the on-foot and mounted distance sequences, in miles.
type Distances struct {
	OnFoot  []int `yaml:"on_foot"`
	Mounted []int `yaml:"mounted"`
}

// For returns the sequence selected by the travel mode.
func (d Distances) For(mounted bool) []int {
	if mounted {
		return d.Mounted
	}
	return d.OnFoot
}

// Table is an ordered band table with optional fallback.
//
// Invariant (after Validate): bands do not overlap and every Index is
// within [0, DistanceSlots).
type Table struct {
	Distances Distances `yaml:"distances"`
	Bands     []Band    `yaml:"bands"`
	// Fallback, when set, answers rolls no ranged band covers. Its Low and
	// High are ignored.
	Fallback *Band `yaml:"fallback,omitempty"`
}

// Outcome is the result of resolving one roll.
type Outcome struct {
	Roll      int
	Mounted   bool
	Distance  int
	Encounter string
	Band      string
	Fallback  bool
}

// Resolve returns the outcome for roll under the given travel mode. The
// first band whose range contains roll wins. Unmatched rolls resolve to
// the fallback band, or ErrNoBand when the table has none.
//
// Precondition: t has passed Validate.
func (t Table) Resolve(roll int, mounted bool) (Outcome, error) {
	distances := t.Distances.For(mounted)
	for _, b := range t.Bands {
		if b.Contains(roll) {
			return outcome(b, roll, mounted, distances, false), nil
		}
	}
	if t.Fallback != nil {
		return outcome(*t.Fallback, roll, mounted, distances, true), nil
	}
	return Outcome{}, fmt.Errorf("roll %d: %w", roll, ErrNoBand)
}

func outcome(b Band, roll int, mounted bool, distances []int, fallback bool) Outcome {
	return Outcome{
		Roll:      roll,
		Mounted:   mounted,
		Distance:  distances[b.Index],
		Encounter: b.Encounter,
		Band:      b.Name,
		Fallback:  fallback,
	}
}

// Validate checks the table invariants and reports every violation.
func (t Table) Validate() error {
	var errs []string

	if n := len(t.Distances.OnFoot); n != DistanceSlots {
		errs = append(errs, fmt.Sprintf("distances.on_foot must have %d entries, got %d", DistanceSlots, n))
	}
	if n := len(t.Distances.Mounted); n != DistanceSlots {
		errs = append(errs, fmt.Sprintf("distances.mounted must have %d entries, got %d", DistanceSlots, n))
	}
	if len(t.Bands) == 0 {
		errs = append(errs, "bands must not be empty")
	}

	for i, b := range t.Bands {
		errs = append(errs, validateBand(fmt.Sprintf("bands[%d]", i), b, true)...)
	}
	if t.Fallback != nil {
		errs = append(errs, validateBand("fallback", *t.Fallback, false)...)
	}

	sorted := t.sortedBands()
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.Low <= prev.High {
			errs = append(errs, fmt.Sprintf("band %q [%d,%d] overlaps band %q [%d,%d]",
				cur.Name, cur.Low, cur.High, prev.Name, prev.Low, prev.High))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTable, strings.Join(errs, "; "))
	}
	return nil
}

func validateBand(path string, b Band, ranged bool) []string {
	var errs []string
	if b.Name == "" {
		errs = append(errs, path+".name must not be empty")
	}
	if b.Encounter == "" {
		errs = append(errs, path+".encounter must not be empty")
	}
	if b.Index < 0 || b.Index >= DistanceSlots {
		errs = append(errs, fmt.Sprintf("%s.index must be 0-%d, got %d", path, DistanceSlots-1, b.Index))
	}
	if ranged && b.Low > b.High {
		errs = append(errs, fmt.Sprintf("%s.low %d exceeds high %d", path, b.Low, b.High))
	}
	return errs
}

func (t Table) sortedBands() []Band {
	sorted := make([]Band, len(t.Bands))
	copy(sorted, t.Bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Low < sorted[j].Low })
	return sorted
}

// Gaps returns the sub-ranges of [lo, hi] no ranged band covers, as
// inclusive [low, high] pairs in ascending order.
func (t Table) Gaps(lo, hi int) [][2]int {
	var gaps [][2]int
	next := lo
	for _, b := range t.sortedBands() {
		if b.High < next {
			continue
		}
		if b.Low > hi {
			break
		}
		if b.Low > next {
			gaps = append(gaps, [2]int{next, b.Low - 1})
		}
		next = b.High + 1
		if next > hi {
			return gaps
		}
	}
	if next <= hi {
		gaps = append(gaps, [2]int{next, hi})
	}
	return gaps
}

// Covers reports whether every roll in [lo, hi] resolves, either through a
// ranged band or the fallback.
func (t Table) Covers(lo, hi int) bool {
	return t.Fallback != nil || len(t.Gaps(lo, hi)) == 0
}
