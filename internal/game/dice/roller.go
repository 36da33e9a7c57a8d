package dice

import (
	"fmt"
	"sort"
)

// RollSum rolls count dice of the given sides and returns their sum.
//
// Precondition: count >= 1, sides >= 1, src non-nil. Violations panic; the
// arguments are configuration constants, never user input.
// Postcondition: count <= result <= count*sides.
func RollSum(count, sides int, src Source) int {
	if count < 1 || sides < 1 {
		panic(fmt.Sprintf("dice: RollSum precondition violated: count=%d sides=%d", count, sides))
	}
	total := 0
	for i := 0; i < count; i++ {
		total += src.Intn(sides) + 1
	}
	return total
}

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.KeepHighest when set, else expr.Count.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = RollSum(1, expr.Sides, src)
	}

	kept := rolled
	if expr.KeepHighest > 0 {
		sorted := make([]int, len(rolled))
		copy(sorted, rolled)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:expr.KeepHighest]
	}

	return RollResult{
		Expression: expr.Raw,
		Dice:       kept,
		Modifier:   expr.Modifier,
	}
}

// MustParse parses expr and panics on error. Useful for package-level values.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
