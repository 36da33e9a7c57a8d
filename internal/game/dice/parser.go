package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Limits on parsed expressions. They keep Min and Max far from overflow.
const (
	MaxCount    = 100
	MaxSides    = 1000
	MaxModifier = 1000
)

// Expression is a parsed dice expression ready to be rolled.
//
// Invariant: 1 <= Count <= MaxCount, 2 <= Sides <= MaxSides,
// 0 <= KeepHighest < Count, |Modifier| <= MaxModifier.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int // 0 keeps every die
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse parses a dice expression. Supported forms: "d20", "2d20",
// "2d20+1", "2d20-3", "3d20kh2".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.TrimSpace(expr))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", expr, err)
		}
		count = n
	}
	if count < 1 || count > MaxCount {
		return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be in [1, %d]", expr, MaxCount)
	}

	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", expr, err)
	}
	if sides < 2 || sides > MaxSides {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be in [2, %d]", expr, MaxSides)
	}

	keep := 0
	if m[3] != "" {
		keep, err = strconv.Atoi(m[3])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid kh value in %q: %w", expr, err)
		}
		if keep <= 0 || keep >= count {
			return Expression{}, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", keep, count, expr)
		}
	}

	mod := 0
	if m[4] != "" {
		mod, err = strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		if mod < -MaxModifier || mod > MaxModifier {
			return Expression{}, fmt.Errorf("dice: modifier in %q must be within ±%d", expr, MaxModifier)
		}
	}

	return Expression{
		Raw:         strings.TrimSpace(expr),
		Count:       count,
		Sides:       sides,
		Modifier:    mod,
		KeepHighest: keep,
	}, nil
}

// kept returns the number of dice that contribute to the total.
func (e Expression) kept() int {
	if e.KeepHighest > 0 {
		return e.KeepHighest
	}
	return e.Count
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() int {
	return e.kept() + e.Modifier
}

// Max returns the largest total the expression can produce.
func (e Expression) Max() int {
	return e.kept()*e.Sides + e.Modifier
}
