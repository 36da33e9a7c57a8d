package dice

import "go.uber.org/zap"

// Roller rolls a fixed expression and logs each roll at debug level.
type Roller struct {
	expr   Expression
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller for expr.
//
// Precondition: src and logger must be non-nil.
func NewRoller(expr Expression, src Source, logger *zap.Logger) *Roller {
	return &Roller{expr: expr, src: src, logger: logger}
}

// Expression returns the expression this roller evaluates.
func (r *Roller) Expression() Expression {
	return r.expr
}

// Roll evaluates the roller's expression and logs the result.
func (r *Roller) Roll() RollResult {
	result := Roll(r.expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}
