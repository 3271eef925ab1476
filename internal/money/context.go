package money

import "github.com/shopspring/decimal"

const (
	// DefaultPrecision is the number of digits carried by quotients.
	DefaultPrecision int32 = 40
	// OutputPlaces is the number of fractional digits every result is rendered with.
	OutputPlaces int32 = 8
)

var hundred = decimal.NewFromInt(100)

// Context carries the arithmetic configuration for a chain of calculations.
// Addition, subtraction and multiplication are exact; only quotients are rounded,
// to Precision fractional digits.
type Context struct {
	Precision int32
}

// NewContext returns a context with the provided precision, never below DefaultPrecision.
func NewContext(precision int32) Context {
	if precision < DefaultPrecision {
		precision = DefaultPrecision
	}
	return Context{Precision: precision}
}

func (c Context) precision() int32 {
	if c.Precision <= 0 {
		return DefaultPrecision
	}
	return c.Precision
}

// Div divides a by b, failing with ErrDivisionByZero for a zero divisor.
func (c Context) Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.DivRound(b, c.precision()), nil
}

// Percent returns part/whole*100.
func (c Context) Percent(part, whole decimal.Decimal) (decimal.Decimal, error) {
	ratio, err := c.Div(part, whole)
	if err != nil {
		return decimal.Zero, err
	}
	return ratio.Mul(hundred), nil
}
