package money

import "github.com/shopspring/decimal"

// Amount is a calculation result rounded to OutputPlaces fractional digits.
type Amount struct {
	d decimal.Decimal
}

// Fix rounds d half away from zero to OutputPlaces fractional digits.
// It is the only place where precision is discarded.
func Fix(d decimal.Decimal) Amount {
	return Amount{d: d.Round(OutputPlaces)}
}

// Decimal returns the rounded decimal.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Float64 converts the amount to the nearest float64.
func (a Amount) Float64() float64 { return a.d.InexactFloat64() }

// String renders the amount with exactly OutputPlaces fractional digits.
func (a Amount) String() string { return a.d.StringFixed(OutputPlaces) }

// Equal reports whether both amounts hold the same value.
func (a Amount) Equal(b Amount) bool { return a.d.Equal(b.d) }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.d.IsZero() }

// MarshalJSON renders the amount as a JSON number with OutputPlaces fractional digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON reads an amount previously rendered by MarshalJSON.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	d, err := Parse(v)
	if err != nil {
		return err
	}
	*a = Fix(d)
	return nil
}
