package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidNumber is returned when a numeric literal cannot be parsed as a decimal.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrDivisionByZero is returned when a formula divides by an exact zero.
	ErrDivisionByZero = errors.New("division by zero")
)

// Literal bounds. Rounding rescales the coefficient to the output scale, so an exponent such
// as 1e100000000 would allocate a hundred million digits.
const (
	MaxExponent = 1000
	MaxDigits   = 1000
)

// Value is a raw numeric input kept as its literal text. It decodes from JSON and YAML
// numbers or strings without passing through float64, so a decimal string such as
// "19.99999999" reaches the engine exactly as written. The zero Value means 0.
type Value string

// String builds a Value from a decimal string literal. Only the empty string yields the
// absent Value; a blank but non-empty string is kept as is and fails Parse.
func String(s string) Value {
	if trimmed := strings.TrimSpace(s); trimmed != "" {
		return Value(trimmed)
	}
	return Value(s)
}

// Int builds a Value from an integer.
func Int(i int64) Value { return Value(strconv.FormatInt(i, 10)) }

// Float builds a Value from a float using its shortest round-trip representation.
// NaN and infinities produce a Value that fails to parse.
func Float(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return Value(strconv.FormatFloat(f, 'f', -1, 64))
}

// IsZero reports whether the value was never set.
func (v Value) IsZero() bool { return v == "" }

// Parse converts the value into an exact decimal.
func Parse(v Value) (decimal.Decimal, error) {
	if v.IsZero() {
		return decimal.Zero, nil
	}
	return parseLiteral(string(v))
}

func parseLiteral(literal string) (decimal.Decimal, error) {
	if strings.TrimSpace(literal) == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidNumber)
	}
	d, err := decimal.NewFromString(literal)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, literal)
	}
	if exp := d.Exponent(); exp > MaxExponent || exp < -MaxExponent {
		return decimal.Zero, fmt.Errorf("%w: exponent %d out of range", ErrInvalidNumber, exp)
	}
	if n := d.NumDigits(); n > MaxDigits {
		return decimal.Zero, fmt.Errorf("%w: %d digits exceed %d", ErrInvalidNumber, n, MaxDigits)
	}
	return d, nil
}

// MustParse behaves like Parse but panics on malformed input. Intended for tests and constants.
func MustParse(v Value) decimal.Decimal {
	d, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return d
}

// UnmarshalJSON accepts a JSON number or a JSON string holding a decimal literal.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	literal := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		literal = strings.TrimSpace(s)
	}
	return v.Set(literal)
}

// MarshalJSON renders the literal as a JSON string so no precision is lost on the way out.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(v))
}

// UnmarshalYAML accepts a YAML scalar, quoted or not, and keeps its literal text.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: expected scalar at line %d", ErrInvalidNumber, node.Line)
	}
	if node.Tag == "!!null" {
		*v = ""
		return nil
	}
	return v.Set(node.Value)
}

// Set validates literal and stores it. Unlike String it rejects the empty string, so callers
// holding an explicitly provided literal never fall back to the absent Value.
func (v *Value) Set(literal string) error {
	literal = strings.TrimSpace(literal)
	if _, err := parseLiteral(literal); err != nil {
		return err
	}
	*v = Value(literal)
	return nil
}
