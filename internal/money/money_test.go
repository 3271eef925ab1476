package money_test

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/toko-margin/internal/money"
)

func TestParseKeepsDecimalStringsExact(t *testing.T) {
	d, err := money.Parse(money.String("19.99999999"))
	require.NoError(t, err)
	require.Equal(t, "19.99999999", d.String())

	d, err = money.Parse(money.Float(0.1))
	require.NoError(t, err)
	require.True(t, d.Equal(decimal.RequireFromString("0.1")))

	d, err = money.Parse("")
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []money.Value{"abc", "1.2.3", "12,5", money.Float(math.NaN()), money.Float(math.Inf(1))}
	for _, tc := range tests {
		if _, err := money.Parse(tc); !errors.Is(err, money.ErrInvalidNumber) {
			t.Fatalf("expected ErrInvalidNumber for %q, got %v", tc, err)
		}
	}
}

func TestParseBoundsExponentAndDigits(t *testing.T) {
	for _, tc := range []money.Value{
		"1e100000000",
		"1e-100000000",
		money.Value("1" + strings.Repeat("0", money.MaxDigits)),
		money.Value("1e1001"),
	} {
		_, err := money.Parse(tc)
		require.ErrorIs(t, err, money.ErrInvalidNumber, "%.40s", tc)
	}

	d, err := money.Parse("1.5e1000")
	require.NoError(t, err)
	require.Equal(t, int32(999), d.Exponent())

	var payload struct {
		Price money.Value `json:"price"`
	}
	err = json.Unmarshal([]byte(`{"price": 1e100000000}`), &payload)
	require.ErrorIs(t, err, money.ErrInvalidNumber)
	require.True(t, payload.Price.IsZero())
}

func TestBlankLiteralsAreNotZero(t *testing.T) {
	require.True(t, money.String("").IsZero())

	for _, raw := range []string{" ", "\t", "   "} {
		v := money.String(raw)
		require.False(t, v.IsZero())
		_, err := money.Parse(v)
		require.ErrorIs(t, err, money.ErrInvalidNumber)
	}

	var v money.Value
	require.ErrorIs(t, v.Set(""), money.ErrInvalidNumber)
	require.ErrorIs(t, v.Set("  "), money.ErrInvalidNumber)
	require.True(t, v.IsZero())
	require.NoError(t, v.Set(" 0.25 "))
	require.Equal(t, money.Value("0.25"), v)
}

func TestValueDecodesJSONNumbersAndStrings(t *testing.T) {
	var payload struct {
		Price money.Value `json:"price"`
		Cost  money.Value `json:"cost"`
		Fee   money.Value `json:"fee"`
	}
	err := json.Unmarshal([]byte(`{"price": 19.99999999, "cost": "10.00000001", "fee": null}`), &payload)
	require.NoError(t, err)
	require.Equal(t, money.Value("19.99999999"), payload.Price)
	require.Equal(t, money.Value("10.00000001"), payload.Cost)
	require.True(t, payload.Fee.IsZero())

	var bad struct {
		Price money.Value `json:"price"`
	}
	err = json.Unmarshal([]byte(`{"price": ""}`), &bad)
	require.ErrorIs(t, err, money.ErrInvalidNumber)
	err = json.Unmarshal([]byte(`{"price": "ten"}`), &bad)
	require.ErrorIs(t, err, money.ErrInvalidNumber)
}

func TestValueDecodesYAMLScalars(t *testing.T) {
	var doc struct {
		Price money.Value `yaml:"unitPrice"`
		Rate  money.Value `yaml:"platformFeeRate"`
	}
	err := yaml.Unmarshal([]byte("unitPrice: \"19.99999999\"\nplatformFeeRate: 0.2\n"), &doc)
	require.NoError(t, err)
	require.Equal(t, money.Value("19.99999999"), doc.Price)
	require.Equal(t, money.Value("0.2"), doc.Rate)

	err = yaml.Unmarshal([]byte("unitPrice: [1, 2]\n"), &doc)
	require.ErrorIs(t, err, money.ErrInvalidNumber)
}

func TestFixRoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"17.999999946", "17.99999995"},
		{"0.000000005", "0.00000001"},
		{"-0.000000005", "-0.00000001"},
		{"395", "395.00000000"},
		{"1.123456784", "1.12345678"},
	}
	for _, tc := range tests {
		got := money.Fix(decimal.RequireFromString(tc.in)).String()
		if got != tc.want {
			t.Fatalf("Fix(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestAmountJSONIsFixedNumber(t *testing.T) {
	out, err := json.Marshal(map[string]money.Amount{"profit": money.Fix(decimal.NewFromInt(395))})
	require.NoError(t, err)
	require.JSONEq(t, `{"profit": 395.00000000}`, string(out))

	var back map[string]money.Amount
	require.NoError(t, json.Unmarshal(out, &back))
	require.Equal(t, "395.00000000", back["profit"].String())
}

func TestContextDiv(t *testing.T) {
	ctx := money.NewContext(0)
	require.Equal(t, money.DefaultPrecision, ctx.Precision)

	q, err := ctx.Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	require.NoError(t, err)
	require.True(t, q.Sub(decimal.RequireFromString("0.3333333333333333333333333333333333333333")).IsZero())
	require.Equal(t, "0.33333333", money.Fix(q).String())

	_, err = ctx.Div(decimal.NewFromInt(1), decimal.Zero)
	require.ErrorIs(t, err, money.ErrDivisionByZero)

	pct, err := ctx.Percent(decimal.NewFromInt(1), decimal.NewFromInt(8))
	require.NoError(t, err)
	require.Equal(t, "12.50000000", money.Fix(pct).String())
}

func TestZeroContextUsesDefaultPrecision(t *testing.T) {
	var ctx money.Context
	q, err := ctx.Div(decimal.NewFromInt(2), decimal.NewFromInt(3))
	require.NoError(t, err)
	require.Equal(t, "0.66666667", money.Fix(q).String())
}
