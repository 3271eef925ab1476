package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-margin/internal/money"
)

var (
	// ErrNegativeQuantity is returned when a quantity field is below zero.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrUnsupportedFeeModel is returned for an unknown fee model or for fields the model does not define.
	ErrUnsupportedFeeModel = errors.New("unsupported fee model")
)

// FeeModel selects how the platform charges its fixed fees.
type FeeModel string

const (
	// FeeModelFlat charges a percentage of revenue plus one fixed fee per sale.
	// It supports base/extra quantities and discounts.
	FeeModelFlat FeeModel = "flat"
	// FeeModelSplit deducts a fixed fee before the percentage is taken and adds a
	// second fixed fee after it. It only knows a single batch quantity.
	FeeModelSplit FeeModel = "split"
)

// FeeSchedule holds the fixed fees of a sale, tagged by model. Only the fields of the
// selected model may be set.
type FeeSchedule struct {
	Model          FeeModel
	FixedFee       money.Value
	FixedFeeBefore money.Value
	FixedFeeAfter  money.Value
}

// FlatFee returns a flat fee schedule.
func FlatFee(fixed money.Value) FeeSchedule {
	return FeeSchedule{Model: FeeModelFlat, FixedFee: fixed}
}

// SplitFee returns a fee schedule with fixed fees before and after the percentage.
func SplitFee(before, after money.Value) FeeSchedule {
	return FeeSchedule{Model: FeeModelSplit, FixedFeeBefore: before, FixedFeeAfter: after}
}

// SaleParameters describes a sale through the platform.
type SaleParameters struct {
	UnitPrice       money.Value
	UnitCost        money.Value
	PlatformFeeRate money.Value
	Fees            FeeSchedule
	BaseQuantity    int64
	ExtraQuantity   int64
}

// Discount is a price reduction rate applied to a sale. The zero value means no discount.
// When Uniform is false the rate only applies to the extra quantity.
type Discount struct {
	Rate    money.Value
	Uniform bool
}

// sale is the decimal form of SaleParameters.
type sale struct {
	model  FeeModel
	price  decimal.Decimal
	cost   decimal.Decimal
	rate   decimal.Decimal
	fixed  decimal.Decimal
	before decimal.Decimal
	after  decimal.Decimal
	base   decimal.Decimal
	extra  decimal.Decimal
}

func resolve(p SaleParameters) (sale, error) {
	if p.BaseQuantity < 0 || p.ExtraQuantity < 0 {
		return sale{}, ErrNegativeQuantity
	}
	s := sale{
		model: p.Fees.Model,
		base:  decimal.NewFromInt(p.BaseQuantity),
		extra: decimal.NewFromInt(p.ExtraQuantity),
	}
	if s.model == "" {
		s.model = FeeModelFlat
	}
	switch s.model {
	case FeeModelFlat:
		if !p.Fees.FixedFeeBefore.IsZero() || !p.Fees.FixedFeeAfter.IsZero() {
			return sale{}, fmt.Errorf("%w: flat model takes a single fixed fee", ErrUnsupportedFeeModel)
		}
	case FeeModelSplit:
		if !p.Fees.FixedFee.IsZero() {
			return sale{}, fmt.Errorf("%w: split model takes fixed fees before and after the percentage", ErrUnsupportedFeeModel)
		}
		if p.ExtraQuantity != 0 {
			return sale{}, fmt.Errorf("%w: split model has no extra quantity", ErrUnsupportedFeeModel)
		}
	default:
		return sale{}, fmt.Errorf("%w: %q", ErrUnsupportedFeeModel, string(s.model))
	}

	fields := []struct {
		name string
		in   money.Value
		out  *decimal.Decimal
	}{
		{"unitPrice", p.UnitPrice, &s.price},
		{"unitCost", p.UnitCost, &s.cost},
		{"platformFeeRate", p.PlatformFeeRate, &s.rate},
		{"fixedFee", p.Fees.FixedFee, &s.fixed},
		{"fixedFeeBefore", p.Fees.FixedFeeBefore, &s.before},
		{"fixedFeeAfter", p.Fees.FixedFeeAfter, &s.after},
	}
	for _, f := range fields {
		d, err := money.Parse(f.in)
		if err != nil {
			return sale{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.out = d
	}
	return s, nil
}

func (s sale) quantity() decimal.Decimal {
	return s.base.Add(s.extra)
}

// fees returns the platform fees charged on a single transaction with the given revenue.
func (s sale) fees(revenue decimal.Decimal) decimal.Decimal {
	if s.model == FeeModelSplit {
		percentage := revenue.Sub(s.before).Mul(s.rate)
		return s.before.Add(percentage).Add(s.after)
	}
	return revenue.Mul(s.rate).Add(s.fixed)
}
