package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-margin/internal/money"
)

var one = decimal.NewFromInt(1)

// DiscountResult is a per-unit discount expressed as an amount and as a percentage of the unit price.
type DiscountResult struct {
	Amount     money.Amount `json:"amount"`
	Percentage money.Amount `json:"percentage"`
}

// MaxDiscountPerExtraUnit returns the largest price reduction on one additional unit
// that still covers its cost after the percentage fee:
//
//	unitPrice - unitCost/(1 - platformFeeRate)
//
// Fixed fees and the base quantity do not change the marginal result.
func (e Engine) MaxDiscountPerExtraUnit(p SaleParameters) (DiscountResult, error) {
	s, err := resolve(p)
	if err != nil {
		return DiscountResult{}, err
	}
	breakEven, err := e.dec.Div(s.cost, one.Sub(s.rate))
	if err != nil {
		return DiscountResult{}, fmt.Errorf("max discount: %w", err)
	}
	amount := s.price.Sub(breakEven)
	pct, err := e.dec.Percent(amount, s.price)
	if err != nil {
		return DiscountResult{}, fmt.Errorf("max discount percentage: %w", err)
	}
	return DiscountResult{Amount: money.Fix(amount), Percentage: money.Fix(pct)}, nil
}

// UniformDiscount returns the discount rate that can be applied to every unit, base and
// extra, while keeping total profit equal to selling the base quantity alone at full price.
// With k = 1 - platformFeeRate, equating both profits and solving for the rate gives
//
//	rate = extra*(k*price - cost) / (k*price*(base + extra))
//
// The fixed fee cancels out since it is charged once in both scenarios.
func (e Engine) UniformDiscount(p SaleParameters) (DiscountResult, error) {
	s, err := resolve(p)
	if err != nil {
		return DiscountResult{}, err
	}
	if s.model != FeeModelFlat {
		return DiscountResult{}, fmt.Errorf("%w: uniform discount needs the flat model", ErrUnsupportedFeeModel)
	}
	netPrice := one.Sub(s.rate).Mul(s.price)
	numerator := s.extra.Mul(netPrice.Sub(s.cost))
	denominator := netPrice.Mul(s.quantity())
	rate, err := e.dec.Div(numerator, denominator)
	if err != nil {
		return DiscountResult{}, fmt.Errorf("uniform discount: %w", err)
	}
	return DiscountResult{
		Amount:     money.Fix(rate.Mul(s.price)),
		Percentage: money.Fix(rate.Mul(decimal.NewFromInt(100))),
	}, nil
}
