package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-margin/internal/money"
)

// Engine evaluates the pricing formulas. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	dec money.Context
}

// NewEngine returns an engine computing with the provided decimal context.
func NewEngine(dec money.Context) Engine {
	return Engine{dec: dec}
}

// TotalProfit computes the profit of a batch sale with an optional discount.
func (e Engine) TotalProfit(p SaleParameters, d Discount) (money.Amount, error) {
	s, err := resolve(p)
	if err != nil {
		return money.Amount{}, err
	}
	rate, err := money.Parse(d.Rate)
	if err != nil {
		return money.Amount{}, fmt.Errorf("discountRate: %w", err)
	}
	if s.model == FeeModelSplit && !rate.IsZero() {
		return money.Amount{}, fmt.Errorf("%w: split model does not support discounts", ErrUnsupportedFeeModel)
	}
	return money.Fix(s.totalProfit(rate, d.Uniform)), nil
}

// BaseProfit computes the profit of a batch sale at full price.
func (e Engine) BaseProfit(p SaleParameters) (money.Amount, error) {
	return e.TotalProfit(p, Discount{})
}

// SeparateSalesProfit computes the profit when every unit is sold in its own
// transaction, so fixed fees are charged once per unit.
func (e Engine) SeparateSalesProfit(p SaleParameters) (money.Amount, error) {
	s, err := resolve(p)
	if err != nil {
		return money.Amount{}, err
	}
	return money.Fix(s.separateProfit()), nil
}

func (s sale) totalProfit(discount decimal.Decimal, uniform bool) decimal.Decimal {
	keep := decimal.NewFromInt(1).Sub(discount)
	var revenue decimal.Decimal
	if uniform {
		revenue = s.quantity().Mul(s.price).Mul(keep)
	} else {
		revenue = s.base.Mul(s.price).Add(s.extra.Mul(s.price).Mul(keep))
	}
	cost := s.quantity().Mul(s.cost)
	return revenue.Sub(s.fees(revenue)).Sub(cost)
}

func (s sale) separateProfit() decimal.Decimal {
	perUnit := s.price.Sub(s.fees(s.price)).Sub(s.cost)
	return perUnit.Mul(s.quantity())
}
