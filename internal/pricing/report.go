package pricing

import (
	"github.com/google/uuid"

	"github.com/noah-isme/toko-margin/internal/money"
)

// Report bundles every calculation for one set of sale parameters.
type Report struct {
	ID                      uuid.UUID          `json:"id"`
	FeeModel                FeeModel           `json:"feeModel"`
	BaseProfit              money.Amount       `json:"baseProfit"`
	SeparateSalesProfit     money.Amount       `json:"separateSalesProfit"`
	Comparison              SalesComparison    `json:"comparison"`
	DirectSale              DirectSaleAnalysis `json:"directSale"`
	MaxDiscountPerExtraUnit DiscountResult     `json:"maxDiscountPerExtraUnit"`
	// UniformDiscount is only defined for the flat fee model.
	UniformDiscount *DiscountResult `json:"uniformDiscount,omitempty"`
}

// Report runs every calculation. It fails as a whole when any of them fails.
func (e Engine) Report(p SaleParameters) (Report, error) {
	s, err := resolve(p)
	if err != nil {
		return Report{}, err
	}
	r := Report{FeeModel: s.model}
	if r.BaseProfit, err = e.BaseProfit(p); err != nil {
		return Report{}, err
	}
	if r.SeparateSalesProfit, err = e.SeparateSalesProfit(p); err != nil {
		return Report{}, err
	}
	if r.Comparison, err = e.CompareSalesStrategies(p); err != nil {
		return Report{}, err
	}
	if r.DirectSale, err = e.DirectSalePrice(p); err != nil {
		return Report{}, err
	}
	if r.MaxDiscountPerExtraUnit, err = e.MaxDiscountPerExtraUnit(p); err != nil {
		return Report{}, err
	}
	if s.model == FeeModelFlat {
		uniform, err := e.UniformDiscount(p)
		if err != nil {
			return Report{}, err
		}
		r.UniformDiscount = &uniform
	}
	return r, nil
}
