package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-margin/internal/money"
)

// SalesComparison contrasts a single batch sale with selling every unit separately.
type SalesComparison struct {
	SingleSaleProfit     money.Amount `json:"singleSaleProfit"`
	SeparateSalesProfit  money.Amount `json:"separateSalesProfit"`
	Difference           money.Amount `json:"difference"`
	PercentageDifference money.Amount `json:"percentageDifference"`
}

// DirectSaleAnalysis describes selling outside the platform at the price that keeps the
// seller's separate-sales profit while passing the platform fees on to the customer.
type DirectSaleAnalysis struct {
	DirectPricePerUnit        money.Amount `json:"directPricePerUnit"`
	TotalDirectPrice          money.Amount `json:"totalDirectPrice"`
	PlatformPricePerUnit      money.Amount `json:"platformPricePerUnit"`
	TotalPlatformPrice        money.Amount `json:"totalPlatformPrice"`
	CustomerSavings           money.Amount `json:"customerSavings"`
	CustomerSavingsPercentage money.Amount `json:"customerSavingsPercentage"`
	SellerProfit              money.Amount `json:"sellerProfit"`
	SellerExtraProfit         money.Amount `json:"sellerExtraProfit"`
}

// CompareSalesStrategies compares the batch profit against the separate-sales profit.
// Both profits enter the comparison as reported by BaseProfit and SeparateSalesProfit, so
// Difference is always exactly their difference. The percentage is relative to the absolute
// separate-sales profit and is zero when that profit is exactly zero.
func (e Engine) CompareSalesStrategies(p SaleParameters) (SalesComparison, error) {
	s, err := resolve(p)
	if err != nil {
		return SalesComparison{}, err
	}
	single := money.Fix(s.totalProfit(decimal.Zero, true)).Decimal()
	separate := money.Fix(s.separateProfit()).Decimal()
	diff := single.Sub(separate)

	pct := decimal.Zero
	if !separate.IsZero() {
		pct, err = e.dec.Percent(diff, separate.Abs())
		if err != nil {
			return SalesComparison{}, err
		}
	}
	return SalesComparison{
		SingleSaleProfit:     money.Fix(single),
		SeparateSalesProfit:  money.Fix(separate),
		Difference:           money.Fix(diff),
		PercentageDifference: money.Fix(pct),
	}, nil
}

// DirectSalePrice derives the direct-sale price by solving
// separateProfit = directRevenue - totalCost for directRevenue. The seller profit is the
// separate-sales profit by construction.
func (e Engine) DirectSalePrice(p SaleParameters) (DirectSaleAnalysis, error) {
	s, err := resolve(p)
	if err != nil {
		return DirectSaleAnalysis{}, err
	}
	qty := s.quantity()
	platformTotal := s.price.Mul(qty)
	separate := money.Fix(s.separateProfit()).Decimal()
	directRevenue := separate.Add(s.cost.Mul(qty))

	perUnit, err := e.dec.Div(directRevenue, qty)
	if err != nil {
		return DirectSaleAnalysis{}, fmt.Errorf("direct price per unit: %w", err)
	}
	savings := platformTotal.Sub(directRevenue)
	savingsPct, err := e.dec.Percent(savings, platformTotal)
	if err != nil {
		return DirectSaleAnalysis{}, fmt.Errorf("customer savings percentage: %w", err)
	}
	single := money.Fix(s.totalProfit(decimal.Zero, true)).Decimal()

	return DirectSaleAnalysis{
		DirectPricePerUnit:        money.Fix(perUnit),
		TotalDirectPrice:          money.Fix(directRevenue),
		PlatformPricePerUnit:      money.Fix(s.price),
		TotalPlatformPrice:        money.Fix(platformTotal),
		CustomerSavings:           money.Fix(savings),
		CustomerSavingsPercentage: money.Fix(savingsPct),
		SellerProfit:              money.Fix(separate),
		SellerExtraProfit:         money.Fix(separate.Sub(single)),
	}, nil
}
