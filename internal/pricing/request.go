package pricing

import "github.com/noah-isme/toko-margin/internal/money"

// SaleRequest is the wire form of SaleParameters shared by the HTTP API and the CLI.
// Monetary fields accept JSON/YAML numbers or decimal strings.
type SaleRequest struct {
	UnitPrice       money.Value `json:"unitPrice" yaml:"unitPrice" validate:"required"`
	UnitCost        money.Value `json:"unitCost" yaml:"unitCost" validate:"required"`
	PlatformFeeRate money.Value `json:"platformFeeRate" yaml:"platformFeeRate"`
	FeeModel        FeeModel    `json:"feeModel" yaml:"feeModel" validate:"omitempty,oneof=flat split"`
	FixedFee        money.Value `json:"fixedFee" yaml:"fixedFee"`
	FixedFeeBefore  money.Value `json:"fixedFeeBefore" yaml:"fixedFeeBefore"`
	FixedFeeAfter   money.Value `json:"fixedFeeAfter" yaml:"fixedFeeAfter"`
	BaseQuantity    int64       `json:"baseQuantity" yaml:"baseQuantity" validate:"gte=0"`
	ExtraQuantity   int64       `json:"extraQuantity" yaml:"extraQuantity" validate:"gte=0"`
	DiscountRate    money.Value `json:"discountRate" yaml:"discountRate"`
	UniformDiscount bool        `json:"uniformDiscount" yaml:"uniformDiscount"`
}

// Params converts the request into engine parameters.
func (r SaleRequest) Params() SaleParameters {
	model := r.FeeModel
	if model == "" {
		model = FeeModelFlat
	}
	return SaleParameters{
		UnitPrice:       r.UnitPrice,
		UnitCost:        r.UnitCost,
		PlatformFeeRate: r.PlatformFeeRate,
		Fees: FeeSchedule{
			Model:          model,
			FixedFee:       r.FixedFee,
			FixedFeeBefore: r.FixedFeeBefore,
			FixedFeeAfter:  r.FixedFeeAfter,
		},
		BaseQuantity:  r.BaseQuantity,
		ExtraQuantity: r.ExtraQuantity,
	}
}

// Discount returns the optional discount carried by the request.
func (r SaleRequest) Discount() Discount {
	return Discount{Rate: r.DiscountRate, Uniform: r.UniformDiscount}
}
