package cmd

import (
	"errors"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/toko-margin/internal/money"
	"github.com/noah-isme/toko-margin/internal/pricing"
)

// options holds the persistent flags shared by every calculation.
type options struct {
	file      string
	precision int32
	verbose   bool

	price, cost, feeRate    string
	feeModel                string
	fixedFee                string
	fixedBefore, fixedAfter string
	baseQty, extraQty       int64
	discount                string
	uniform                 bool
}

func (o *options) bind(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVarP(&o.file, "file", "f", "", "YAML or JSON scenario file")
	f.Int32Var(&o.precision, "precision", money.DefaultPrecision, "fractional digits kept in quotients (minimum 40)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log each calculation to stderr")

	f.StringVar(&o.price, "price", "", "unit price")
	f.StringVar(&o.cost, "cost", "", "unit cost")
	f.StringVar(&o.feeRate, "fee-rate", "", "platform fee rate, e.g. 0.2")
	f.StringVar(&o.feeModel, "fee-model", "", "fee model: flat or split")
	f.StringVar(&o.fixedFee, "fixed-fee", "", "fixed fee per sale (flat model)")
	f.StringVar(&o.fixedBefore, "fixed-fee-before", "", "fixed fee deducted before the rate (split model)")
	f.StringVar(&o.fixedAfter, "fixed-fee-after", "", "fixed fee added after the rate (split model)")
	f.Int64Var(&o.baseQty, "base-qty", 0, "units sold at full price")
	f.Int64Var(&o.extraQty, "extra-qty", 0, "additional units eligible for a discount")
	f.StringVar(&o.discount, "discount", "", "discount rate, e.g. 0.1")
	f.BoolVar(&o.uniform, "uniform", false, "apply the discount to every unit")
}

// request merges the scenario file with any explicitly set flags. Flags win.
func (o *options) request(flags *pflag.FlagSet) (pricing.SaleRequest, error) {
	var req pricing.SaleRequest
	if o.file != "" {
		raw, err := os.ReadFile(o.file)
		if err != nil {
			return req, fmt.Errorf("read scenario: %w", err)
		}
		if err := yaml.Unmarshal(raw, &req); err != nil {
			return req, fmt.Errorf("parse scenario %s: %w", o.file, err)
		}
	}

	values := []struct {
		flag   string
		raw    string
		target *money.Value
	}{
		{"price", o.price, &req.UnitPrice},
		{"cost", o.cost, &req.UnitCost},
		{"fee-rate", o.feeRate, &req.PlatformFeeRate},
		{"fixed-fee", o.fixedFee, &req.FixedFee},
		{"fixed-fee-before", o.fixedBefore, &req.FixedFeeBefore},
		{"fixed-fee-after", o.fixedAfter, &req.FixedFeeAfter},
		{"discount", o.discount, &req.DiscountRate},
	}
	for _, v := range values {
		if !flags.Changed(v.flag) {
			continue
		}
		if err := v.target.Set(v.raw); err != nil {
			return req, fmt.Errorf("--%s: %w", v.flag, err)
		}
	}
	if flags.Changed("fee-model") {
		req.FeeModel = pricing.FeeModel(o.feeModel)
	}
	if flags.Changed("base-qty") {
		req.BaseQuantity = o.baseQty
	}
	if flags.Changed("extra-qty") {
		req.ExtraQuantity = o.extraQty
	}
	if flags.Changed("uniform") {
		req.UniformDiscount = o.uniform
	}

	if err := pricing.NewValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return req, fmt.Errorf("invalid scenario: %s failed %q", fe.Field(), fe.Tag())
		}
		return req, err
	}
	return req, nil
}
