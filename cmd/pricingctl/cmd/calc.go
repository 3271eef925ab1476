package cmd

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/noah-isme/toko-margin/internal/money"
	"github.com/noah-isme/toko-margin/internal/obs"
	"github.com/noah-isme/toko-margin/internal/pricing"
)

type calcFunc func(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error)

func calcCommand(opts *options, use, short string, run calcFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			req, err := opts.request(c.Flags())
			if err != nil {
				return err
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			svc := &pricing.Service{
				Engine: pricing.NewEngine(money.NewContext(opts.precision)),
				Logger: obs.NewLoggerTo(c.ErrOrStderr(), "console", level),
			}
			out, err := run(c.Context(), svc, req)
			if err != nil {
				return err
			}
			return writeJSON(c.OutOrStdout(), out)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runProfit(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	profit, err := svc.TotalProfit(ctx, req.Params(), req.Discount())
	return map[string]money.Amount{"profit": profit}, err
}

func runSeparate(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	profit, err := svc.SeparateSalesProfit(ctx, req.Params())
	return map[string]money.Amount{"profit": profit}, err
}

func runCompare(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	return svc.CompareSalesStrategies(ctx, req.Params())
}

func runDirect(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	return svc.DirectSalePrice(ctx, req.Params())
}

func runMaxExtra(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	return svc.MaxDiscountPerExtraUnit(ctx, req.Params())
}

func runUniform(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	return svc.UniformDiscount(ctx, req.Params())
}

func runReport(ctx context.Context, svc *pricing.Service, req pricing.SaleRequest) (any, error) {
	return svc.Report(ctx, req.Params())
}
