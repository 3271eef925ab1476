package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the pricingctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "pricingctl",
		Short: "Seller profit and pricing calculator",
		Long: `pricingctl evaluates marketplace sale scenarios with exact decimal arithmetic.

Examples:
  pricingctl profit --price 100 --cost 40 --fee-rate 0.2 --fixed-fee 5 --base-qty 10
  pricingctl compare --file scenario.yaml
  pricingctl discount max-extra --file scenario.yaml --extra-qty 5`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(root)

	discount := &cobra.Command{
		Use:   "discount",
		Short: "Break-even discounts",
	}
	discount.AddCommand(
		calcCommand(opts, "max-extra", "Largest discount on extra units that keeps their margin non-negative", runMaxExtra),
		calcCommand(opts, "uniform", "Discount on every unit that keeps the batch profit equal to selling the base quantity alone at full price", runUniform),
	)

	root.AddCommand(
		calcCommand(opts, "profit", "Batch profit, with --discount applied to extra units (or all with --uniform)", runProfit),
		calcCommand(opts, "separate", "Profit of selling every unit in its own transaction", runSeparate),
		calcCommand(opts, "compare", "Compare batch and separate sales", runCompare),
		calcCommand(opts, "direct", "Direct-sale price that keeps the separate-sales profit", runDirect),
		calcCommand(opts, "report", "Every calculation at once", runReport),
		discount,
	)
	return root
}

// Execute runs the CLI against os.Args.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
