package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/toko-margin/internal/money"
)

// SelfCheck verifies that the engine reproduces a known result. It backs the readiness probe.
type SelfCheck struct {
	Engine Engine
}

// Check runs the reference scenario: 10 units at 100, cost 40, 20% fee plus 5 → 395.
func (c SelfCheck) Check(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return err
	}
	got, err := c.Engine.BaseProfit(SaleParameters{
		UnitPrice:       money.Int(100),
		UnitCost:        money.Int(40),
		PlatformFeeRate: money.String("0.2"),
		Fees:            FlatFee(money.Int(5)),
		BaseQuantity:    10,
	})
	if err != nil {
		return err
	}
	if want := "395.00000000"; got.String() != want {
		return fmt.Errorf("pricing self check: got %s want %s", got, want)
	}
	return nil
}
