package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/toko-margin/internal/money"
	"github.com/noah-isme/toko-margin/internal/obs"
)

// Operation names used in logs, metrics and spans.
const (
	OpTotalProfit     = "total_profit"
	OpBaseProfit      = "base_profit"
	OpSeparateProfit  = "separate_sales_profit"
	OpMaxDiscount     = "max_discount_per_extra_unit"
	OpUniformDiscount = "uniform_discount"
	OpCompare         = "compare_sales_strategies"
	OpDirectSale      = "direct_sale_price"
	OpReport          = "report"
)

var tracer = otel.Tracer("github.com/noah-isme/toko-margin/internal/pricing")

// Service exposes the engine to callers that want logging, metrics and tracing around
// each calculation.
type Service struct {
	Engine  Engine
	Logger  zerolog.Logger
	Metrics *obs.PricingMetrics
	NewID   func() uuid.UUID
}

// TotalProfit wraps Engine.TotalProfit.
func (s *Service) TotalProfit(ctx context.Context, p SaleParameters, d Discount) (money.Amount, error) {
	return observe(ctx, s, OpTotalProfit, p, func() (money.Amount, error) { return s.Engine.TotalProfit(p, d) })
}

// BaseProfit wraps Engine.BaseProfit.
func (s *Service) BaseProfit(ctx context.Context, p SaleParameters) (money.Amount, error) {
	return observe(ctx, s, OpBaseProfit, p, func() (money.Amount, error) { return s.Engine.BaseProfit(p) })
}

// SeparateSalesProfit wraps Engine.SeparateSalesProfit.
func (s *Service) SeparateSalesProfit(ctx context.Context, p SaleParameters) (money.Amount, error) {
	return observe(ctx, s, OpSeparateProfit, p, func() (money.Amount, error) { return s.Engine.SeparateSalesProfit(p) })
}

// MaxDiscountPerExtraUnit wraps Engine.MaxDiscountPerExtraUnit.
func (s *Service) MaxDiscountPerExtraUnit(ctx context.Context, p SaleParameters) (DiscountResult, error) {
	return observe(ctx, s, OpMaxDiscount, p, func() (DiscountResult, error) { return s.Engine.MaxDiscountPerExtraUnit(p) })
}

// UniformDiscount wraps Engine.UniformDiscount.
func (s *Service) UniformDiscount(ctx context.Context, p SaleParameters) (DiscountResult, error) {
	return observe(ctx, s, OpUniformDiscount, p, func() (DiscountResult, error) { return s.Engine.UniformDiscount(p) })
}

// CompareSalesStrategies wraps Engine.CompareSalesStrategies.
func (s *Service) CompareSalesStrategies(ctx context.Context, p SaleParameters) (SalesComparison, error) {
	return observe(ctx, s, OpCompare, p, func() (SalesComparison, error) { return s.Engine.CompareSalesStrategies(p) })
}

// DirectSalePrice wraps Engine.DirectSalePrice.
func (s *Service) DirectSalePrice(ctx context.Context, p SaleParameters) (DirectSaleAnalysis, error) {
	return observe(ctx, s, OpDirectSale, p, func() (DirectSaleAnalysis, error) { return s.Engine.DirectSalePrice(p) })
}

// Report runs every calculation and stamps the result with a fresh id.
func (s *Service) Report(ctx context.Context, p SaleParameters) (Report, error) {
	return observe(ctx, s, OpReport, p, func() (Report, error) {
		r, err := s.Engine.Report(p)
		if err != nil {
			return Report{}, err
		}
		r.ID = s.newID()
		return r, nil
	})
}

func (s *Service) newID() uuid.UUID {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New()
}

func observe[T any](ctx context.Context, s *Service, op string, p SaleParameters, fn func() (T, error)) (T, error) {
	_, span := tracer.Start(ctx, "pricing."+op)
	defer span.End()
	span.SetAttributes(
		attribute.String("pricing.fee_model", string(p.Fees.Model)),
		attribute.Int64("pricing.base_quantity", p.BaseQuantity),
		attribute.Int64("pricing.extra_quantity", p.ExtraQuantity),
	)

	start := time.Now()
	out, err := fn()
	elapsed := time.Since(start)

	result := ResultLabel(err)
	s.Metrics.ObserveCalculation(op, result, elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
		s.Logger.Warn().Err(err).Str("operation", op).Str("result", result).Msg("pricing_calculation")
		return out, err
	}
	s.Logger.Debug().
		Str("operation", op).
		Str("fee_model", string(p.Fees.Model)).
		Dur("elapsed", elapsed).
		Msg("pricing_calculation")
	return out, nil
}

// ResultLabel classifies a calculation error for metrics.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, money.ErrInvalidNumber):
		return "invalid_number"
	case errors.Is(err, money.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, ErrUnsupportedFeeModel):
		return "unsupported_fee_model"
	case errors.Is(err, ErrNegativeQuantity):
		return "negative_quantity"
	default:
		return "error"
	}
}
