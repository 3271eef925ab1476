package pricing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-margin/internal/money"
	"github.com/noah-isme/toko-margin/internal/obs"
	"github.com/noah-isme/toko-margin/internal/pricing"
)

func newService(t *testing.T, logs *bytes.Buffer) (*pricing.Service, *obs.PricingMetrics) {
	t.Helper()
	metrics := obs.NewPricingMetrics("margin_test", prometheus.NewRegistry())
	return &pricing.Service{
		Engine:  newEngine(),
		Logger:  obs.NewLoggerTo(logs, "json", "debug"),
		Metrics: metrics,
		NewID:   func() uuid.UUID { return uuid.MustParse("11111111-1111-1111-1111-111111111111") },
	}, metrics
}

func TestServiceRecordsOutcomes(t *testing.T) {
	var logs bytes.Buffer
	svc, metrics := newService(t, &logs)
	ctx := context.Background()

	_, err := svc.CompareSalesStrategies(ctx, flatSale())
	require.NoError(t, err)

	broken := flatSale()
	broken.PlatformFeeRate = money.Int(1)
	_, err = svc.MaxDiscountPerExtraUnit(ctx, broken)
	require.ErrorIs(t, err, money.ErrDivisionByZero)

	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CalculationsTotal.WithLabelValues(pricing.OpCompare, "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(metrics.CalculationsTotal.WithLabelValues(pricing.OpMaxDiscount, "division_by_zero")))
	require.Contains(t, logs.String(), `"operation":"max_discount_per_extra_unit"`)
	require.Contains(t, logs.String(), `"level":"warn"`)
}

func TestServiceReport(t *testing.T) {
	var logs bytes.Buffer
	svc, _ := newService(t, &logs)

	report, err := svc.Report(context.Background(), flatSale())
	require.NoError(t, err)
	require.Equal(t, "11111111-1111-1111-1111-111111111111", report.ID.String())
	require.Equal(t, pricing.FeeModelFlat, report.FeeModel)
	require.Equal(t, "395.00000000", report.BaseProfit.String())
	require.Equal(t, "350.00000000", report.SeparateSalesProfit.String())
	require.Equal(t, "45.00000000", report.Comparison.Difference.String())
	require.Equal(t, "75.00000000", report.DirectSale.DirectPricePerUnit.String())
	require.Equal(t, "50.00000000", report.MaxDiscountPerExtraUnit.Amount.String())
	require.NotNil(t, report.UniformDiscount)
	require.True(t, report.UniformDiscount.Amount.IsZero())
}

func TestServiceReportSplitModelOmitsUniformDiscount(t *testing.T) {
	var logs bytes.Buffer
	svc, _ := newService(t, &logs)

	report, err := svc.Report(context.Background(), splitSale())
	require.NoError(t, err)
	require.Equal(t, pricing.FeeModelSplit, report.FeeModel)
	require.Nil(t, report.UniformDiscount)
	require.Equal(t, "395.40000000", report.BaseProfit.String())
}

func TestServiceReportFailsAsAWhole(t *testing.T) {
	var logs bytes.Buffer
	svc, _ := newService(t, &logs)

	p := flatSale()
	p.BaseQuantity = 0
	_, err := svc.Report(context.Background(), p)
	require.ErrorIs(t, err, money.ErrDivisionByZero)
}

func TestServiceWithoutMetrics(t *testing.T) {
	svc := &pricing.Service{Engine: newEngine()}
	profit, err := svc.BaseProfit(context.Background(), flatSale())
	require.NoError(t, err)
	require.Equal(t, "395.00000000", profit.String())
	report, err := svc.Report(context.Background(), flatSale())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, report.ID)
}

func TestResultLabel(t *testing.T) {
	require.Equal(t, "ok", pricing.ResultLabel(nil))
	require.Equal(t, "invalid_number", pricing.ResultLabel(money.ErrInvalidNumber))
	require.Equal(t, "negative_quantity", pricing.ResultLabel(pricing.ErrNegativeQuantity))
	require.Equal(t, "unsupported_fee_model", pricing.ResultLabel(pricing.ErrUnsupportedFeeModel))
}

func TestSelfCheck(t *testing.T) {
	require.NoError(t, pricing.SelfCheck{Engine: newEngine()}.Check(context.Background(), time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, pricing.SelfCheck{Engine: newEngine()}.Check(ctx, time.Second), context.Canceled)
}
