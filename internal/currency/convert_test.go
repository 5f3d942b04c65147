package currency_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/currency"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
)

func TestConvertIdentity(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 123.45, currency.Convert(123.45, 1, 2), 1e-9)
	require.InDelta(t, 123.45, currency.Convert(123.45, 0, 2), 1e-9)
	require.InDelta(t, 123.45, currency.Convert(123.45, -2, 2), 1e-9)
}

func TestConvertRoundsAtPrecision(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 82.97, currency.Convert(100, 0.82966, 2), 1e-9)
	require.InDelta(t, 82.966, currency.Convert(100, 0.82966, 3), 1e-9)
}

func TestConvertResultScalesMonetaryFields(t *testing.T) {
	t.Parallel()

	res := pricing.Calculate(pricing.Input{
		Items: []pricing.LineItem{{
			ProductID:     "prod-1",
			AskedQuantity: 2,
			UnitListPrice: 100,
			IntraTax: pricing.TaxBreakup{TotalTax: 18, Components: []pricing.TaxComponent{
				{Name: "CGST", Percentage: 9},
				{Name: "SGST", Percentage: 9},
			}},
		}},
	})
	converted := currency.ConvertResult(res, 2, 2)
	require.InDelta(t, res.Products[0].UnitPrice*2, converted.Products[0].UnitPrice, 1e-9)
	require.InDelta(t, res.Details.GrandTotal*2, converted.Details.GrandTotal, 1e-9)
	require.InDelta(t, res.Details.TaxTotals["CGST"]*2, converted.Details.TaxTotals["CGST"], 1e-9)
	// Quantities and percentages are untouched.
	require.InDelta(t, res.Products[0].AskedQuantity, converted.Products[0].AskedQuantity, 1e-9)
	require.InDelta(t, res.Products[0].Tax, converted.Products[0].Tax, 1e-9)
	// The original result is not mutated.
	require.InDelta(t, 200.0, res.Products[0].TotalPrice, 1e-9)
}
