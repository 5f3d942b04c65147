// Package currency applies a currency conversion factor to computed cart
// values. Conversion happens after calculation so the pipeline itself stays
// currency-agnostic.
package currency

import (
	"github.com/shopspring/decimal"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
)

// Convert scales a single amount by the factor, rounding half-up at the
// given precision. A non-positive factor is treated as identity.
func Convert(amount, factor float64, precision int) float64 {
	if factor <= 0 || factor == 1 {
		return amount
	}
	if precision <= 0 {
		precision = pricing.DefaultPrecision
	}
	d := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(factor))
	f, _ := d.Round(int32(precision)).Float64()
	return f
}

// ConvertResult returns a copy of the calculation result with every
// monetary field scaled by the factor. Percentages and quantities are left
// untouched.
func ConvertResult(res pricing.Result, factor float64, precision int) pricing.Result {
	if factor <= 0 || factor == 1 {
		return res
	}

	out := res
	out.Products = make([]pricing.LineItem, len(res.Products))
	copy(out.Products, res.Products)
	for i := range out.Products {
		li := &out.Products[i]
		li.UnitListPrice = Convert(li.UnitListPrice, factor, precision)
		li.UnitPrice = Convert(li.UnitPrice, factor, precision)
		li.TotalPrice = Convert(li.TotalPrice, factor, precision)
		li.UnitVolumePrice = Convert(li.UnitVolumePrice, factor, precision)
		li.TotalVolumeDiscountPrice = Convert(li.TotalVolumeDiscountPrice, factor, precision)
		li.PFRate = Convert(li.PFRate, factor, precision)
		li.ShippingCharges = Convert(li.ShippingCharges, factor, precision)
		li.ShippingTax = Convert(li.ShippingTax, factor, precision)
		li.ItemTaxableAmount = Convert(li.ItemTaxableAmount, factor, precision)
		li.TaxAmount = Convert(li.TaxAmount, factor, precision)
		if li.TaxValues != nil {
			converted := make(map[string]float64, len(li.TaxValues))
			for name, amount := range li.TaxValues {
				converted[name] = Convert(amount, factor, precision)
			}
			li.TaxValues = converted
		}
	}

	out.Details = convertCart(res.Details, factor, precision)
	out.PFRate = out.Details.PFRate
	return out
}

func convertCart(cv pricing.CartValue, factor float64, precision int) pricing.CartValue {
	out := cv
	out.SubTotal = Convert(cv.SubTotal, factor, precision)
	out.SubTotalVolume = Convert(cv.SubTotalVolume, factor, precision)
	out.VolumeDiscountApplied = Convert(cv.VolumeDiscountApplied, factor, precision)
	out.TotalTax = Convert(cv.TotalTax, factor, precision)
	out.OverallTax = Convert(cv.OverallTax, factor, precision)
	out.ShippingTax = Convert(cv.ShippingTax, factor, precision)
	out.PFRate = Convert(cv.PFRate, factor, precision)
	out.OverallShipping = Convert(cv.OverallShipping, factor, precision)
	out.TaxableAmount = Convert(cv.TaxableAmount, factor, precision)
	out.InsuranceCharges = Convert(cv.InsuranceCharges, factor, precision)
	out.CalculatedTotal = Convert(cv.CalculatedTotal, factor, precision)
	out.GrandTotal = Convert(cv.GrandTotal, factor, precision)
	out.RoundingAdjustment = Convert(cv.RoundingAdjustment, factor, precision)
	if cv.TaxTotals != nil {
		out.TaxTotals = make(map[string]float64, len(cv.TaxTotals))
		for name, amount := range cv.TaxTotals {
			out.TaxTotals[name] = Convert(amount, factor, precision)
		}
	}
	return out
}
