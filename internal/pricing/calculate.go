package pricing

import "math"

// Calculate runs the full pipeline over a fresh copy of the input lines and
// folds the derived values into the cart aggregate in a separate pass, so a
// partially accumulated aggregate is never observable. The same processed
// input always produces identical totals.
//
// Any panic raised by malformed reference data is recovered and degraded to
// the input lines unchanged with an empty breakup; callers distinguish the
// fallback through Result.Degraded.
func Calculate(in Input) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = degradedResult(in)
		}
	}()

	precision := in.Settings.precision()
	lines := deriveLines(in, precision)
	details := foldLines(lines, in, precision)

	return Result{
		Products: lines,
		Details:  details,
		PFRate:   details.PFRate,
	}
}

// deriveLines is phase one: every per-line derived field is computed into a
// new slice, leaving the caller's lines untouched.
func deriveLines(in Input, precision int) []LineItem {
	lines := make([]LineItem, len(in.Items))
	copy(lines, in.Items)

	for i := range lines {
		li := &lines[i]

		selectRegime(li, in.IsInter)
		resolveVolumeDiscount(li, in.Schedule)

		li.UnitPrice = ResolveUnitPrice(li.UnitListPrice, li.AppliedDiscount, li.Tax, li.TaxInclusive, precision)
		li.TotalPrice = LineTotal(li.AskedQuantity, li.UnitPrice, precision)

		resolveMargin(li, precision)

		li.PFRate = Round(li.TotalPrice*li.PFItemValue/100, precision)

		components := regimeComponents(*li, in.IsInter)
		applyTaxBreakup(li, components, precision)

		li.ShippingTax = 0
		if in.Settings.ItemWiseShippingTax && in.BeforeTax {
			applyShippingTaxBreakup(li, components, precision)
		}

		taxable := li.UnitPrice + SafeDiv(li.PFRate, li.AskedQuantity)
		if in.BeforeTax && in.Settings.ItemWiseShippingTax {
			taxable += li.ShippingCharges
		}
		li.ItemTaxableAmount = Round(taxable, precision)
	}
	return lines
}

// foldLines is phase two: a pure reduction of the derived lines plus the
// cart-level charges into the aggregate.
func foldLines(lines []LineItem, in Input, precision int) CartValue {
	details := CartValue{
		TaxTotals:        make(map[string]float64),
		OverallShipping:  Round(in.OverallShipping, precision),
		InsuranceCharges: Round(in.InsuranceCharges, precision),
	}

	var subTotal, subTotalVolume, pfRate, itemTax, shippingTax float64
	for i := range lines {
		li := &lines[i]

		// Pre-volume subtotal prices the line with the base discount only.
		baseUnit := ResolveUnitPrice(li.UnitListPrice, li.Discount, li.Tax, li.TaxInclusive, precision)
		subTotal += LineTotal(li.AskedQuantity, baseUnit, precision)

		subTotalVolume += li.TotalPrice
		pfRate += li.PFRate
		itemTax += li.TaxAmount
		shippingTax += li.ShippingTax

		for name, amount := range li.TaxValues {
			details.TaxTotals[name] += amount
		}
	}

	if in.BeforeTax {
		if !in.Settings.ItemWiseShippingTax {
			// Cart-level shipping tax uses the flat before-tax percentage
			// even when no line carries a breakup schedule.
			shippingTax = in.OverallShipping * in.BeforeTaxPercentage / 100
		} else if anyLineWithoutBreakup(lines, in.IsInter) {
			// Breakup-less lines cannot contribute through the per-line
			// walk; they still owe the flat cart-level proportion.
			shippingTax += in.OverallShipping * in.BeforeTaxPercentage / 100
		}
	}

	for name, amount := range details.TaxTotals {
		details.TaxTotals[name] = Round(amount, precision)
	}

	details.SubTotal = Round(subTotal, precision)
	details.SubTotalVolume = Round(subTotalVolume, precision)
	details.VolumeDiscountApplied = Round(details.SubTotal-details.SubTotalVolume, precision)
	details.PFRate = Round(pfRate, precision)
	details.ShippingTax = Round(shippingTax, precision)
	details.TotalTax = Round(itemTax+shippingTax, precision)
	details.OverallTax = details.TotalTax

	taxable := details.SubTotalVolume + details.PFRate
	if in.BeforeTax {
		taxable += details.OverallShipping
	}
	details.TaxableAmount = Round(taxable, precision)

	details.CalculatedTotal = Round(
		details.SubTotalVolume+details.TotalTax+details.PFRate+details.OverallShipping+details.InsuranceCharges,
		precision,
	)

	if in.Settings.RoundingAdjustment {
		details.GrandTotal = math.Round(details.CalculatedTotal)
		details.RoundingAdjustment = Round(details.GrandTotal-details.CalculatedTotal, precision)
	} else {
		details.GrandTotal = details.CalculatedTotal
		details.RoundingAdjustment = 0
	}
	return details
}

func anyLineWithoutBreakup(lines []LineItem, isInter bool) bool {
	for i := range lines {
		if len(regimeComponents(lines[i], isInter)) == 0 {
			return true
		}
	}
	return false
}

func degradedResult(in Input) Result {
	lines := make([]LineItem, len(in.Items))
	copy(lines, in.Items)
	return Result{
		Products: lines,
		Details:  CartValue{TaxTotals: map[string]float64{}},
		Degraded: true,
	}
}
