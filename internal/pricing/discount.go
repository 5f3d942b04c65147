package pricing

// ResolveUnitPrice merges a list price with a discount percentage into the
// effective tax-exclusive unit price. Tax-inclusive lines are stripped of
// their tax share before rounding so the stored unit price is always
// tax-exclusive. Missing inputs default to zero; a zero-price line is valid
// and supports quote-only rows with hidden pricing.
func ResolveUnitPrice(unitListPrice, discountPct, taxPct float64, taxInclusive bool, precision int) float64 {
	price := unitListPrice * (1 - discountPct/100)
	if taxInclusive {
		price = SafeDiv(price, 1+taxPct/100)
	}
	return Round(price, precision)
}

// LineTotal derives the charged total for a line from its quantity and
// effective unit price.
func LineTotal(askedQuantity, unitPrice float64, precision int) float64 {
	return Round(askedQuantity*unitPrice, precision)
}
