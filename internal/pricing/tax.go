package pricing

// selectRegime picks the authoritative total percentage and component
// schedule for the line based on the inter/intra state decision made by the
// caller from the billing and warehouse addresses.
func selectRegime(li *LineItem, isInter bool) {
	if isInter {
		li.Tax = li.InterTax.TotalTax
		return
	}
	li.Tax = li.IntraTax.TotalTax
}

func regimeComponents(li LineItem, isInter bool) []TaxComponent {
	if isInter {
		return li.InterTax.Components
	}
	return li.IntraTax.Components
}

// applyTaxBreakup walks the component schedule in order against the line
// base (charged total plus package forwarding). Non-compound components tax
// the base; compound components tax the running sum of the components before
// them. Each component amount is recorded on the line keyed by name.
func applyTaxBreakup(li *LineItem, components []TaxComponent, precision int) {
	base := li.TotalPrice + li.PFRate
	li.TaxValues = make(map[string]float64, len(components))

	var running float64
	for _, comp := range components {
		if comp.Name == "" {
			// A nameless component cannot be keyed into the breakup; the
			// recover boundary in Calculate turns this into a degraded run.
			panic("pricing: tax component without a name")
		}
		var amount float64
		if comp.Compound {
			amount = running * comp.Percentage / 100
		} else {
			amount = base * comp.Percentage / 100
		}
		amount = Round(amount, precision)
		running += amount
		li.TaxValues[comp.Name] += amount
	}
	li.TaxAmount = Round(running, precision)
}

// applyShippingTaxBreakup mirrors the item tax walk for the line's shipping
// charge. The compound accumulator is reset per line and carries forward
// only within this line's schedule.
func applyShippingTaxBreakup(li *LineItem, components []TaxComponent, precision int) {
	var running float64
	for _, comp := range components {
		var amount float64
		if comp.Compound {
			amount = running * comp.Percentage / 100
		} else {
			amount = li.ShippingCharges * comp.Percentage / 100
		}
		running += Round(amount, precision)
	}
	li.ShippingTax = Round(running, precision)
}
