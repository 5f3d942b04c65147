package pricing

// matchSchedule finds the volume discount record for a line. Saved lines
// match by line number; unsaved lines (nil itemNo) fall back to product ID.
func matchSchedule(li LineItem, schedule []VolumeDiscountRecord) (VolumeDiscountRecord, bool) {
	for _, rec := range schedule {
		if li.ItemNo != nil && rec.ItemNo != nil {
			if *li.ItemNo == *rec.ItemNo {
				return rec, true
			}
			continue
		}
		if rec.ProductID != "" && rec.ProductID == li.ProductID {
			return rec, true
		}
	}
	return VolumeDiscountRecord{}, false
}

// resolveVolumeDiscount applies the eligibility rule and additive stacking.
// A volume discount applies when either the user explicitly edited the line
// discount or the line allows combining, and the schedule carries a positive
// percentage. The stacked total feeds the unit price resolver; the volume
// percentage alone feeds the margin reporting fields. A record may pin the
// stacked total with AppliedDiscount, which overrides the additive sum.
func resolveVolumeDiscount(li *LineItem, schedule []VolumeDiscountRecord) {
	li.VolumeDiscount = 0
	li.VolumeDiscountApplied = false
	li.AppliedDiscount = li.Discount

	rec, ok := matchSchedule(*li, schedule)
	if !ok || rec.VolumeDiscount <= 0 {
		return
	}
	if !li.DiscChanged && li.NoCombine {
		return
	}
	li.VolumeDiscount = rec.VolumeDiscount
	li.VolumeDiscountApplied = true
	if rec.AppliedDiscount > 0 {
		li.AppliedDiscount = rec.AppliedDiscount
		return
	}
	li.AppliedDiscount = li.Discount + rec.VolumeDiscount
}

// resolveMargin fills the reporting-only volume price and margin fields.
// unitVolumePrice reflects the volume percentage alone and is never the
// charged price; the charged price always comes from AppliedDiscount.
func resolveMargin(li *LineItem, precision int) {
	li.UnitVolumePrice = Round(li.UnitListPrice*(1-li.VolumeDiscount/100), precision)
	li.TotalVolumeDiscountPrice = Round(li.AskedQuantity*li.UnitVolumePrice, precision)

	if li.UnitVolumePrice > 0 {
		li.DMC = Round(SafeDiv(li.ProductCost+li.AddonCost, li.UnitVolumePrice)*100, precision)
	} else {
		li.DMC = 100
	}
	li.MarginPercentage = Round(100-li.DMC, precision)
}
