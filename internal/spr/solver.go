// Package spr implements the special price request solver: a bidirectional
// discount/price state machine that lets a buyer propose either a blended
// discount percentage or an absolute target price, and redistributes the
// implied discount across lines in proportion to their share of the cart.
package spr

import (
	"math"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
)

// Line is one cart row participating in the redistribution.
type Line struct {
	ProductID string  `json:"productId"`
	ItemNo    *int    `json:"itemNo,omitempty"`
	Quantity  float64 `json:"askedQuantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"totalPrice"`

	Contribution           float64 `json:"contribution"`
	RevisedValue           float64 `json:"revisedValue"`
	BuyerRequestedPrice    float64 `json:"buyerRequestedPrice"`
	BuyerRequestedDiscount float64 `json:"buyerRequestedDiscount"`
}

// Details is the solver output attached to a quote.
type Details struct {
	TargetPrice       float64 `json:"targetPrice"`
	RequestedDiscount float64 `json:"sprRequestedDiscount"`
	IsRequested       bool    `json:"isSPRRequested"`
	SPR               bool    `json:"spr"`
}

// State holds the solver inputs and the current request. Transitions mutate
// Details and the per-line redistribution fields together so they can never
// drift apart.
type State struct {
	Enabled         bool
	Precision       int
	TotalValue      float64
	CashDiscountPct float64
	Details         Details
	Lines           []Line
}

// DiscountToPrice converts a blended discount percentage into an absolute
// target price. Deliberately unclamped: a discount above 100 produces a
// negative target price, matching observed commercial behavior upstream.
func DiscountToPrice(totalValue, discountPct float64, precision int) float64 {
	return pricing.Round(totalValue-totalValue*discountPct/100, precision)
}

// PriceToDiscount converts an absolute target price into a blended discount
// percentage clamped to [0,100]. The clamp is asymmetric with
// DiscountToPrice on purpose.
func PriceToDiscount(totalValue, targetPrice float64, precision int) float64 {
	d := pricing.Round(100-pricing.SafeDiv(targetPrice, totalValue)*100, precision)
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return d
}

func (s *State) precision() int {
	if s.Precision <= 0 {
		return pricing.DefaultPrecision
	}
	return s.Precision
}

// SetDiscount handles a discount input change: the target price follows the
// discount, unclamped.
func (s *State) SetDiscount(discountPct float64) {
	p := s.precision()
	s.Details.RequestedDiscount = discountPct
	s.Details.TargetPrice = DiscountToPrice(s.TotalValue, discountPct, p)
	s.finish(p)
}

// SetTargetPrice handles a price input change: the discount follows the
// price, clamped to [0,100].
func (s *State) SetTargetPrice(targetPrice float64) {
	p := s.precision()
	s.Details.TargetPrice = targetPrice
	s.Details.RequestedDiscount = PriceToDiscount(s.TotalValue, targetPrice, p)
	s.finish(p)
}

// SetTotalValue handles an external total change, e.g. a cash discount
// toggle. A held non-zero discount is kept fixed and the price recomputed
// from it. With no discount held the target price tracks the new total and,
// when a cash discount is active, the displayed discount is back-computed
// against the pre-cash-discount total.
func (s *State) SetTotalValue(totalValue float64) {
	p := s.precision()
	s.TotalValue = totalValue

	if s.Details.RequestedDiscount != 0 {
		s.Details.TargetPrice = DiscountToPrice(totalValue, s.Details.RequestedDiscount, p)
		s.finish(p)
		return
	}

	s.Details.TargetPrice = totalValue
	if s.CashDiscountPct > 0 {
		originalTotal := pricing.SafeDiv(totalValue, 1-s.CashDiscountPct/100)
		s.Details.RequestedDiscount = PriceToDiscount(originalTotal, totalValue, p)
	}
	s.finish(p)
}

// finish recomputes the per-line redistribution and the approval flags for
// the current target price.
func (s *State) finish(precision int) {
	s.redistribute(precision)
	s.Details.IsRequested = math.Round(s.Details.TargetPrice) < s.TotalValue
	s.Details.SPR = s.Details.IsRequested && s.Enabled
}

// redistribute spreads the target price across lines by each line's share
// of the cart total. Proportional split, not per-line negotiation.
func (s *State) redistribute(precision int) {
	for i := range s.Lines {
		li := &s.Lines[i]
		li.Contribution = pricing.Round(pricing.SafeDiv(li.LineTotal, s.TotalValue)*100, precision)
		li.RevisedValue = pricing.Round(s.Details.TargetPrice*li.Contribution/100, precision)
		li.BuyerRequestedPrice = pricing.Round(pricing.SafeDiv(li.RevisedValue, li.Quantity), precision)
		li.BuyerRequestedDiscount = pricing.Round(pricing.SafeDiv(li.UnitPrice-li.BuyerRequestedPrice, li.UnitPrice)*100, precision)
	}
}
