// Package summary orchestrates quote calculation: it gathers reference data
// from collaborator services, refuses to run until every required input is
// present, executes the pricing pipeline on a fresh copy of the cart, and
// exposes the result to HTTP. A superseded run is simply discarded by the
// caller; nothing here keeps state between invocations.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/currency"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/obs"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/refdata"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/spr"
)

// ErrNotReady indicates required reference data is missing and the pipeline
// was not run. The caller surfaces this as a loading state, not a failure.
var ErrNotReady = errors.New("summary: reference data incomplete")

// ErrInvalidInput is returned when the request payload cannot be processed.
var ErrInvalidInput = errors.New("summary: invalid input")

// QuoteItem is one cart row as submitted by the storefront.
type QuoteItem struct {
	ProductID       string   `json:"productId" validate:"required"`
	ItemNo          *int     `json:"itemNo,omitempty"`
	AskedQuantity   float64  `json:"askedQuantity" validate:"gte=0"`
	UnitListPrice   float64  `json:"unitListPrice" validate:"gte=0"`
	Discount        float64  `json:"discount" validate:"gte=0,lte=100"`
	DiscChanged     bool     `json:"discChanged"`
	TaxInclusive    bool     `json:"taxInclusive"`
	PFItemValue     *float64 `json:"pfItemValue,omitempty"`
	ShippingCharges float64  `json:"shippingCharges" validate:"gte=0"`
	ProductCost     float64  `json:"productCost" validate:"gte=0"`
	AddonCost       float64  `json:"addonCost" validate:"gte=0"`
}

// QuoteRequest carries one calculation run's inputs.
type QuoteRequest struct {
	CompanyID      string      `json:"companyId" validate:"required"`
	SellerID       string      `json:"sellerId" validate:"required"`
	BillingState   string      `json:"billingState" validate:"required"`
	WarehouseState string      `json:"warehouseState" validate:"required"`
	CurrencyCode   string      `json:"currencyCode"`
	Items          []QuoteItem `json:"items" validate:"required,min=1,dive"`

	Schedule            []pricing.VolumeDiscountRecord `json:"volumeDiscounts,omitempty"`
	OverallShipping     float64                        `json:"overallShipping" validate:"gte=0"`
	BeforeTax           bool                           `json:"beforeTax"`
	BeforeTaxPercentage float64                        `json:"beforeTaxPercentage" validate:"gte=0"`
	InsuranceCharges    float64                        `json:"insuranceCharges" validate:"gte=0"`
}

// QuoteResponse is the calculation output returned to the storefront.
type QuoteResponse struct {
	RunID    string             `json:"runId"`
	Products []pricing.LineItem `json:"products"`
	Details  pricing.CartValue  `json:"vdDetails"`
	PFRate   float64            `json:"pfRate"`
	IsInter  bool               `json:"isInter"`
	Degraded bool               `json:"degraded"`
	Factor   float64            `json:"currencyFactor"`
}

// Service wires the calculation core to its collaborators.
type Service struct {
	Discounts refdata.DiscountLookup
	Currency  refdata.CurrencyFactors
	Tax       refdata.TaxMetadata
	Prefs     refdata.CompanyPrefs
	Settings  pricing.Settings
	Logger    zerolog.Logger
}

// Quote runs the full pipeline for one cart. Reference data must be fully
// resolvable up front; a partial set of collaborators yields ErrNotReady
// rather than a calculation on incomplete data.
func (s *Service) Quote(ctx context.Context, req QuoteRequest) (QuoteResponse, error) {
	if s == nil || s.Discounts == nil || s.Tax == nil || s.Prefs == nil {
		return QuoteResponse{}, ErrNotReady
	}
	if strings.TrimSpace(req.CompanyID) == "" || strings.TrimSpace(req.SellerID) == "" || strings.TrimSpace(req.BillingState) == "" {
		return QuoteResponse{}, ErrNotReady
	}
	if len(req.Items) == 0 {
		return QuoteResponse{}, fmt.Errorf("empty cart: %w", ErrInvalidInput)
	}

	runID := uuid.NewString()
	start := time.Now()

	productIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		productIDs = append(productIDs, it.ProductID)
	}

	prefs, err := s.Prefs.Preferences(ctx, req.CompanyID)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("company preferences: %w", err)
	}
	discounts, err := s.Discounts.ProductDiscounts(ctx, req.CompanyID, req.SellerID, productIDs)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("discount lookup: %w", err)
	}
	hsn, err := s.Tax.HSNDetails(ctx, productIDs)
	if err != nil {
		return QuoteResponse{}, fmt.Errorf("tax metadata: %w", err)
	}

	factor := 1.0
	if s.Currency != nil && strings.TrimSpace(req.CurrencyCode) != "" {
		factor, err = s.Currency.Factor(ctx, req.CurrencyCode)
		if err != nil {
			return QuoteResponse{}, fmt.Errorf("currency factor: %w", err)
		}
	}

	isInter := interState(req.BillingState, req.WarehouseState)
	in := s.assembleInput(req, prefs, discounts, hsn, isInter)

	result := pricing.Calculate(in)
	obs.ObserveCalcRun(result.Degraded, time.Since(start))

	evt := s.Logger.Info()
	if result.Degraded {
		evt = s.Logger.Warn()
	}
	evt.Str("run_id", runID).
		Str("company_id", req.CompanyID).
		Bool("is_inter", isInter).
		Bool("degraded", result.Degraded).
		Int("lines", len(result.Products)).
		Float64("grand_total", result.Details.GrandTotal).
		Dur("duration", time.Since(start)).
		Msg("quote_calculated")

	result = currency.ConvertResult(result, factor, in.Settings.Precision)
	return QuoteResponse{
		RunID:    runID,
		Products: result.Products,
		Details:  result.Details,
		PFRate:   result.PFRate,
		IsInter:  isInter,
		Degraded: result.Degraded,
		Factor:   factor,
	}, nil
}

// assembleInput merges submitted cart rows with the resolved reference data
// into the pipeline input.
func (s *Service) assembleInput(req QuoteRequest, prefs refdata.Preferences, discounts map[string]refdata.DiscountRecord, hsn map[string]refdata.HSNDetails, isInter bool) pricing.Input {
	items := make([]pricing.LineItem, 0, len(req.Items))
	var rawSubtotal float64
	for _, it := range req.Items {
		li := pricing.LineItem{
			ProductID:       it.ProductID,
			ItemNo:          it.ItemNo,
			AskedQuantity:   it.AskedQuantity,
			UnitListPrice:   it.UnitListPrice,
			Discount:        it.Discount,
			DiscChanged:     it.DiscChanged,
			TaxInclusive:    it.TaxInclusive,
			ShippingCharges: it.ShippingCharges,
			ProductCost:     it.ProductCost,
			AddonCost:       it.AddonCost,
		}
		if rec, ok := discounts[it.ProductID]; ok {
			// The larger of the pricelist discount and the manual value wins.
			if rec.AppliedDiscount > li.Discount {
				li.Discount = rec.AppliedDiscount
			}
			li.NoCombine = rec.CantCombine
		}
		if meta, ok := hsn[it.ProductID]; ok {
			li.InterTax = meta.InterTax
			li.IntraTax = meta.IntraTax
		}
		if it.PFItemValue != nil {
			li.PFItemValue = *it.PFItemValue
		} else {
			li.PFItemValue = prefs.PFPercentage
		}
		rawSubtotal += it.AskedQuantity * it.UnitListPrice
		items = append(items, li)
	}

	insurance := req.InsuranceCharges
	if insurance == 0 && prefs.InsuranceEnabled && prefs.InsurancePercentage > 0 {
		insurance = pricing.Round(rawSubtotal*prefs.InsurancePercentage/100, s.Settings.Precision)
	}

	return pricing.Input{
		Items:               items,
		Schedule:            req.Schedule,
		IsInter:             isInter,
		Settings:            s.Settings,
		OverallShipping:     req.OverallShipping,
		BeforeTax:           req.BeforeTax,
		BeforeTaxPercentage: req.BeforeTaxPercentage,
		InsuranceCharges:    insurance,
	}
}

// interState reports whether billing and warehouse addresses fall in
// different administrative regions.
func interState(billing, warehouse string) bool {
	b := strings.ToLower(strings.TrimSpace(billing))
	w := strings.ToLower(strings.TrimSpace(warehouse))
	return b != w
}

// SolveRequest drives one target discount solver transition.
type SolveRequest struct {
	CompanyID       string     `json:"companyId" validate:"required"`
	TotalValue      float64    `json:"totalValue" validate:"gte=0"`
	CashDiscountPct float64    `json:"cashDiscountPct" validate:"gte=0,lt=100"`
	Lines           []spr.Line `json:"lines" validate:"required,min=1,dive"`

	// Exactly one of the three inputs selects the transition.
	DiscountInput *float64 `json:"discountInput,omitempty"`
	PriceInput    *float64 `json:"priceInput,omitempty"`
	NewTotalValue *float64 `json:"newTotalValue,omitempty"`

	// HeldDiscount carries the discount already in effect when a total
	// change arrives, so the transition can hold it fixed.
	HeldDiscount float64 `json:"heldDiscount" validate:"gte=0"`
}

// SolveResponse returns the solver state after the transition.
type SolveResponse struct {
	Details spr.Details `json:"sprDetails"`
	Lines   []spr.Line  `json:"lines"`
}

// Solve applies a single solver transition using the company's SPR setting.
func (s *Service) Solve(ctx context.Context, req SolveRequest) (SolveResponse, error) {
	if s == nil || s.Prefs == nil {
		return SolveResponse{}, ErrNotReady
	}
	if strings.TrimSpace(req.CompanyID) == "" {
		return SolveResponse{}, ErrNotReady
	}
	prefs, err := s.Prefs.Preferences(ctx, req.CompanyID)
	if err != nil {
		return SolveResponse{}, fmt.Errorf("company preferences: %w", err)
	}

	state := &spr.State{
		Enabled:         prefs.SPREnabled,
		Precision:       s.Settings.Precision,
		TotalValue:      req.TotalValue,
		CashDiscountPct: req.CashDiscountPct,
		Lines:           append([]spr.Line(nil), req.Lines...),
	}

	switch {
	case req.DiscountInput != nil:
		state.SetDiscount(*req.DiscountInput)
		obs.ObserveSolve("discount")
	case req.PriceInput != nil:
		state.SetTargetPrice(*req.PriceInput)
		obs.ObserveSolve("price")
	case req.NewTotalValue != nil:
		state.Details.RequestedDiscount = req.HeldDiscount
		state.SetTotalValue(*req.NewTotalValue)
		obs.ObserveSolve("total_change")
	default:
		return SolveResponse{}, fmt.Errorf("no solver input provided: %w", ErrInvalidInput)
	}

	return SolveResponse{Details: state.Details, Lines: state.Lines}, nil
}
