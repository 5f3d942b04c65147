// Package refdata defines the collaborator interfaces the summary
// orchestration consumes — discount lookups, currency factors, tax/HSN
// metadata and company preferences — together with Redis-backed caching and
// circuit-breaker guarded wrappers around them. Fetching the underlying
// data is out of scope; implementations are supplied by the caller.
package refdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/resilience"
)

// ErrUnavailable is returned when a guarded source is refusing requests.
var ErrUnavailable = errors.New("refdata: source unavailable")

// DiscountRecord is one applicable discount returned by the discount
// lookup service.
type DiscountRecord struct {
	ProductVariantID string  `json:"productVariantId"`
	SellerID         string  `json:"sellerId"`
	AppliedDiscount  float64 `json:"appliedDiscount"`
	CantCombine      bool    `json:"cantCombineWithOtherDiscounts"`
}

// HSNDetails carries the per-product tax metadata for both regimes.
type HSNDetails struct {
	InterTax pricing.TaxBreakup `json:"interTax"`
	IntraTax pricing.TaxBreakup `json:"intraTax"`
}

// Preferences holds company-level defaults consumed by the pipeline.
type Preferences struct {
	PFPercentage        float64 `json:"pfPercentage"`
	InsurancePercentage float64 `json:"insurancePercentage"`
	InsuranceEnabled    bool    `json:"insuranceEnabled"`
	CashDiscountPct     float64 `json:"cashDiscountPct"`
	SPREnabled          bool    `json:"sprEnabled"`
}

// DiscountLookup resolves pricelist discounts for a buyer/seller pair.
type DiscountLookup interface {
	ProductDiscounts(ctx context.Context, companyID, sellerID string, productIDs []string) (map[string]DiscountRecord, error)
}

// CurrencyFactors resolves the multiplier for a currency code.
type CurrencyFactors interface {
	Factor(ctx context.Context, currencyCode string) (float64, error)
}

// TaxMetadata resolves HSN tax breakups per product.
type TaxMetadata interface {
	HSNDetails(ctx context.Context, productIDs []string) (map[string]HSNDetails, error)
}

// CompanyPrefs resolves company preference defaults.
type CompanyPrefs interface {
	Preferences(ctx context.Context, companyID string) (Preferences, error)
}

// GuardedPrefs wraps a CompanyPrefs source with a JSON cache and an
// optional circuit breaker.
type GuardedPrefs struct {
	Source  CompanyPrefs
	Cache   *Cache
	Breaker *resilience.Breaker
}

// Preferences returns cached preferences when present, otherwise consults
// the source through the breaker and populates the cache.
func (g GuardedPrefs) Preferences(ctx context.Context, companyID string) (Preferences, error) {
	key := KeyPrefs(companyID)
	var prefs Preferences
	if hit, err := g.Cache.GetJSON(ctx, key, &prefs); err == nil && hit {
		return prefs, nil
	}
	if g.Breaker != nil && !g.Breaker.Allow(ctx) {
		return Preferences{}, fmt.Errorf("company prefs %s: %w", companyID, ErrUnavailable)
	}
	prefs, err := g.Source.Preferences(ctx, companyID)
	if g.Breaker != nil {
		g.Breaker.Report(ctx, err == nil)
	}
	if err != nil {
		return Preferences{}, err
	}
	_ = g.Cache.SetJSON(ctx, key, prefs)
	return prefs, nil
}

// GuardedDiscounts wraps a DiscountLookup source with a JSON cache and an
// optional circuit breaker.
type GuardedDiscounts struct {
	Source  DiscountLookup
	Cache   *Cache
	Breaker *resilience.Breaker
}

// ProductDiscounts returns cached discounts when present, otherwise
// consults the source through the breaker and populates the cache.
func (g GuardedDiscounts) ProductDiscounts(ctx context.Context, companyID, sellerID string, productIDs []string) (map[string]DiscountRecord, error) {
	key := KeyDiscounts(companyID, sellerID, productIDs)
	var records map[string]DiscountRecord
	if hit, err := g.Cache.GetJSON(ctx, key, &records); err == nil && hit {
		return records, nil
	}
	if g.Breaker != nil && !g.Breaker.Allow(ctx) {
		return nil, fmt.Errorf("discounts %s/%s: %w", companyID, sellerID, ErrUnavailable)
	}
	records, err := g.Source.ProductDiscounts(ctx, companyID, sellerID, productIDs)
	if g.Breaker != nil {
		g.Breaker.Report(ctx, err == nil)
	}
	if err != nil {
		return nil, err
	}
	_ = g.Cache.SetJSON(ctx, key, records)
	return records, nil
}

// GuardedTax wraps a TaxMetadata source with a JSON cache and an optional
// circuit breaker.
type GuardedTax struct {
	Source  TaxMetadata
	Cache   *Cache
	Breaker *resilience.Breaker
}

// HSNDetails returns cached tax metadata when present, otherwise consults
// the source through the breaker and populates the cache.
func (g GuardedTax) HSNDetails(ctx context.Context, productIDs []string) (map[string]HSNDetails, error) {
	key := KeyTax(productIDs)
	var details map[string]HSNDetails
	if hit, err := g.Cache.GetJSON(ctx, key, &details); err == nil && hit {
		return details, nil
	}
	if g.Breaker != nil && !g.Breaker.Allow(ctx) {
		return nil, fmt.Errorf("tax metadata: %w", ErrUnavailable)
	}
	details, err := g.Source.HSNDetails(ctx, productIDs)
	if g.Breaker != nil {
		g.Breaker.Report(ctx, err == nil)
	}
	if err != nil {
		return nil, err
	}
	_ = g.Cache.SetJSON(ctx, key, details)
	return details, nil
}
