package refdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPClient returns an HTTP client configured for upstream reference data calls.
func HTTPClient(timeoutMs int) *http.Client {
	if timeoutMs <= 0 {
		timeoutMs = 5000
	}
	return &http.Client{
		Timeout:   time.Duration(timeoutMs) * time.Millisecond,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// HTTPSource resolves reference data from the upstream commerce API. It
// implements DiscountLookup, CurrencyFactors, TaxMetadata and CompanyPrefs.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	APIKey  string
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	base := strings.TrimRight(s.BaseURL, "/")
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	client := s.Client
	if client == nil {
		client = HTTPClient(0)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ProductDiscounts fetches applicable pricelist discounts for the buyer.
func (s *HTTPSource) ProductDiscounts(ctx context.Context, companyID, sellerID string, productIDs []string) (map[string]DiscountRecord, error) {
	q := url.Values{}
	q.Set("companyId", companyID)
	q.Set("sellerId", sellerID)
	q.Set("productIds", strings.Join(productIDs, ","))
	var payload struct {
		Discounts []DiscountRecord `json:"discounts"`
	}
	if err := s.getJSON(ctx, "/v1/discounts", q, &payload); err != nil {
		return nil, err
	}
	records := make(map[string]DiscountRecord, len(payload.Discounts))
	for _, rec := range payload.Discounts {
		records[rec.ProductVariantID] = rec
	}
	return records, nil
}

// Factor fetches the conversion multiplier for a currency code.
func (s *HTTPSource) Factor(ctx context.Context, currencyCode string) (float64, error) {
	q := url.Values{}
	q.Set("code", currencyCode)
	var payload struct {
		Factor float64 `json:"factor"`
	}
	if err := s.getJSON(ctx, "/v1/currency-factor", q, &payload); err != nil {
		return 0, err
	}
	return payload.Factor, nil
}

// HSNDetails fetches per-product tax breakups for both regimes.
func (s *HTTPSource) HSNDetails(ctx context.Context, productIDs []string) (map[string]HSNDetails, error) {
	q := url.Values{}
	q.Set("productIds", strings.Join(productIDs, ","))
	var payload struct {
		Products map[string]HSNDetails `json:"products"`
	}
	if err := s.getJSON(ctx, "/v1/hsn-details", q, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Preferences fetches company-level calculation defaults.
func (s *HTTPSource) Preferences(ctx context.Context, companyID string) (Preferences, error) {
	q := url.Values{}
	q.Set("companyId", companyID)
	var payload struct {
		Preferences Preferences `json:"preferences"`
	}
	if err := s.getJSON(ctx, "/v1/company-preferences", q, &payload); err != nil {
		return Preferences{}, err
	}
	return payload.Preferences, nil
}
