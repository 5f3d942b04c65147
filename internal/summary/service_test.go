package summary

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/pricing"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/refdata"
	"github.com/growmax/nextjs-ecommerce-sub003/internal/spr"
)

type stubDiscounts struct {
	records map[string]refdata.DiscountRecord
	err     error
	calls   int
}

func (s *stubDiscounts) ProductDiscounts(_ context.Context, _, _ string, _ []string) (map[string]refdata.DiscountRecord, error) {
	s.calls++
	return s.records, s.err
}

type stubTax struct {
	details map[string]refdata.HSNDetails
	err     error
}

func (s *stubTax) HSNDetails(_ context.Context, _ []string) (map[string]refdata.HSNDetails, error) {
	return s.details, s.err
}

type stubPrefs struct {
	prefs refdata.Preferences
	err   error
}

func (s *stubPrefs) Preferences(_ context.Context, _ string) (refdata.Preferences, error) {
	return s.prefs, s.err
}

type stubCurrency struct {
	factor float64
	err    error
}

func (s *stubCurrency) Factor(_ context.Context, _ string) (float64, error) {
	return s.factor, s.err
}

func gstBreakup(rate float64) pricing.TaxBreakup {
	return pricing.TaxBreakup{
		TotalTax: rate,
		Components: []pricing.TaxComponent{
			{Name: "CGST", Percentage: rate / 2},
			{Name: "SGST", Percentage: rate / 2},
		},
	}
}

func newTestService() *Service {
	return &Service{
		Discounts: &stubDiscounts{records: map[string]refdata.DiscountRecord{
			"prod-1": {ProductVariantID: "prod-1", AppliedDiscount: 10},
		}},
		Tax: &stubTax{details: map[string]refdata.HSNDetails{
			"prod-1": {IntraTax: gstBreakup(18), InterTax: gstBreakup(18)},
		}},
		Prefs:    &stubPrefs{prefs: refdata.Preferences{PFPercentage: 2, SPREnabled: true}},
		Settings: pricing.Settings{Precision: 2},
	}
}

func baseRequest() QuoteRequest {
	return QuoteRequest{
		CompanyID:      "company-1",
		SellerID:       "seller-1",
		BillingState:   "Karnataka",
		WarehouseState: "Karnataka",
		Items: []QuoteItem{
			{ProductID: "prod-1", AskedQuantity: 10, UnitListPrice: 100, Discount: 5},
		},
	}
}

func TestQuoteAppliesPricelistDiscount(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	out, err := svc.Quote(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Len(t, out.Products, 1)

	// The 10% pricelist discount beats the manual 5%.
	line := out.Products[0]
	require.InDelta(t, 10, line.Discount, 1e-9)
	require.InDelta(t, 90, line.UnitPrice, 1e-9)
	require.InDelta(t, 900, line.TotalPrice, 1e-9)
	require.False(t, out.IsInter)
	require.False(t, out.Degraded)
	require.NotEmpty(t, out.RunID)
}

func TestQuoteManualDiscountWinsWhenLarger(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	req := baseRequest()
	req.Items[0].Discount = 25

	out, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 25, out.Products[0].Discount, 1e-9)
}

func TestQuoteInterStateSelection(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	req := baseRequest()
	req.WarehouseState = "Maharashtra"

	out, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.IsInter)
}

func TestQuotePFDefaultsFromPreferences(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	out, err := svc.Quote(context.Background(), baseRequest())
	require.NoError(t, err)

	// 2% of the 900 line total.
	require.InDelta(t, 18, out.Products[0].PFRate, 1e-9)
}

func TestQuoteExplicitPFOverridesPreferences(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	req := baseRequest()
	pf := 5.0
	req.Items[0].PFItemValue = &pf

	out, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 45, out.Products[0].PFRate, 1e-9)
}

func TestQuoteInsuranceFromPreferences(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Prefs = &stubPrefs{prefs: refdata.Preferences{
		PFPercentage:        2,
		InsuranceEnabled:    true,
		InsurancePercentage: 1,
	}}

	out, err := svc.Quote(context.Background(), baseRequest())
	require.NoError(t, err)

	// 1% of the raw subtotal (10 x 100) folded into the totals.
	require.InDelta(t, 10, out.Details.InsuranceCharges, 1e-9)
}

func TestQuoteCurrencyConversion(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Currency = &stubCurrency{factor: 2}
	req := baseRequest()
	req.CurrencyCode = "USD"

	out, err := svc.Quote(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 2, out.Factor, 1e-9)
	require.InDelta(t, 180, out.Products[0].UnitPrice, 1e-9)
	require.InDelta(t, 1800, out.Products[0].TotalPrice, 1e-9)
}

func TestQuoteNotReadyWithoutCollaborators(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Tax = nil
	_, err := svc.Quote(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrNotReady)
}

func TestQuoteNotReadyWithBlankIdentity(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	req := baseRequest()
	req.CompanyID = "  "
	_, err := svc.Quote(context.Background(), req)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestQuotePropagatesSourceFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Discounts = &stubDiscounts{err: refdata.ErrUnavailable}
	_, err := svc.Quote(context.Background(), baseRequest())
	require.ErrorIs(t, err, refdata.ErrUnavailable)
}

func TestSolveDiscountTransition(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	d := 20.0
	out, err := svc.Solve(context.Background(), SolveRequest{
		CompanyID:  "company-1",
		TotalValue: 1000,
		Lines: []spr.Line{
			{ProductID: "prod-1", Quantity: 10, UnitPrice: 100, LineTotal: 1000},
		},
		DiscountInput: &d,
	})
	require.NoError(t, err)
	require.InDelta(t, 800, out.Details.TargetPrice, 1e-9)
	require.True(t, out.Details.SPR)
	require.InDelta(t, 100, out.Lines[0].Contribution, 1e-9)
}

func TestSolveDisabledByPreferences(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Prefs = &stubPrefs{prefs: refdata.Preferences{SPREnabled: false}}
	d := 20.0
	out, err := svc.Solve(context.Background(), SolveRequest{
		CompanyID:     "company-1",
		TotalValue:    1000,
		Lines:         []spr.Line{{ProductID: "prod-1", Quantity: 1, UnitPrice: 1000, LineTotal: 1000}},
		DiscountInput: &d,
	})
	require.NoError(t, err)
	require.True(t, out.Details.IsRequested)
	require.False(t, out.Details.SPR)
}

func TestSolveRequiresExactlyOneInput(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	_, err := svc.Solve(context.Background(), SolveRequest{
		CompanyID:  "company-1",
		TotalValue: 1000,
		Lines:      []spr.Line{{ProductID: "prod-1", LineTotal: 1000}},
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSolveTotalChangeHoldsDiscount(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	nt := 900.0
	out, err := svc.Solve(context.Background(), SolveRequest{
		CompanyID:     "company-1",
		TotalValue:    1000,
		Lines:         []spr.Line{{ProductID: "prod-1", Quantity: 9, UnitPrice: 100, LineTotal: 900}},
		NewTotalValue: &nt,
		HeldDiscount:  20,
	})
	require.NoError(t, err)
	require.InDelta(t, 20, out.Details.RequestedDiscount, 1e-9)
	require.InDelta(t, 720, out.Details.TargetPrice, 1e-9)
}

func TestInterState(t *testing.T) {
	t.Parallel()

	require.False(t, interState("Karnataka", "karnataka "))
	require.True(t, interState("Karnataka", "Kerala"))
}

var errBoom = errors.New("boom")

func TestQuoteWrapsPrefsFailure(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Prefs = &stubPrefs{err: errBoom}
	_, err := svc.Quote(context.Background(), baseRequest())
	require.ErrorIs(t, err, errBoom)
}
