package summary

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/growmax/nextjs-ecommerce-sub003/internal/refdata"
)

func newTestHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validate: validator.New()}
}

func TestCalculateHandlerSuccess(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newTestService())
	body := `{
		"companyId": "company-1",
		"sellerId": "seller-1",
		"billingState": "Karnataka",
		"warehouseState": "Karnataka",
		"items": [{"productId": "prod-1", "askedQuantity": 10, "unitListPrice": 100, "discount": 5}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data QuoteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Products, 1)
	require.InDelta(t, 900, envelope.Data.Products[0].TotalPrice, 1e-9)
}

func TestCalculateHandlerRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newTestService())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/calculate", strings.NewReader("{"))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCalculateHandlerValidationFailure(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newTestService())
	body := `{"companyId": "company-1", "sellerId": "seller-1", "billingState": "KA", "warehouseState": "KA", "items": []}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "VALIDATION_FAILED")
}

func TestCalculateHandlerUpstreamUnavailable(t *testing.T) {
	t.Parallel()

	svc := newTestService()
	svc.Discounts = &stubDiscounts{err: refdata.ErrUnavailable}
	h := newTestHandler(svc)
	body := `{
		"companyId": "company-1",
		"sellerId": "seller-1",
		"billingState": "Karnataka",
		"warehouseState": "Karnataka",
		"items": [{"productId": "prod-1", "askedQuantity": 1, "unitListPrice": 100}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/calculate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)

	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Contains(t, rr.Body.String(), "UPSTREAM_UNAVAILABLE")
}

func TestSolveHandlerSuccess(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newTestService())
	body := `{
		"companyId": "company-1",
		"totalValue": 1000,
		"lines": [{"productId": "prod-1", "askedQuantity": 10, "unitPrice": 100, "totalPrice": 1000}],
		"discountInput": 20
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/spr", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Solve(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope struct {
		Data SolveResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.InDelta(t, 800, envelope.Data.Details.TargetPrice, 1e-9)
}

func TestSolveHandlerMissingInput(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newTestService())
	body := `{
		"companyId": "company-1",
		"totalValue": 1000,
		"lines": [{"productId": "prod-1", "totalPrice": 1000}]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/spr", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Solve(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "BAD_REQUEST")
}

func TestHandlerWithoutService(t *testing.T) {
	t.Parallel()

	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/calculate", strings.NewReader("{}"))
	rr := httptest.NewRecorder()
	h.Calculate(rr, req)

	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
