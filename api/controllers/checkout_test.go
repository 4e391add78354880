package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/creatorhub-backend/api/middleware"
	checkoutsvc "github.com/angelmondragon/creatorhub-backend/internal/checkout"
	"github.com/angelmondragon/creatorhub-backend/internal/checkout/helpers"
	"github.com/angelmondragon/creatorhub-backend/pkg/db/models"
	"github.com/angelmondragon/creatorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
)

type stubCheckoutService struct {
	result   *checkoutsvc.CheckoutResult
	err      error
	captured *checkoutsvc.CheckoutRequest
	userID   uuid.UUID
}

func (s *stubCheckoutService) CreateOrders(ctx context.Context, userID uuid.UUID, req checkoutsvc.CheckoutRequest) (*checkoutsvc.CheckoutResult, error) {
	s.userID = userID
	s.captured = &req
	return s.result, s.err
}

type stubCheckoutRepo struct {
	group *models.CheckoutGroup
	err   error
}

func (s stubCheckoutRepo) WithTx(tx *gorm.DB) checkoutsvc.Repository { return s }

func (s stubCheckoutRepo) FindByCheckoutGroupID(ctx context.Context, userID, groupID uuid.UUID) (*models.CheckoutGroup, error) {
	return s.group, s.err
}

const validCheckoutBody = `{
	"lines": [
		{"product_id": "%s", "quantity": 2, "unit_price": "50.00"},
		{"product_id": "%s", "variant_id": "%s", "quantity": 1, "unit_price": 50}
	],
	"shipping_total": "15.00",
	"tax_total": "10.00",
	"discount_total": "0",
	"coupon_code": "  SPRING  ",
	"shipping_address": {"line1": "1 Main St", "city": "Pune", "postal_code": "411001", "country": "IN"},
	"payment_method": "cod"
}`

func checkoutBody(productA, productB, variantB uuid.UUID) string {
	body := strings.Replace(validCheckoutBody, "%s", productA.String(), 1)
	body = strings.Replace(body, "%s", productB.String(), 1)
	return strings.Replace(body, "%s", variantB.String(), 1)
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCheckoutSuccess(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	productA, productB, variantB := uuid.New(), uuid.New(), uuid.New()
	result := &checkoutsvc.CheckoutResult{
		CheckoutGroupID: uuid.New(),
		Orders: []checkoutsvc.OrderSummary{
			{OrderID: uuid.New(), CreatorID: uuid.New(), Total: decimal.RequireFromString("116.67")},
			{OrderID: uuid.New(), CreatorID: uuid.New(), Total: decimal.RequireFromString("58.33")},
		},
	}
	svc := &stubCheckoutService{result: result}

	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(productA, productB, variantB), userID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data checkoutResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CheckoutGroupID != result.CheckoutGroupID {
		t.Fatalf("unexpected checkout group id: %s", envelope.Data.CheckoutGroupID)
	}
	if len(envelope.Data.Orders) != 2 || !envelope.Data.Orders[0].Total.Equal(decimal.RequireFromString("116.67")) {
		t.Fatalf("unexpected orders %+v", envelope.Data.Orders)
	}

	if svc.userID != userID {
		t.Fatalf("expected user %s got %s", userID, svc.userID)
	}
	req := svc.captured
	if req == nil || len(req.Lines) != 2 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Lines[1].VariantID == nil || *req.Lines[1].VariantID != variantB {
		t.Fatalf("variant id not mapped")
	}
	if !req.Lines[1].UnitPrice.Equal(decimal.NewFromInt(50)) || !req.ShippingTotal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("amounts not decoded")
	}
	if req.CouponCode == nil || *req.CouponCode != "SPRING" {
		t.Fatalf("expected trimmed coupon, got %v", req.CouponCode)
	}
	if req.PaymentMethod != enums.PaymentMethodCOD || req.ShippingAddress.City != "Pune" {
		t.Fatalf("unexpected payment/address %+v", req)
	}
}

func TestCheckoutRequiresUser(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	Checkout(&stubCheckoutService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCheckoutValidationError(t *testing.T) {
	t.Parallel()
	svc := &stubCheckoutService{}
	cases := map[string]string{
		"empty body":     `{}`,
		"bad product id": `{"lines":[{"product_id":"nope","quantity":1,"unit_price":"1"}],"payment_method":"cod"}`,
		"unknown field":  `{"lines":[],"cart_id":"x"}`,
	}
	for name, body := range cases {
		resp := httptest.NewRecorder()
		Checkout(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", body, uuid.New()))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", name, resp.Code)
		}
	}
	if svc.captured != nil {
		t.Fatalf("service should not be called for malformed requests")
	}
}

func TestCheckoutInsufficientStockExposesShortages(t *testing.T) {
	t.Parallel()
	productID := uuid.New()
	svc := &stubCheckoutService{err: checkoutsvc.NewInsufficientStockError([]helpers.StockShortage{
		{ProductID: productID, Available: 3, Requested: 5},
	})}

	resp := httptest.NewRecorder()
	Checkout(svc, nil).ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/checkout", checkoutBody(productID, uuid.New(), uuid.New()), uuid.New()))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Lines []struct {
					ProductID uuid.UUID `json:"product_id"`
					Available int       `json:"available"`
					Requested int       `json:"requested"`
				} `json:"lines"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code %s", envelope.Error.Code)
	}
	lines := envelope.Error.Details.Lines
	if len(lines) != 1 || lines[0].ProductID != productID || lines[0].Available != 3 || lines[0].Requested != 5 {
		t.Fatalf("unexpected shortage details %+v", lines)
	}
}

func TestCheckoutGroupReturnsOrders(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	group := &models.CheckoutGroup{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now(),
		Orders: []models.Order{{
			ID:            uuid.New(),
			CreatorID:     uuid.New(),
			Status:        enums.OrderStatusPending,
			PaymentStatus: enums.PaymentStatusPending,
			PaymentMethod: enums.PaymentMethodCOD,
			TotalAmount:   decimal.RequireFromString("58.33"),
			Items: []models.OrderItem{{
				ID:        uuid.New(),
				ProductID: uuid.New(),
				Quantity:  2,
				Price:     decimal.RequireFromString("12.50"),
			}},
		}},
	}

	rc := chi.NewRouteContext()
	rc.URLParams.Add("checkoutGroupId", group.ID.String())
	req := authedRequest(http.MethodGet, "/api/v1/checkout/"+group.ID.String(), "", userID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	CheckoutGroup(stubCheckoutRepo{group: group}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data checkoutGroupResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Orders) != 1 || len(envelope.Data.Orders[0].Items) != 1 {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
	if !envelope.Data.Orders[0].Items[0].LineTotal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected line total %s", envelope.Data.Orders[0].Items[0].LineTotal)
	}
}

func TestCheckoutGroupNotFound(t *testing.T) {
	t.Parallel()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("checkoutGroupId", uuid.NewString())
	req := authedRequest(http.MethodGet, "/api/v1/checkout/x", "", uuid.New())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	resp := httptest.NewRecorder()
	CheckoutGroup(stubCheckoutRepo{err: pkgerrors.New(pkgerrors.CodeNotFound, "checkout group not found")}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
