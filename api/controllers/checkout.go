package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/creatorhub-backend/api/middleware"
	"github.com/angelmondragon/creatorhub-backend/api/responses"
	"github.com/angelmondragon/creatorhub-backend/api/validators"
	checkoutsvc "github.com/angelmondragon/creatorhub-backend/internal/checkout"
	"github.com/angelmondragon/creatorhub-backend/pkg/db/models"
	"github.com/angelmondragon/creatorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
	"github.com/angelmondragon/creatorhub-backend/pkg/logger"
	"github.com/angelmondragon/creatorhub-backend/pkg/types"
)

const maxCouponLen = 64

// Checkout splits the submitted cart into one order per creator.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrders(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newCheckoutResponse(result))
	}
}

// CheckoutGroup returns a previously created checkout group with its orders.
func CheckoutGroup(repo checkoutsvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout repository unavailable"))
			return
		}

		userID, err := userIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		groupID, err := validators.ParseUUIDParam(r, "checkoutGroupId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := repo.FindByCheckoutGroupID(r.Context(), userID, groupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCheckoutGroupResponse(group))
	}
}

func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

type checkoutRequest struct {
	Lines           []checkoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	ShippingTotal   decimal.Decimal       `json:"shipping_total"`
	TaxTotal        decimal.Decimal       `json:"tax_total"`
	DiscountTotal   decimal.Decimal       `json:"discount_total"`
	CouponCode      *string               `json:"coupon_code,omitempty"`
	ShippingAddress types.Address         `json:"shipping_address"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
}

type checkoutLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	VariantID *string         `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (p checkoutRequest) toInput() (checkoutsvc.CheckoutRequest, error) {
	lines := make([]checkoutsvc.CartLine, 0, len(p.Lines))
	for _, line := range p.Lines {
		productID, err := validators.ParseUUID("product_id", line.ProductID)
		if err != nil {
			return checkoutsvc.CheckoutRequest{}, err
		}
		cartLine := checkoutsvc.CartLine{
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		if line.VariantID != nil {
			variantID, err := validators.ParseUUID("variant_id", *line.VariantID)
			if err != nil {
				return checkoutsvc.CheckoutRequest{}, err
			}
			cartLine.VariantID = &variantID
		}
		lines = append(lines, cartLine)
	}

	var coupon *string
	if p.CouponCode != nil {
		code := validators.SanitizeString(*p.CouponCode, maxCouponLen)
		coupon = &code
	}

	return checkoutsvc.CheckoutRequest{
		Lines:           lines,
		ShippingTotal:   p.ShippingTotal,
		TaxTotal:        p.TaxTotal,
		DiscountTotal:   p.DiscountTotal,
		CouponCode:      coupon,
		ShippingAddress: p.ShippingAddress,
		PaymentMethod:   enums.PaymentMethod(p.PaymentMethod),
	}, nil
}

type checkoutResponse struct {
	CheckoutGroupID uuid.UUID               `json:"checkout_group_id"`
	Orders          []checkoutOrderResponse `json:"orders"`
}

type checkoutOrderResponse struct {
	OrderID   uuid.UUID       `json:"order_id"`
	CreatorID uuid.UUID       `json:"creator_id"`
	Total     decimal.Decimal `json:"total"`
}

func newCheckoutResponse(result *checkoutsvc.CheckoutResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{Orders: []checkoutOrderResponse{}}
	}
	orders := make([]checkoutOrderResponse, 0, len(result.Orders))
	for _, order := range result.Orders {
		orders = append(orders, checkoutOrderResponse{
			OrderID:   order.OrderID,
			CreatorID: order.CreatorID,
			Total:     order.Total,
		})
	}
	return checkoutResponse{CheckoutGroupID: result.CheckoutGroupID, Orders: orders}
}

type checkoutGroupResponse struct {
	CheckoutGroupID uuid.UUID       `json:"checkout_group_id"`
	CouponCode      *string         `json:"coupon_code,omitempty"`
	Orders          []orderResponse `json:"orders"`
	CreatedAt       string          `json:"created_at"`
}

type orderResponse struct {
	OrderID         uuid.UUID       `json:"order_id"`
	CreatorID       uuid.UUID       `json:"creator_id"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   string          `json:"payment_method"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Shipping        decimal.Decimal `json:"shipping"`
	Tax             decimal.Decimal `json:"tax"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponCode      *string         `json:"coupon_code,omitempty"`
	ShippingAddress types.Address   `json:"shipping_address"`
	Items           []itemResponse  `json:"items"`
}

type itemResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID uuid.UUID       `json:"product_id"`
	VariantID *uuid.UUID      `json:"variant_id,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func newCheckoutGroupResponse(group *models.CheckoutGroup) checkoutGroupResponse {
	orders := make([]orderResponse, 0, len(group.Orders))
	for _, order := range group.Orders {
		items := make([]itemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, itemResponse{
				ItemID:    item.ID,
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
				UnitPrice: item.Price,
				LineTotal: item.LineTotal(),
			})
		}
		orders = append(orders, orderResponse{
			OrderID:         order.ID,
			CreatorID:       order.CreatorID,
			Status:          string(order.Status),
			PaymentStatus:   string(order.PaymentStatus),
			PaymentMethod:   string(order.PaymentMethod),
			Subtotal:        order.Subtotal,
			Shipping:        order.Shipping,
			Tax:             order.Tax,
			Discount:        order.Discount,
			Total:           order.TotalAmount,
			CouponCode:      order.CouponCode,
			ShippingAddress: order.ShippingAddress,
			Items:           items,
		})
	}
	return checkoutGroupResponse{
		CheckoutGroupID: group.ID,
		CouponCode:      group.CouponCode,
		Orders:          orders,
		CreatedAt:       group.CreatedAt.UTC().Format(time.RFC3339),
	}
}
