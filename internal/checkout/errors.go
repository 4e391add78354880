package checkout

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/creatorhub-backend/internal/checkout/helpers"
	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
)

// NewProductNotFoundError reports a cart line whose product does not exist or is inactive.
func NewProductNotFoundError(productID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID)).
		WithDetails(map[string]any{"product_id": productID})
}

// NewVariantNotFoundError reports a variant line that cannot be resolved.
func NewVariantNotFoundError(productID, variantID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variant %s not found", variantID)).
		WithDetails(map[string]any{"product_id": productID, "variant_id": variantID})
}

// NewInsufficientStockError lists every stock counter that cannot cover its demand.
func NewInsufficientStockError(shortages []helpers.StockShortage) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"lines": shortages})
}

// NewStockConflictError marks a checkout that lost a race on stock; callers may retry.
func NewStockConflictError(cause error) error {
	return pkgerrors.Wrap(pkgerrors.CodeStockConflict, cause, "stock changed during checkout, retry")
}

// NewPersistenceError wraps a storage failure that is not safe to retry blindly.
func NewPersistenceError(cause error, op string) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, cause, op)
}

// IsStockConflict reports whether err is a retryable stock conflict.
func IsStockConflict(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeStockConflict)
}

// IsInsufficientStock reports whether err carries stock shortages.
func IsInsufficientStock(err error) bool {
	return pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock)
}

// Shortages extracts the offending lines from an insufficient stock error.
func Shortages(err error) []helpers.StockShortage {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		return nil
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		return nil
	}
	shortages, _ := details["lines"].([]helpers.StockShortage)
	return shortages
}
