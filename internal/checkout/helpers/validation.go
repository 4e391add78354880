package helpers

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
)

// FieldError names one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MaxLineQuantity bounds a single line's quantity so summed demand stays
// well inside the integer stock columns.
const MaxLineQuantity = 1_000_000

// ValidateLines checks the cart lines before any storage access.
func ValidateLines(lines []Line, maxLines int) []FieldError {
	if len(lines) == 0 {
		return []FieldError{{Field: "lines", Message: "at least one line is required"}}
	}
	var errs []FieldError
	if maxLines > 0 && len(lines) > maxLines {
		errs = append(errs, FieldError{Field: "lines", Message: fmt.Sprintf("at most %d lines allowed", maxLines)})
	}
	for i, line := range lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if line.ProductID == uuid.Nil {
			errs = append(errs, FieldError{Field: prefix + ".product_id", Message: "is required"})
		}
		if line.VariantID != nil && *line.VariantID == uuid.Nil {
			errs = append(errs, FieldError{Field: prefix + ".variant_id", Message: "must be a valid id"})
		}
		switch {
		case line.Quantity <= 0:
			errs = append(errs, FieldError{Field: prefix + ".quantity", Message: "must be greater than 0"})
		case line.Quantity > MaxLineQuantity:
			errs = append(errs, FieldError{Field: prefix + ".quantity", Message: fmt.Sprintf("must be at most %d", MaxLineQuantity)})
		}
		errs = appendAmountErrors(errs, prefix+".unit_price", line.UnitPrice)
	}
	return errs
}

// ValidateSharedCosts checks the cart-level amounts. The discount may not
// exceed the cart subtotal plus shipping and tax.
func ValidateSharedCosts(costs SharedCosts, cartSubtotal decimal.Decimal) []FieldError {
	var errs []FieldError
	errs = appendAmountErrors(errs, "shipping_total", costs.Shipping)
	errs = appendAmountErrors(errs, "tax_total", costs.Tax)
	errs = appendAmountErrors(errs, "discount_total", costs.Discount)
	if len(errs) == 0 && costs.Discount.GreaterThan(cartSubtotal.Add(costs.Shipping).Add(costs.Tax)) {
		errs = append(errs, FieldError{Field: "discount_total", Message: "exceeds the cart total"})
	}
	return errs
}

// LinesSubtotal sums the line subtotals.
func LinesSubtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ValidationError wraps field errors into a VALIDATION_ERROR, or returns nil.
func ValidationError(errs []FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid checkout request").WithDetails(errs)
}

func appendAmountErrors(errs []FieldError, field string, amount decimal.Decimal) []FieldError {
	if amount.IsNegative() {
		return append(errs, FieldError{Field: field, Message: "must be greater than or equal to 0"})
	}
	if !amount.Equal(amount.Round(MoneyPlaces)) {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("must have at most %d decimal places", MoneyPlaces)})
	}
	return errs
}
