package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimal places kept on every amount.
const MoneyPlaces = 2

// SharedCosts are the cart-level amounts split across creators.
type SharedCosts struct {
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
}

// AllocatedCosts is one creator's share of the shared costs.
type AllocatedCosts struct {
	CreatorID uuid.UUID
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Tax       decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
}

// Allocate splits costs in proportion to each partition's share of the cart
// subtotal, rounding every share half-up to MoneyPlaces. A zero cart subtotal
// assigns zero shared cost to every partition. A partition's discount never
// exceeds its own subtotal plus shipping and tax; the excess from rounding
// moves to the partitions that still have room. The result follows partition order.
func Allocate(partitions []CreatorPartition, costs SharedCosts) []AllocatedCosts {
	cartSubtotal := CartSubtotal(partitions)
	out := make([]AllocatedCosts, 0, len(partitions))
	for _, p := range partitions {
		alloc := AllocatedCosts{
			CreatorID: p.CreatorID,
			Subtotal:  p.Subtotal.Round(MoneyPlaces),
			Shipping:  share(costs.Shipping, p.Subtotal, cartSubtotal),
			Tax:       share(costs.Tax, p.Subtotal, cartSubtotal),
			Discount:  share(costs.Discount, p.Subtotal, cartSubtotal),
		}
		out = append(out, alloc)
	}
	capDiscounts(out)
	for i := range out {
		out[i].Total = out[i].Subtotal.Add(out[i].Shipping).Add(out[i].Tax).Sub(out[i].Discount)
	}
	return out
}

// capDiscounts clamps every discount to its partition's gross amount and
// hands the clamped excess to the next partitions, wrapping once.
func capDiscounts(allocs []AllocatedCosts) {
	excess := decimal.Zero
	for i := range allocs {
		gross := allocs[i].Subtotal.Add(allocs[i].Shipping).Add(allocs[i].Tax)
		if allocs[i].Discount.GreaterThan(gross) {
			excess = excess.Add(allocs[i].Discount.Sub(gross))
			allocs[i].Discount = gross
		}
	}
	for i := range allocs {
		if !excess.IsPositive() {
			return
		}
		gross := allocs[i].Subtotal.Add(allocs[i].Shipping).Add(allocs[i].Tax)
		room := gross.Sub(allocs[i].Discount)
		if !room.IsPositive() {
			continue
		}
		moved := decimal.Min(room, excess)
		allocs[i].Discount = allocs[i].Discount.Add(moved)
		excess = excess.Sub(moved)
	}
}

// ExpectedTotal is the cart-level total the allocated totals must reconcile to.
func ExpectedTotal(partitions []CreatorPartition, costs SharedCosts) decimal.Decimal {
	return CartSubtotal(partitions).Add(costs.Shipping).Add(costs.Tax).Sub(costs.Discount)
}

func share(amount, subtotal, cartSubtotal decimal.Decimal) decimal.Decimal {
	if cartSubtotal.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	// multiply first so exact thirds stay exact until the final rounding
	return amount.Mul(subtotal).Div(cartSubtotal).Round(MoneyPlaces)
}
