package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/creatorhub-backend/pkg/enums"
)

// OrderCreatedEvent signals a checkout split into one order per creator.
type OrderCreatedEvent struct {
	CheckoutGroupID uuid.UUID           `json:"checkout_group_id"`
	UserID          uuid.UUID           `json:"user_id"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	Orders          []OrderCreatedLine  `json:"orders"`
}

// OrderCreatedLine summarises one creator order inside OrderCreatedEvent.
type OrderCreatedLine struct {
	OrderID   uuid.UUID       `json:"order_id"`
	CreatorID uuid.UUID       `json:"creator_id"`
	Total     decimal.Decimal `json:"total"`
}

// OrderIDs lists the order ids in checkout order.
func (e OrderCreatedEvent) OrderIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Orders))
	for _, line := range e.Orders {
		ids = append(ids, line.OrderID)
	}
	return ids
}
