package models

// All lists the models owned by this service, parents before children.
func All() []any {
	return []any{
		&Product{},
		&ProductVariant{},
		&CheckoutGroup{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
	}
}
