package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/creatorhub-backend/internal/orders"
	"github.com/angelmondragon/creatorhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
)

// Repository exposes read queries for completed checkouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCheckoutGroupID(ctx context.Context, userID, checkoutGroupID uuid.UUID) (*models.CheckoutGroup, error)
}

type repository struct {
	orders orders.Repository
}

// NewRepository builds a checkout repository backed by the orders repo.
func NewRepository(ordersRepo orders.Repository) Repository {
	if ordersRepo == nil {
		return nil
	}
	return &repository{orders: ordersRepo}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{orders: r.orders.WithTx(tx)}
}

// FindByCheckoutGroupID loads a checkout group with its orders and items.
// Groups owned by another user are reported as not found.
func (r *repository) FindByCheckoutGroupID(ctx context.Context, userID, checkoutGroupID uuid.UUID) (*models.CheckoutGroup, error) {
	if checkoutGroupID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout group id required")
	}
	group, err := r.orders.FindCheckoutGroupByID(ctx, checkoutGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load checkout group")
	}
	if group.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout group not found")
	}
	return group, nil
}
