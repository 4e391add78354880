package checkout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/creatorhub-backend/internal/catalog"
	"github.com/angelmondragon/creatorhub-backend/internal/checkout/helpers"
)

// stockResolver reads each product and variant once per checkout. Reads go
// through the transaction-bound catalog so the rows stay locked until commit.
type stockResolver struct {
	ctx      context.Context
	catalog  catalog.Repository
	products map[uuid.UUID]*catalog.ProductStock
	variants map[uuid.UUID]*catalog.VariantStock
}

func newStockResolver(ctx context.Context, repo catalog.Repository) *stockResolver {
	return &stockResolver{
		ctx:      ctx,
		catalog:  repo,
		products: map[uuid.UUID]*catalog.ProductStock{},
		variants: map[uuid.UUID]*catalog.VariantStock{},
	}
}

// owner resolves the creator of a line. Variant lines resolve through their product.
func (r *stockResolver) owner(line helpers.Line) (uuid.UUID, error) {
	product, err := r.product(line.ProductID)
	if err != nil {
		return uuid.Nil, err
	}
	if line.VariantID != nil {
		if _, err := r.variant(line.ProductID, *line.VariantID); err != nil {
			return uuid.Nil, err
		}
	}
	return product.CreatorID, nil
}

func (r *stockResolver) product(id uuid.UUID) (*catalog.ProductStock, error) {
	if product, ok := r.products[id]; ok {
		return product, nil
	}
	product, err := r.catalog.GetProductOwnerAndStock(r.ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewProductNotFoundError(id)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, NewProductNotFoundError(id)
	}
	r.products[id] = product
	return product, nil
}

func (r *stockResolver) variant(productID, variantID uuid.UUID) (*catalog.VariantStock, error) {
	if variant, ok := r.variants[variantID]; ok {
		if variant.ProductID != productID {
			return nil, NewVariantNotFoundError(productID, variantID)
		}
		return variant, nil
	}
	variant, err := r.catalog.GetVariantOwnerAndStock(r.ctx, variantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewVariantNotFoundError(productID, variantID)
		}
		return nil, err
	}
	r.variants[variantID] = variant
	if variant.ProductID != productID {
		return nil, NewVariantNotFoundError(productID, variantID)
	}
	return variant, nil
}

// available returns the stock of every counter read so far.
func (r *stockResolver) available() map[helpers.StockKey]int {
	out := make(map[helpers.StockKey]int, len(r.products)+len(r.variants))
	for id, product := range r.products {
		out[helpers.StockKey{ProductID: id}] = product.Stock
	}
	for id, variant := range r.variants {
		out[helpers.StockKey{ProductID: variant.ProductID, VariantID: id}] = variant.Stock
	}
	return out
}
