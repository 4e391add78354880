package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/creatorhub-backend/pkg/db/models"
)

// ErrStockChanged is returned when a conditional decrement matched no row:
// the counter dropped below the requested quantity after it was read.
var ErrStockChanged = errors.New("stock changed before decrement")

// ProductStock is the ownership and stock view of a product used at checkout.
type ProductStock struct {
	ProductID uuid.UUID
	CreatorID uuid.UUID
	Stock     int
	Price     decimal.Decimal
	IsActive  bool
}

// VariantStock is the stock view of a variant. Ownership comes from ProductID.
type VariantStock struct {
	VariantID uuid.UUID
	ProductID uuid.UUID
	Stock     int
}

// Repository reads and decrements catalog stock counters.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetProductOwnerAndStock(ctx context.Context, productID uuid.UUID) (*ProductStock, error)
	GetVariantOwnerAndStock(ctx context.Context, variantID uuid.UUID) (*VariantStock, error)
	DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error
	DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// GetProductOwnerAndStock loads the product row with a FOR UPDATE lock.
// gorm.ErrRecordNotFound is returned when the product does not exist.
func (r *repository) GetProductOwnerAndStock(ctx context.Context, productID uuid.UUID) (*ProductStock, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "creator_id", "stock", "price", "is_active").
		Where("id = ?", productID).
		Take(&product).Error
	if err != nil {
		return nil, err
	}
	return &ProductStock{
		ProductID: product.ID,
		CreatorID: product.CreatorID,
		Stock:     product.Stock,
		Price:     product.Price,
		IsActive:  product.IsActive,
	}, nil
}

// GetVariantOwnerAndStock loads the variant row with a FOR UPDATE lock.
func (r *repository) GetVariantOwnerAndStock(ctx context.Context, variantID uuid.UUID) (*VariantStock, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "product_id", "stock").
		Where("id = ?", variantID).
		Take(&variant).Error
	if err != nil {
		return nil, err
	}
	return &VariantStock{
		VariantID: variant.ID,
		ProductID: variant.ProductID,
		Stock:     variant.Stock,
	}, nil
}

// DecrementProductStock subtracts qty only while stock >= qty.
func (r *repository) DecrementProductStock(ctx context.Context, productID uuid.UUID, qty int) error {
	return r.decrement(ctx, &models.Product{}, productID, qty)
}

// DecrementVariantStock subtracts qty only while stock >= qty.
func (r *repository) DecrementVariantStock(ctx context.Context, variantID uuid.UUID, qty int) error {
	return r.decrement(ctx, &models.ProductVariant{}, variantID, qty)
}

func (r *repository) decrement(ctx context.Context, model any, id uuid.UUID, qty int) error {
	if qty <= 0 {
		return errors.New("decrement quantity must be positive")
	}
	res := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND stock >= ?", id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockChanged
	}
	return nil
}
