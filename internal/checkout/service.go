package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/creatorhub-backend/internal/catalog"
	"github.com/angelmondragon/creatorhub-backend/internal/checkout/helpers"
	"github.com/angelmondragon/creatorhub-backend/internal/orders"
	"github.com/angelmondragon/creatorhub-backend/pkg/db"
	"github.com/angelmondragon/creatorhub-backend/pkg/db/models"
	"github.com/angelmondragon/creatorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/creatorhub-backend/pkg/errors"
	"github.com/angelmondragon/creatorhub-backend/pkg/logger"
	"github.com/angelmondragon/creatorhub-backend/pkg/metrics"
	"github.com/angelmondragon/creatorhub-backend/pkg/outbox"
	"github.com/angelmondragon/creatorhub-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/creatorhub-backend/pkg/types"
)

type txRunner interface {
	WithTxOptions(ctx context.Context, opts db.TxOptions, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service splits a multi-creator cart into one order per creator.
type Service interface {
	CreateOrders(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error)
}

// CartLine is one line of the submitted cart.
type CartLine struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// CheckoutRequest is the cart plus the cart-level amounts to split.
type CheckoutRequest struct {
	Lines           []CartLine
	ShippingTotal   decimal.Decimal
	TaxTotal        decimal.Decimal
	DiscountTotal   decimal.Decimal
	CouponCode      *string
	ShippingAddress types.Address
	PaymentMethod   enums.PaymentMethod
}

// OrderSummary identifies one created order.
type OrderSummary struct {
	OrderID   uuid.UUID
	CreatorID uuid.UUID
	Total     decimal.Decimal
}

// CheckoutResult lists the created orders in partition order.
type CheckoutResult struct {
	CheckoutGroupID uuid.UUID
	Orders          []OrderSummary
}

// Options tunes the checkout service.
type Options struct {
	MaxLines       int
	SerializableTx bool
	Logger         *logger.Logger
	Metrics        *metrics.CheckoutMetrics
}

type service struct {
	tx         txRunner
	catalog    catalog.Repository
	ordersRepo orders.Repository
	outbox     outboxPublisher
	opts       Options
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	catalogRepo catalog.Repository,
	ordersRepo orders.Repository,
	publisher outboxPublisher,
	opts Options,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:         tx,
		catalog:    catalogRepo,
		ordersRepo: ordersRepo,
		outbox:     publisher,
		opts:       opts,
	}, nil
}

func (s *service) CreateOrders(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	start := time.Now()
	result, err := s.createOrders(ctx, userID, req)

	created := 0
	if result != nil {
		created = len(result.Orders)
	}
	s.opts.Metrics.Observe(outcomeFor(err), time.Since(start), created)

	if logg := s.opts.Logger; logg != nil {
		logCtx := logg.WithUserID(ctx, userID.String())
		if err != nil {
			fields := map[string]any{"error_code": pkgerrors.As(err).Code(), "line_count": len(req.Lines)}
			logg.Warn(logg.WithFields(logCtx, fields), "checkout.rejected")
		} else {
			logCtx = logg.WithCheckoutGroupID(logCtx, result.CheckoutGroupID.String())
			logg.Info(logg.WithField(logCtx, "order_count", created), "checkout.completed")
		}
	}
	return result, err
}

func (s *service) createOrders(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
	}
	lines := toLines(req.Lines)
	costs := helpers.SharedCosts{
		Shipping: req.ShippingTotal,
		Tax:      req.TaxTotal,
		Discount: req.DiscountTotal,
	}
	if err := s.validate(lines, costs, req); err != nil {
		return nil, err
	}
	coupon := normalizeCoupon(req.CouponCode)

	var result *CheckoutResult
	err := s.tx.WithTxOptions(ctx, db.TxOptions{Serializable: s.opts.SerializableTx}, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		stock := newStockResolver(ctx, catalogRepo)
		partitions, err := helpers.PartitionByCreator(lines, stock.owner)
		if err != nil {
			return err
		}
		allocations := helpers.Allocate(partitions, costs)

		if shortages := helpers.FindShortages(helpers.SumDemand(partitions), stock.available()); len(shortages) > 0 {
			return NewInsufficientStockError(shortages)
		}

		group, err := ordersRepo.CreateCheckoutGroup(ctx, &models.CheckoutGroup{
			UserID:     userID,
			CouponCode: coupon,
		})
		if err != nil {
			return err
		}

		result = &CheckoutResult{
			CheckoutGroupID: group.ID,
			Orders:          make([]OrderSummary, 0, len(partitions)),
		}
		for i, partition := range partitions {
			order, err := s.materialize(ctx, ordersRepo, catalogRepo, group.ID, userID, partition, allocations[i], coupon, req)
			if err != nil {
				return err
			}
			s.tracePartition(ctx, partition, order)
			result.Orders = append(result.Orders, OrderSummary{
				OrderID:   order.ID,
				CreatorID: order.CreatorID,
				Total:     order.TotalAmount,
			})
		}

		return s.emitOrderCreatedEvent(ctx, tx, userID, req.PaymentMethod, result)
	})
	if err != nil {
		return nil, classifyError(err)
	}
	return result, nil
}

func (s *service) materialize(
	ctx context.Context,
	ordersRepo orders.Repository,
	catalogRepo catalog.Repository,
	groupID, userID uuid.UUID,
	partition helpers.CreatorPartition,
	alloc helpers.AllocatedCosts,
	coupon *string,
	req CheckoutRequest,
) (*models.Order, error) {
	order := &models.Order{
		CheckoutGroupID: groupID,
		UserID:          userID,
		CreatorID:       partition.CreatorID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   req.PaymentMethod.InitialPaymentStatus(),
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        alloc.Subtotal,
		Shipping:        alloc.Shipping,
		Tax:             alloc.Tax,
		Discount:        alloc.Discount,
		TotalAmount:     alloc.Total,
		ShippingAddress: req.ShippingAddress,
	}
	if coupon != nil && alloc.Discount.IsPositive() {
		order.CouponCode = coupon
	}
	created, err := ordersRepo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(partition.Lines))
	for i, line := range partition.Lines {
		items = append(items, models.OrderItem{
			OrderID:   created.ID,
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Position:  i,
		})
	}
	if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
		return nil, err
	}

	for _, line := range partition.Lines {
		if line.VariantID != nil {
			err = catalogRepo.DecrementVariantStock(ctx, *line.VariantID, line.Quantity)
		} else {
			err = catalogRepo.DecrementProductStock(ctx, line.ProductID, line.Quantity)
		}
		if err != nil {
			return nil, err
		}
	}
	created.Items = items
	return created, nil
}

func (s *service) tracePartition(ctx context.Context, partition helpers.CreatorPartition, order *models.Order) {
	logg := s.opts.Logger
	if logg == nil {
		return
	}
	logg.Debug(logg.WithFields(ctx, map[string]any{
		"creator_id": partition.CreatorID.String(),
		"order_id":   order.ID.String(),
		"line_count": len(partition.Lines),
		"total":      order.TotalAmount.StringFixed(2),
	}), "checkout.partition")
}

func (s *service) emitOrderCreatedEvent(ctx context.Context, tx *gorm.DB, userID uuid.UUID, method enums.PaymentMethod, result *CheckoutResult) error {
	lines := make([]payloads.OrderCreatedLine, 0, len(result.Orders))
	for _, order := range result.Orders {
		lines = append(lines, payloads.OrderCreatedLine{
			OrderID:   order.OrderID,
			CreatorID: order.CreatorID,
			Total:     order.Total,
		})
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateCheckoutGroup,
		AggregateID:   result.CheckoutGroupID,
		Actor:         &outbox.ActorRef{UserID: userID},
		Data: payloads.OrderCreatedEvent{
			CheckoutGroupID: result.CheckoutGroupID,
			UserID:          userID,
			PaymentMethod:   method,
			Orders:          lines,
		},
		Version: 1,
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) validate(lines []helpers.Line, costs helpers.SharedCosts, req CheckoutRequest) error {
	errs := helpers.ValidateLines(lines, s.opts.MaxLines)
	errs = append(errs, helpers.ValidateSharedCosts(costs, helpers.LinesSubtotal(lines))...)
	if !req.PaymentMethod.IsValid() {
		errs = append(errs, helpers.FieldError{Field: "payment_method", Message: "must be one of cod, card, upi, wallet"})
	}
	for _, field := range req.ShippingAddress.Missing() {
		errs = append(errs, helpers.FieldError{Field: "shipping_address." + field, Message: "is required"})
	}
	return helpers.ValidationError(errs)
}

func toLines(in []CartLine) []helpers.Line {
	lines := make([]helpers.Line, 0, len(in))
	for _, line := range in {
		lines = append(lines, helpers.Line{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return lines
}

func normalizeCoupon(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// classifyError keeps typed errors and maps storage conflicts to a retryable
// stock conflict. Anything else becomes a persistence error.
func classifyError(err error) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if errors.Is(err, catalog.ErrStockChanged) || db.IsSerializationFailure(err) || db.IsCheckViolation(err) {
		return NewStockConflictError(err)
	}
	return NewPersistenceError(err, "checkout could not be persisted")
}

func outcomeFor(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeUnauthorized:
		return metrics.OutcomeValidation
	case pkgerrors.CodeNotFound:
		return metrics.OutcomeNotFound
	case pkgerrors.CodeInsufficientStock:
		return metrics.OutcomeInsufficientStock
	case pkgerrors.CodeStockConflict:
		return metrics.OutcomeStockConflict
	default:
		return metrics.OutcomeError
	}
}
