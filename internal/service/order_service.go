package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Cheertaboi/shop-microservices/internal/auth"
	"github.com/Cheertaboi/shop-microservices/internal/models"
)

// Sibling services the order workflow calls, each authenticated with the
// caller's own credential.

type CartSource interface {
	Cart(ctx context.Context, credential string) (models.CartView, error)
	ClearCart(ctx context.Context, credential string) error
}

type ProfileSource interface {
	Profile(ctx context.Context, credential string) (*models.User, error)
}

type Inventory interface {
	AdjustStock(ctx context.Context, credential, productID string, delta int) error
}

type OrderService struct {
	orders    OrderRepo
	carts     CartSource
	profiles  ProfileSource
	inventory Inventory
	log       *slog.Logger
	now       func() time.Time
}

func NewOrderService(orders OrderRepo, carts CartSource, profiles ProfileSource, inventory Inventory, log *slog.Logger) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		profiles:  profiles,
		inventory: inventory,
		log:       log,
		now:       time.Now,
	}
}

// CreateOrder places an order from the caller's current cart.
//
// Steps run strictly in sequence. Anything failing up to and including
// persistence aborts with an error and leaves no order behind. Clearing the
// cart and decrementing stock happen after the order is stored; their
// failures are logged and never returned, so the order can exist alongside a
// stale cart or unadjusted stock.
func (s *OrderService) CreateOrder(ctx context.Context, caller auth.Principal, credential string, shipping *models.Address) (*models.Order, error) {
	if shipping != nil && !shipping.Complete() {
		verr := NewValidationError()
		verr.Add("shippingAddress", "Shipping address must include street, city, state, zipCode and country")
		return nil, verr
	}

	log := s.log.With("user_id", caller.ID)

	cart, err := s.carts.Cart(ctx, credential)
	if err != nil {
		log.Error("order: fetch cart failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrCartUnavailable, err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	user, err := s.profiles.Profile(ctx, credential)
	if err != nil {
		log.Error("order: fetch profile failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUserUnavailable, err)
	}
	if shipping == nil {
		if user == nil || !user.Address.Complete() {
			return nil, ErrMissingAddress
		}
		shipping = user.Address
	}

	now := s.now().UTC()
	order := &models.Order{
		UserID:          caller.ID,
		Items:           append([]models.OrderItem(nil), cart.Items...),
		Total:           cart.Total,
		Status:          models.StatusPending,
		ShippingAddress: *shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		log.Error("order: persist failed", "err", err)
		return nil, persistence("create order", err)
	}
	log = log.With("order_id", order.ID)
	log.Info("order created", "items", len(order.Items), "total", order.Total)

	// The order is committed; the client going away must not cut the
	// follow-up calls short.
	after := context.WithoutCancel(ctx)
	s.clearCart(after, log, credential)
	s.decrementStock(after, log, credential, order.Items)

	return order, nil
}

func (s *OrderService) clearCart(ctx context.Context, log *slog.Logger, credential string) {
	if err := s.carts.ClearCart(ctx, credential); err != nil {
		log.Warn("order: cart clear failed, cart left stale", "step", "clear_cart", "err", err)
	}
}

func (s *OrderService) decrementStock(ctx context.Context, log *slog.Logger, credential string, items []models.OrderItem) {
	for _, it := range items {
		if err := s.inventory.AdjustStock(ctx, credential, it.ProductID, -it.Quantity); err != nil {
			log.Warn("order: stock decrement failed",
				"step", "decrement_stock",
				"product_id", it.ProductID,
				"quantity", it.Quantity,
				"err", err,
			)
		}
	}
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistence("list orders", err)
	}
	return orders, nil
}

// GetOrder returns the order when the caller owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, caller auth.Principal, id string) (*models.Order, error) {
	o, err := s.orders.ByID(ctx, id)
	if err != nil {
		return nil, persistence("get order", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if o.UserID != caller.ID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, persistence("list all orders", err)
	}
	return orders, nil
}

// SetOrderStatus moves an order to any of the known statuses. Transitions are
// not checked for direction.
func (s *OrderService) SetOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		verr := NewValidationError()
		verr.Add("status", "Invalid status")
		return nil, verr
	}
	o, err := s.orders.UpdateStatus(ctx, id, models.OrderStatus(status))
	if err != nil {
		return nil, persistence("update order status", err)
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	s.log.Info("order status changed", "order_id", id, "status", status)
	return o, nil
}
