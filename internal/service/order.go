package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/emart/internal/models"
	"github.com/Skotchmaster/emart/internal/notify"
	"github.com/Skotchmaster/emart/internal/repo"
	"github.com/Skotchmaster/emart/pkg/logging"
	"github.com/Skotchmaster/emart/pkg/metrics"
	"github.com/Skotchmaster/emart/pkg/mykafka"
)

const (
	defaultClearAttempts = 3
	defaultClearBackoff  = 100 * time.Millisecond
)

type OrderService struct {
	Orders    OrderRepo
	Carts     CartRepo
	Products  ProductRepo
	Users     UserRepo
	Tx        Transactor
	CartCache CartInvalidator
	Notifier  notify.Notifier
	Events    EventPublisher
	Metrics   *metrics.Shop

	AdminEmail string
	Now        func() time.Time

	// ClearAttempts bounds the cart clear retries when orders and carts are written without a transaction.
	ClearAttempts int
	ClearBackoff  time.Duration
}

// Checkout turns the caller's cart into an order with prices frozen at their current effective value.
func (s *OrderService) Checkout(ctx context.Context, userID string, addr models.ShippingAddress) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	order, user, err := s.materialize(ctx, userID, addr)
	if err != nil {
		s.Metrics.CheckoutFailed(failureReason(err))
		return nil, err
	}

	if err := s.persist(ctx, order); err != nil {
		s.Metrics.CheckoutFailed("store_error")
		return nil, err
	}

	s.invalidateCart(ctx, order.UserID)
	s.Metrics.CheckoutSucceeded(order.TotalAmount)
	l.Info("order_created", "order_id", order.ID.Hex(), "total", order.TotalAmount, "items", len(order.Items))

	payload := orderPayload(order, user)
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, notify.EventOrderConfirmation, user.Email, payload)
		if s.AdminEmail != "" {
			s.Notifier.Notify(ctx, notify.EventAdminNewOrder, s.AdminEmail, payload)
		}
	}
	publish(ctx, s.Events, mykafka.TopicOrders, order.ID.Hex(), "order_created", order)

	return order, nil
}

func (s *OrderService) materialize(ctx context.Context, userID string, addr models.ShippingAddress) (*models.Order, *models.User, error) {
	uid, ok := parseID(userID)
	if !ok {
		return nil, nil, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	if err := addr.Normalize(); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}

	user, err := s.Users.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, fmt.Errorf("user no longer exists: %w", ErrUnauthorized)
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	cart, err := s.Carts.GetCart(ctx, uid)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.Empty() {
		return nil, nil, ErrEmptyCart
	}

	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load products: %w", err)
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, nil, fmt.Errorf("%s is no longer available: %w", it.ProductID.Hex(), ErrProductNotFound)
		}
		items = append(items, models.OrderItem{
			ProductID:       p.ID,
			Name:            p.Name,
			Quantity:        it.Quantity,
			PriceAtPurchase: p.EffectivePrice().InexactFloat64(),
		})
	}

	now := nowFunc(s.Now)
	order := &models.Order{
		UserID:          uid,
		Items:           items,
		TotalAmount:     models.SumItems(items),
		ShippingAddress: addr,
		OrderStatus:     models.OrderPending,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return order, user, nil
}

// persist writes the order strictly before the cart is cleared.
func (s *OrderService) persist(ctx context.Context, order *models.Order) error {
	atomic := s.Tx != nil && s.Tx.Transactional()

	write := func(ctx context.Context) error {
		if err := s.Orders.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if atomic {
			if err := s.Carts.ClearCart(ctx, order.UserID, order.CreatedAt); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
		}
		return nil
	}

	var err error
	if atomic {
		err = s.Tx.WithTransaction(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		return err
	}

	if !atomic {
		s.clearCartWithRetry(ctx, order)
	}
	return nil
}

// clearCartWithRetry compensates for the missing transaction. A final failure leaves
// a stale cart behind but the order stands.
func (s *OrderService) clearCartWithRetry(ctx context.Context, order *models.Order) {
	l := logging.FromContext(ctx).With("svc", "order.clear_cart", "order_id", order.ID.Hex())
	attempts := s.ClearAttempts
	if attempts <= 0 {
		attempts = defaultClearAttempts
	}
	backoff := s.ClearBackoff
	if backoff <= 0 {
		backoff = defaultClearBackoff
	}

	cctx := context.WithoutCancel(ctx)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = s.Carts.ClearCart(cctx, order.UserID, order.CreatedAt); err == nil {
			return
		}
		l.Warn("clear_cart_retry", "attempt", i, "error", err)
		if i < attempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	l.Error("clear_cart_failed", "user_id", order.UserID.Hex(), "error", err)
}

func (s *OrderService) invalidateCart(ctx context.Context, userID primitive.ObjectID) {
	if s.CartCache == nil {
		return
	}
	s.CartCache.Invalidate(ctx, userID)
}

func (s *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	uid, ok := parseID(userID)
	if !ok {
		return nil, fmt.Errorf("invalid user id: %w", ErrUnauthorized)
	}
	return s.Orders.OrdersByUser(ctx, uid)
}

func (s *OrderService) load(ctx context.Context, orderID string) (*models.Order, error) {
	id, ok := parseID(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}
	order, err := s.Orders.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

// Get returns an order to its owner only.
func (s *OrderService) Get(ctx context.Context, who Identity, orderID string) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !who.owns(order) {
		return nil, fmt.Errorf("order belongs to another user: %w", ErrForbidden)
	}
	return order, nil
}

// UpdateStatusAs lets the order owner or an admin move the order through its lifecycle.
func (s *OrderService) UpdateStatusAs(ctx context.Context, who Identity, orderID string, upd models.StatusUpdate) (*models.Order, error) {
	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !who.IsAdmin() && !who.owns(order) {
		return nil, fmt.Errorf("order belongs to another user: %w", ErrForbidden)
	}
	return s.UpdateStatus(ctx, orderID, upd)
}

// UpdateStatus changes the supplied status fields and sends one notification per field that actually changed.
// Any enum value may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, upd models.StatusUpdate) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	if err := upd.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), ErrValidation)
	}
	id, ok := parseID(orderID)
	if !ok {
		return nil, ErrOrderNotFound
	}

	now := nowFunc(s.Now)
	before, err := s.Orders.UpdateOrderStatus(ctx, id, upd, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}
	after := upd.Apply(*before, now)

	orderChanged := upd.OrderStatus != nil && before.OrderStatus != after.OrderStatus
	paymentChanged := upd.PaymentStatus != nil && before.PaymentStatus != after.PaymentStatus
	if !orderChanged && !paymentChanged {
		return &after, nil
	}

	if orderChanged {
		s.Metrics.StatusTransition("orderStatus", string(after.OrderStatus))
		l.Info("order_status_changed", "from", before.OrderStatus, "to", after.OrderStatus)
	}
	if paymentChanged {
		s.Metrics.StatusTransition("paymentStatus", string(after.PaymentStatus))
		l.Info("payment_status_changed", "from", before.PaymentStatus, "to", after.PaymentStatus)
	}

	publish(ctx, s.Events, mykafka.TopicOrders, after.ID.Hex(), "order_status_changed", map[string]any{
		"order_id":       after.ID.Hex(),
		"order_status":   after.OrderStatus,
		"payment_status": after.PaymentStatus,
		"previous": map[string]any{
			"order_status":   before.OrderStatus,
			"payment_status": before.PaymentStatus,
		},
	})

	s.notifyStatusChange(ctx, &after, orderChanged, paymentChanged)
	return &after, nil
}

func (s *OrderService) notifyStatusChange(ctx context.Context, order *models.Order, orderChanged, paymentChanged bool) {
	if s.Notifier == nil {
		return
	}
	l := logging.FromContext(ctx)

	owner, err := s.Users.UserByID(ctx, order.UserID)
	if err != nil {
		l.Warn("status_notification_skipped", "order_id", order.ID.Hex(), "reason", "owner lookup failed", "error", err)
		return
	}

	if orderChanged {
		p := orderPayload(order, owner)
		p.Status = string(order.OrderStatus)
		s.Notifier.Notify(ctx, notify.EventOrderStatusUpdate, owner.Email, p)
	}
	if paymentChanged {
		p := orderPayload(order, owner)
		p.Status = string(order.PaymentStatus)
		s.Notifier.Notify(ctx, notify.EventPaymentStatusUpdate, owner.Email, p)
	}
}

func orderPayload(order *models.Order, user *models.User) notify.OrderPayload {
	lines := make([]notify.OrderLine, 0, len(order.Items))
	for _, it := range order.Items {
		lines = append(lines, notify.OrderLine{Name: it.Name, Quantity: it.Quantity, Price: it.PriceAtPurchase})
	}
	a := order.ShippingAddress
	return notify.OrderPayload{
		OrderID:       order.ID.Hex(),
		ShortID:       order.ShortID(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		Items:         lines,
		Total:         order.TotalAmount,
		Address:       strings.Join([]string{a.Street, a.City, a.State, a.ZipCode, a.Country}, ", "),
		Status:        string(order.OrderStatus),
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "product_missing"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	}
	return "error"
}
