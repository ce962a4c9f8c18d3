package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hetave/internal/apperr"
	"hetave/internal/models"
	"hetave/internal/repositories"
	"hetave/pkg/mailer"
	"hetave/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutItem is one cart line as sent by the storefront.
type CheckoutItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"gte=0"`
	Quantity  int     `json:"quantity" validate:"gte=0"`
}

func (it CheckoutItem) quantity() int {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}

// CheckoutRequest is the checkout form plus cart contents.
type CheckoutRequest struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone"`
	Address string         `json:"address"`
	City    string         `json:"city"`
	State   string         `json:"state"`
	Pincode string         `json:"pincode"`
	Country string         `json:"country"`
	Items   []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Total   float64        `json:"total" validate:"gte=0"`
}

// PlacedOrder identifies a newly created order.
type PlacedOrder struct {
	ID          string `json:"id"`
	OrderNumber string `json:"orderNumber"`
}

// OrderStats summarises orders for the admin dashboard.
type OrderStats struct {
	TotalOrders   int64 `json:"totalOrders"`
	PendingOrders int64 `json:"pendingOrders"`
}

// OrderUser is the owning account shown on an order.
type OrderUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderProduct is the live catalog data joined onto a line item.
type OrderProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Image    string  `json:"image"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// OrderItemView is a line item with its live product, if it still exists.
type OrderItemView struct {
	Product  *OrderProduct `json:"product"`
	Name     string        `json:"name"`
	Price    float64       `json:"price"`
	Quantity int           `json:"quantity"`
	Subtotal float64       `json:"subtotal"`
}

// OrderView is an order as presented to administrators.
type OrderView struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	User            *OrderUser             `json:"user"`
	Email           string                 `json:"email"`
	Items           []OrderItemView        `json:"items"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	TotalAmount     float64                `json:"totalAmount"`
	PaymentStatus   string                 `json:"paymentStatus"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	mailer      mailer.Mailer
	events      EventPublisher
	adminEmail  string
}

// NewOrderService creates a new OrderService. events may be nil, in which
// case no order events are published.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository, m mailer.Mailer, events EventPublisher, adminEmail string) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		mailer:      m,
		events:      events,
		adminEmail:  adminEmail,
	}
}

// PlaceOrder records a checkout. The order belongs to the caller if a token
// was presented, otherwise to the account registered under the checkout
// email, otherwise to nobody. The confirmation email is best-effort.
func (s *OrderService) PlaceOrder(ctx context.Context, req CheckoutRequest, identity *Identity) (*PlacedOrder, error) {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	if err := checkCheckout(req); err != nil {
		return nil, err
	}
	req.Items = normalizeItems(req.Items)

	owner, err := s.resolveOwner(ctx, req.Email, identity)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		item := models.OrderItem{Name: it.Name, Price: it.Price, Quantity: it.Quantity}
		if it.ProductID != "" {
			id := it.ProductID
			item.ProductID = &id
		}
		items = append(items, item)
	}

	country := req.Country
	if country == "" {
		country = "India"
	}
	order := &models.Order{
		UserID: owner,
		Email:  strings.ToLower(strings.TrimSpace(req.Email)),
		Items:  items,
		ShippingAddress: models.ShippingAddress{
			FullName:   req.Name,
			Address:    req.Address,
			City:       req.City,
			State:      req.State,
			PostalCode: req.Pincode,
			Country:    country,
			Phone:      req.Phone,
		},
		TotalAmount:   checkoutTotal(req),
		PaymentStatus: models.PaymentPending,
		Status:        models.StatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	number := models.OrderNumber(order.ID)
	span.SetAttributes(attribute.String("order.id", order.ID))
	sendBestEffort(ctx, s.mailer, req.Email, "Order Confirmation - Hetave Enterprises", "order_confirmation", map[string]any{
		"OrderNumber": number,
		"Items":       req.Items,
		"Total":       order.TotalAmount,
	})
	publishBestEffort(ctx, s.events, rabbitmq.OrderEvent{
		Type:         rabbitmq.EventOrderCreated,
		OrderID:      order.ID,
		OrderNumber:  number,
		Email:        order.Email,
		CustomerName: req.Name,
		Status:       order.Status,
		TotalAmount:  order.TotalAmount,
		ItemCount:    len(order.Items),
	})

	return &PlacedOrder{ID: order.ID, OrderNumber: number}, nil
}

// PlaceBulkOrder forwards a bulk quote request to the sales mailbox and
// acknowledges it to the customer. Nothing is stored, and both emails are
// attempted independently on a best-effort basis.
func (s *OrderService) PlaceBulkOrder(ctx context.Context, req CheckoutRequest) error {
	ctx, span := tracer.Start(ctx, "OrderService.PlaceBulkOrder",
		trace.WithAttributes(attribute.Int("order.items", len(req.Items))))
	defer span.End()

	if err := checkCheckout(req); err != nil {
		return err
	}
	req.Items = normalizeItems(req.Items)
	data := map[string]any{
		"Request": req,
		"Items":   req.Items,
		"Total":   checkoutTotal(req),
	}
	sendBestEffort(ctx, s.mailer, s.adminEmail, "Bulk Order Request - "+req.Name, "bulk_admin", data)
	sendBestEffort(ctx, s.mailer, req.Email, "Bulk Order Request Received - Hetave Enterprises", "bulk_customer", data)
	return nil
}

// UpdateOrderStatus overwrites an order's fulfillment status. Any of the four
// statuses may be assigned from any other.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "OrderService.UpdateOrderStatus",
		trace.WithAttributes(attribute.String("order.id", id), attribute.String("order.status", status)))
	defer span.End()

	if !models.ValidOrderStatus(status) {
		return nil, apperr.Validation("Invalid status. Must be one of: %s", strings.Join(models.OrderStatuses, ", "))
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	publishBestEffort(ctx, s.events, rabbitmq.OrderEvent{
		Type:        rabbitmq.EventOrderStatusUpdated,
		OrderID:     order.ID,
		OrderNumber: models.OrderNumber(order.ID),
		Email:       order.Email,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
	})
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered.
func (s *OrderService) ListOrders(ctx context.Context, status, paymentStatus string) ([]OrderView, error) {
	ctx, span := tracer.Start(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orderRepo.List(ctx, repositories.OrderFilter{Status: status, PaymentStatus: paymentStatus})
	if err != nil {
		return nil, err
	}
	return s.views(ctx, orders)
}

// GetOrder returns one order with live product and owner data.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*OrderView, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	views, err := s.views(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetOrderStats counts all orders and those still pending.
func (s *OrderService) GetOrderStats(ctx context.Context) (*OrderStats, error) {
	total, err := s.orderRepo.Count(ctx, repositories.OrderFilter{})
	if err != nil {
		return nil, err
	}
	pending, err := s.orderRepo.Count(ctx, repositories.OrderFilter{Status: models.StatusPending})
	if err != nil {
		return nil, err
	}
	return &OrderStats{TotalOrders: total, PendingOrders: pending}, nil
}

// HandleOrderEvent reacts to events consumed from the order queue. New orders
// are announced to the sales mailbox; other events are only logged. A mail
// failure is returned so the message can be redelivered.
func (s *OrderService) HandleOrderEvent(ctx context.Context, event rabbitmq.OrderEvent) error {
	switch event.Type {
	case rabbitmq.EventOrderCreated:
		return sendEmail(ctx, s.mailer, s.adminEmail, "New Order "+event.OrderNumber+" - Hetave Enterprises", "order_notice", event)
	default:
		log.Printf("Order %s: %s -> %s", event.OrderNumber, event.Type, event.Status)
		return nil
	}
}

func (s *OrderService) resolveOwner(ctx context.Context, email string, identity *Identity) (*string, error) {
	if identity != nil && identity.ID != "" {
		id := identity.ID
		return &id, nil
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return &user.ID, nil
	case errors.Is(err, apperr.ErrNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func (s *OrderService) views(ctx context.Context, orders []models.Order) ([]OrderView, error) {
	var productIDs, userIDs []string
	for _, o := range orders {
		if o.UserID != nil {
			userIDs = append(userIDs, *o.UserID)
		}
		for _, it := range o.Items {
			if it.ProductID != nil {
				productIDs = append(productIDs, *it.ProductID)
			}
		}
	}
	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		v := OrderView{
			ID:              o.ID,
			OrderNumber:     models.OrderNumber(o.ID),
			Email:           o.Email,
			Items:           make([]OrderItemView, 0, len(o.Items)),
			ShippingAddress: o.ShippingAddress,
			TotalAmount:     o.TotalAmount,
			PaymentStatus:   o.PaymentStatus,
			Status:          o.Status,
			CreatedAt:       o.CreatedAt,
			UpdatedAt:       o.UpdatedAt,
		}
		if o.UserID != nil {
			if u, ok := users[*o.UserID]; ok {
				v.User = &OrderUser{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}
		for _, it := range o.Items {
			iv := OrderItemView{
				Name:     it.Name,
				Price:    it.Price,
				Quantity: it.Quantity,
				Subtotal: lineSubtotal(it.Price, it.Quantity).InexactFloat64(),
			}
			if it.ProductID != nil {
				if p, ok := products[*it.ProductID]; ok {
					iv.Product = &OrderProduct{ID: p.ID, Name: p.Name, Image: p.Image, Category: p.Category, Price: p.Price}
				}
			}
			v.Items = append(v.Items, iv)
		}
		views = append(views, v)
	}
	return views, nil
}

func checkCheckout(req CheckoutRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return apperr.Validation("Email is required")
	}
	if len(req.Items) == 0 {
		return apperr.Validation("Order must contain at least one item")
	}
	return nil
}

// normalizeItems returns a copy of items with missing quantities set to 1.
func normalizeItems(items []CheckoutItem) []CheckoutItem {
	out := make([]CheckoutItem, len(items))
	for i, it := range items {
		it.Quantity = it.quantity()
		out[i] = it
	}
	return out
}

// checkoutTotal trusts the client's total when one is given and warns if it
// disagrees with the line items; otherwise it computes the total.
func checkoutTotal(req CheckoutRequest) float64 {
	computed := itemsTotal(req.Items)
	if req.Total <= 0 {
		return computed.InexactFloat64()
	}
	if !decimal.NewFromFloat(req.Total).Equal(computed) {
		log.Printf("Warning: checkout total %s for %s differs from item sum %s", formatINR(req.Total), req.Email, formatINR(computed.InexactFloat64()))
	}
	return req.Total
}
