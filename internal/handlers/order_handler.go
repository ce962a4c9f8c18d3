package handlers

import (
	"hetave/internal/middleware"
	"hetave/internal/models"
	"hetave/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes. Checkout is public (a token, if
// sent, links the order to the caller); everything else is admin only.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, guards middleware.Guards) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", guards.Optional, h.HandleCreateOrder)
	orderRoutes.Post("/bulk", h.HandleBulkOrder)
	orderRoutes.Get("/stats", guards.Auth, guards.Admin, h.HandleGetOrderStats)
	orderRoutes.Get("/", guards.Auth, guards.Admin, h.HandleGetOrders)
	orderRoutes.Get("/:id", guards.Auth, guards.Admin, h.HandleGetOrderByID)
	orderRoutes.Put("/:id/status", guards.Auth, guards.Admin, h.HandleUpdateOrderStatus)
}

// parseCheckout decodes and validates the checkout body. When it returns
// false the error response has already been written.
func (h *OrderHandler) parseCheckout(c *fiber.Ctx, req *services.CheckoutRequest) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, invalidBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return false, validationFailed(c, err)
	}
	return true, nil
}

// HandleCreateOrder places an order from the checkout form.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if ok, err := h.parseCheckout(c, &req); !ok {
		return err
	}

	placed, err := h.service.PlaceOrder(c.UserContext(), req, middleware.IdentityFrom(c))
	if err != nil {
		return respondError(c, err, "Error processing order")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully",
		"order":   placed,
	})
}

// HandleBulkOrder forwards a bulk quote request to the sales team.
func (h *OrderHandler) HandleBulkOrder(c *fiber.Ctx) error {
	var req services.CheckoutRequest
	if ok, err := h.parseCheckout(c, &req); !ok {
		return err
	}

	if err := h.service.PlaceBulkOrder(c.UserContext(), req); err != nil {
		return respondError(c, err, "Error processing bulk order request")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Bulk order request submitted successfully. Our team will contact you shortly.",
	})
}

// HandleGetOrders lists orders newest first, filtered by ?status= and ?paymentStatus=.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), c.Query("status"), c.Query("paymentStatus"))
	if err != nil {
		return respondError(c, err, "Error fetching orders")
	}
	return c.JSON(fiber.Map{"success": true, "orders": orders})
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Error fetching order")
	}
	return c.JSON(fiber.Map{"success": true, "order": order})
}

func (h *OrderHandler) HandleGetOrderStats(c *fiber.Ctx) error {
	stats, err := h.service.GetOrderStats(c.UserContext())
	if err != nil {
		return respondError(c, err, "Error fetching order statistics")
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), c.Params("id"), body.Status)
	if err != nil {
		return respondError(c, err, "Error updating order status")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Order status updated successfully",
		"order": fiber.Map{
			"id":          order.ID,
			"orderNumber": models.OrderNumber(order.ID),
			"status":      order.Status,
		},
	})
}
