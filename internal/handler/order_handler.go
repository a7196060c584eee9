package handler

import (
	"errors"
	"time"

	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.PlaceOrder(&req)
	if err != nil {
		var stock *service.InsufficientStockError
		var size *service.SizeUnavailableError
		switch {
		case errors.Is(err, service.ErrValidation), errors.As(err, &stock), errors.As(err, &size):
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrProductNotFound):
			return c.Status(404).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create order"})
	}

	return c.Status(201).JSON(order)
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var req service.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.UpdateOrder(id, &req)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update order"})
	}
	return c.JSON(order)
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.CancelOrder(id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
		case errors.Is(err, service.ErrAlreadyCancelled):
			return c.Status(400).JSON(fiber.Map{"error": "Order already cancelled"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to cancel order"})
	}

	return c.JSON(fiber.Map{"message": "Order cancelled and inventory restored", "order": order})
}

func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	filter := repository.OrderFilter{
		PaymentStatus: c.Query("paymentStatus"),
		Query:         c.Query("q"),
		SortBy:        c.Query("sortBy", "date"),
		SortDir:       c.Query("sortDir", "desc"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 20),
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	page, err := h.service.ListOrders(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"message": err.Error(), "code": "INTERNAL_ERROR"})
	}
	return c.JSON(page)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.GetOrder(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch order"})
	}
	return c.JSON(order)
}

func (h *OrderHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	invoice, err := h.service.GetInvoice(id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "Order not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to generate invoice"})
	}
	return c.JSON(invoice)
}
