package service

import (
	"errors"
	"fmt"
	"time"

	"go-retail-backoffice/internal/model"
	"go-retail-backoffice/internal/repository"
	"go-retail-backoffice/internal/ws"
	"go-retail-backoffice/pkg/validator"

	"github.com/google/uuid"
)

// PlaceOrderRequest is the inbound payload for order placement.
type PlaceOrderRequest struct {
	Items         []OrderItemRequest  `json:"items"`
	CustomerPhone string              `json:"customerPhone"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Discount      float64             `json:"discount"`
	Notes         string              `json:"notes"`
}

type OrderItemRequest struct {
	Product string  `json:"product"`
	Size    string  `json:"size"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
}

// UpdateOrderRequest carries the amendable fields. Line items and
// quantities are immutable after placement; absent fields stay untouched.
type UpdateOrderRequest struct {
	PaymentStatus *model.PaymentStatus `json:"paymentStatus"`
	CustomerPhone *string              `json:"customerPhone"`
	PaymentMethod *model.PaymentMethod `json:"paymentMethod"`
	Discount      *float64             `json:"discount"`
	Notes         *string              `json:"notes"`
}

type OrderPage struct {
	Orders     []model.Order             `json:"orders"`
	Analytics  repository.OrderAnalytics `json:"analytics"`
	Pagination Pagination                `json:"pagination"`
}

type OrderService interface {
	PlaceOrder(req *PlaceOrderRequest) (*model.Order, error)
	UpdateOrder(id uuid.UUID, req *UpdateOrderRequest) (*model.Order, error)
	CancelOrder(id uuid.UUID) (*model.Order, error)
	GetOrder(id uuid.UUID) (*model.Order, error)
	ListOrders(f repository.OrderFilter) (*OrderPage, error)
	GetInvoice(id uuid.UUID) (*Invoice, error)
}

type orderService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	wsHub       *ws.Hub
	shopName    string
}

func NewOrderService(productRepo repository.ProductRepository, orderRepo repository.OrderRepository, hub *ws.Hub, shopName string) OrderService {
	return &orderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		wsHub:       hub,
		shopName:    shopName,
	}
}

func (s *orderService) PlaceOrder(req *PlaceOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items are required", ErrValidation)
	}

	total := 0.0
	profit := 0.0
	items := make([]model.OrderItem, 0, len(req.Items))
	names := make([]string, 0, len(req.Items))

	// Validate every line against current stock before any decrement lands.
	for _, item := range req.Items {
		if item.Size == "" {
			return nil, fmt.Errorf("%w: size is required for each item", ErrValidation)
		}
		if item.Qty < 1 {
			return nil, fmt.Errorf("%w: qty must be at least 1", ErrValidation)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}

		productID, err := uuid.Parse(item.Product)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid product ID %q", ErrValidation, item.Product)
		}

		product, err := s.productRepo.FindByID(productID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.Product)
		}
		if err != nil {
			return nil, err
		}

		sizeInfo := product.FindSize(item.Size)
		if sizeInfo == nil {
			return nil, &SizeUnavailableError{Size: item.Size, Product: product.Name}
		}
		if sizeInfo.Quantity < item.Qty {
			return nil, &InsufficientStockError{
				Available: sizeInfo.Quantity,
				Requested: item.Qty,
				Product:   product.Name,
				Size:      item.Size,
			}
		}

		subtotal := float64(item.Qty) * item.Price
		total += subtotal
		profit += float64(item.Qty) * (item.Price - product.WholesalePrice)

		items = append(items, model.OrderItem{
			ProductID: productID,
			Size:      item.Size,
			Qty:       item.Qty,
			Price:     item.Price,
			Subtotal:  subtotal,
		})
		names = append(names, product.Name)
	}

	total -= req.Discount
	profit -= req.Discount

	status := req.PaymentStatus
	if status == "" {
		status = model.PaymentPending
	}
	method := req.PaymentMethod
	if method == "" {
		method = model.PaymentCash
	}

	order := &model.Order{
		Date:          time.Now(),
		Items:         items,
		Total:         total,
		Profit:        profit,
		CustomerPhone: req.CustomerPhone,
		PaymentStatus: status,
		PaymentMethod: method,
		Discount:      req.Discount,
		Notes:         req.Notes,
	}
	if errs := validator.ValidateStruct(order); len(errs) > 0 {
		return nil, fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, errs[0].FailedField, errs[0].Tag)
	}

	// Apply decrements. Each is a guarded atomic update, so a concurrent
	// order racing past the check above still cannot oversell; the loser
	// fails here. Decrements already applied for earlier lines are not
	// compensated, cancellation is the caller's recovery path.
	for i, item := range order.Items {
		if err := s.productRepo.DecrementSizeQuantity(item.ProductID, item.Size, item.Qty); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				available := 0
				if p, lerr := s.productRepo.FindByID(item.ProductID); lerr == nil {
					if sz := p.FindSize(item.Size); sz != nil {
						available = sz.Quantity
					}
				}
				return nil, &InsufficientStockError{
					Available: available,
					Requested: item.Qty,
					Product:   names[i],
					Size:      item.Size,
				}
			}
			return nil, err
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent("order_placed", map[string]interface{}{
		"orderId": order.ID.String(),
		"total":   order.Total,
		"items":   len(order.Items),
	})

	return order, nil
}

func (s *orderService) UpdateOrder(id uuid.UUID, req *UpdateOrderRequest) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.PaymentStatus != nil {
		order.PaymentStatus = *req.PaymentStatus
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = *req.CustomerPhone
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		order.Notes = *req.Notes
	}
	if req.Discount != nil {
		// Discount is a pure deduction: total is re-derived from the frozen
		// item subtotals, profit shifts by the discount delta.
		newDiscount := *req.Discount
		order.Total = order.ItemsTotal() - newDiscount
		order.Profit = order.Profit - (newDiscount - order.Discount)
		order.Discount = newDiscount
	}

	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CancelOrder(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if order.PaymentStatus == model.PaymentCancelled {
		return nil, ErrAlreadyCancelled
	}

	// Symmetric inverse of the placement decrement.
	for _, item := range order.Items {
		if err := s.productRepo.IncrementSizeQuantity(item.ProductID, item.Size, item.Qty); err != nil {
			return nil, err
		}
	}

	order.PaymentStatus = model.PaymentCancelled
	if err := s.orderRepo.Save(order); err != nil {
		return nil, err
	}

	s.wsHub.BroadcastEvent("order_cancelled", map[string]interface{}{
		"orderId": order.ID.String(),
		"items":   len(order.Items),
	})

	return order, nil
}

func (s *orderService) GetOrder(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *orderService) ListOrders(f repository.OrderFilter) (*OrderPage, error) {
	f.Page, f.Limit = clampPaging(f.Page, f.Limit)

	orders, total, err := s.orderRepo.List(f)
	if err != nil {
		return nil, err
	}

	stats, err := s.orderRepo.Aggregate(f)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = round2(stats.TotalRevenue)
	stats.TotalProfit = round2(stats.TotalProfit)
	stats.AvgOrderPrice = round2(stats.AvgOrderPrice)

	return &OrderPage{
		Orders:     orders,
		Analytics:  *stats,
		Pagination: NewPagination(f.Page, f.Limit, total),
	}, nil
}

func (s *orderService) GetInvoice(id uuid.UUID) (*Invoice, error) {
	order, err := s.orderRepo.FindByID(id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return GenerateInvoice(order, s.shopName), nil
}
