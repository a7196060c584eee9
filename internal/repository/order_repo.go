package repository

import (
	"errors"
	"time"

	"go-retail-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderFilter carries the listing parameters for orders. The same filter
// (minus pagination) drives the analytics aggregates.
type OrderFilter struct {
	From          *time.Time
	To            *time.Time
	PaymentStatus string
	Query         string // matches customer phone (substring) or order id (exact)
	SortBy        string
	SortDir       string
	Page          int
	Limit         int
}

// OrderAnalytics are aggregates over the filtered, unpaginated order set.
type OrderAnalytics struct {
	TotalOrders   int64   `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalProfit   float64 `json:"totalProfit"`
	AvgOrderPrice float64 `json:"avgOrderPrice"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	Save(order *model.Order) error
	List(f OrderFilter) ([]model.Order, int64, error)
	// Aggregate computes analytics over the filtered set. CANCELLED orders
	// are excluded unless the filter requests a specific status.
	Aggregate(f OrderFilter) (*OrderAnalytics, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("Items.Product").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) Save(order *model.Order) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: false}).
		Omit("Items").Save(order).Error
}

func applyOrderFilter(query *gorm.DB, f OrderFilter) *gorm.DB {
	if f.From != nil {
		query = query.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("date <= ?", *f.To)
	}
	if f.PaymentStatus != "" {
		query = query.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.Query != "" {
		if id, err := uuid.Parse(f.Query); err == nil {
			query = query.Where("customer_phone ILIKE ? OR id = ?", "%"+f.Query+"%", id)
		} else {
			query = query.Where("customer_phone ILIKE ?", "%"+f.Query+"%")
		}
	}
	return query
}

func (r *orderRepo) List(f OrderFilter) ([]model.Order, int64, error) {
	query := applyOrderFilter(r.db.Model(&model.Order{}), f).
		Preload("Items").Preload("Items.Product")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if f.SortDir == "asc" {
		dir = "ASC"
	}
	order := "date " + dir
	switch f.SortBy {
	case "total":
		order = "total " + dir
	case "profit":
		order = "profit " + dir
	}

	var orders []model.Order
	err := query.Order(order).
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) Aggregate(f OrderFilter) (*OrderAnalytics, error) {
	query := applyOrderFilter(r.db.Model(&model.Order{}), f)
	if f.PaymentStatus == "" {
		query = query.Where("payment_status <> ?", model.PaymentCancelled)
	}

	var stats OrderAnalytics
	err := query.Select(`
		COUNT(*) AS total_orders,
		COALESCE(SUM(total), 0) AS total_revenue,
		COALESCE(SUM(profit), 0) AS total_profit,
		COALESCE(AVG(total), 0) AS avg_order_price
	`).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
